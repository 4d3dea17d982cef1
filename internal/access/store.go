package access

import (
	"context"
	"time"

	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

// Store errors shared by all implementations.
var (
	// ErrNotFound signals an unknown request ID.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "access request not found")
	// ErrStatusConflict signals a compare-and-swap miss: the request was not
	// in the expected status when the decision tried to commit. Concurrent
	// decisions on one request serialize through this check.
	ErrStatusConflict = dErrors.New(dErrors.CodeConflict, "access request is not in the expected status")
)

// Store persists access requests. Create is atomic over the request and its
// items; UpdateStatus is a compare-and-swap on the current status so the
// "only pending may be decided" check and the commit are one unit.
type Store interface {
	Create(ctx context.Context, request Request) error
	FindByID(ctx context.Context, id domain.RequestID) (Request, error)
	ListByPerson(ctx context.Context, personID domain.PersonID) ([]Request, error)
	ListByEntity(ctx context.Context, entityID domain.EntityID) ([]Request, error)
	UpdateStatus(ctx context.Context, id domain.RequestID, from, to Status, decidedAt time.Time, note string) error
}
