package directory

import (
	"context"

	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

// ErrNotFound keeps directory 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "directory record not found")

// Store is interface-driven to keep the workflow testable and to allow
// swapping in-memory and PostgreSQL persistence without rewiring callers.
type Store interface {
	SavePerson(ctx context.Context, person Person) error
	FindPerson(ctx context.Context, id domain.PersonID) (Person, error)
	FindPersonByIdentity(ctx context.Context, kind domain.IdentityKind, number string) (Person, error)
	SaveEntity(ctx context.Context, entity Entity) error
	FindEntity(ctx context.Context, id domain.EntityID) (Entity, error)
	FindEntityByClientID(ctx context.Context, clientID string) (Entity, error)
}
