package catalog

import (
	"context"

	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

// ErrNotFound keeps catalog 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "document not found")

// Store is interface-driven so the workflow stays testable and persistence
// can be swapped without rewiring business code. FindByID always loads the
// document together with its files; the latest-file rule needs all of them.
type Store interface {
	Save(ctx context.Context, doc Document) error
	FindByID(ctx context.Context, id domain.DocumentID) (Document, error)
	ListByPerson(ctx context.Context, personID domain.PersonID) ([]Document, error)
}
