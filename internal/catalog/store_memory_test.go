package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

type CatalogStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *CatalogStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func TestCatalogStoreSuite(t *testing.T) {
	suite.Run(t, new(CatalogStoreSuite))
}

func (s *CatalogStoreSuite) newDocument(personID domain.PersonID) Document {
	id := domain.NewDocumentID()
	return Document{
		ID:            id,
		PersonID:      personID,
		Title:         "diploma",
		IssuingEntity: "state-university",
		ReviewStatus:  ReviewApproved,
		Files: []File{{
			ID:         domain.NewFileID(),
			DocumentID: id,
			Version:    1,
			StoredPath: "docs/diploma-v1.pdf",
			SizeBytes:  2048,
			Checksum:   "abc123",
		}},
	}
}

func (s *CatalogStoreSuite) TestSaveAndFind() {
	s.Run("round-trips a document with its files", func() {
		doc := s.newDocument(domain.NewPersonID())
		s.Require().NoError(s.store.Save(context.Background(), doc))

		found, err := s.store.FindByID(context.Background(), doc.ID)
		s.Require().NoError(err)
		s.Equal(doc, found)
	})

	s.Run("unknown id yields not found", func() {
		_, err := s.store.FindByID(context.Background(), domain.NewDocumentID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("save overwrites an existing document", func() {
		doc := s.newDocument(domain.NewPersonID())
		s.Require().NoError(s.store.Save(context.Background(), doc))

		doc.ReviewStatus = ReviewRejected
		s.Require().NoError(s.store.Save(context.Background(), doc))

		found, err := s.store.FindByID(context.Background(), doc.ID)
		s.Require().NoError(err)
		s.Equal(ReviewRejected, found.ReviewStatus)
	})
}

func (s *CatalogStoreSuite) TestListByPerson() {
	personID := domain.NewPersonID()
	first := s.newDocument(personID)
	second := s.newDocument(personID)
	other := s.newDocument(domain.NewPersonID())
	for _, doc := range []Document{first, second, other} {
		s.Require().NoError(s.store.Save(context.Background(), doc))
	}

	docs, err := s.store.ListByPerson(context.Background(), personID)
	s.Require().NoError(err)
	s.Len(docs, 2)
	for _, doc := range docs {
		s.Equal(personID, doc.PersonID)
	}
}

func (s *CatalogStoreSuite) TestStoredStateIsIsolated() {
	doc := s.newDocument(domain.NewPersonID())
	s.Require().NoError(s.store.Save(context.Background(), doc))

	found, err := s.store.FindByID(context.Background(), doc.ID)
	s.Require().NoError(err)
	found.Files[0].StoredPath = "docs/tampered.pdf"

	again, err := s.store.FindByID(context.Background(), doc.ID)
	s.Require().NoError(err)
	s.Equal("docs/diploma-v1.pdf", again.Files[0].StoredPath)
}
