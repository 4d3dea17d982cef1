package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

type AccessStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *AccessStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func TestAccessStoreSuite(t *testing.T) {
	suite.Run(t, new(AccessStoreSuite))
}

func (s *AccessStoreSuite) newRequest(requestedAt time.Time) Request {
	id := domain.NewRequestID()
	return Request{
		ID:          id,
		EntityID:    domain.NewEntityID(),
		PersonID:    domain.NewPersonID(),
		Purpose:     "KYC",
		Status:      StatusPending,
		RequestedAt: requestedAt,
		ExpiresAt:   requestedAt.Add(GracePeriod),
		Items: []Item{{
			ID:         domain.NewItemID(),
			RequestID:  id,
			DocumentID: domain.NewDocumentID(),
		}},
	}
}

func (s *AccessStoreSuite) TestCreateAndFind() {
	s.Run("round-trips a request with its items", func() {
		request := s.newRequest(time.Now())
		s.Require().NoError(s.store.Create(context.Background(), request))

		found, err := s.store.FindByID(context.Background(), request.ID)
		s.Require().NoError(err)
		s.Equal(request, found)
	})

	s.Run("rejects a request without items", func() {
		request := s.newRequest(time.Now())
		request.Items = nil
		err := s.store.Create(context.Background(), request)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("rejects a duplicate id", func() {
		request := s.newRequest(time.Now())
		s.Require().NoError(s.store.Create(context.Background(), request))
		err := s.store.Create(context.Background(), request)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(context.Background(), domain.NewRequestID())
		s.Require().ErrorIs(err, ErrNotFound)
	})

	s.Run("mutating a returned copy does not leak into the store", func() {
		request := s.newRequest(time.Now())
		s.Require().NoError(s.store.Create(context.Background(), request))

		found, err := s.store.FindByID(context.Background(), request.ID)
		s.Require().NoError(err)
		found.Items[0].DocumentID = domain.NewDocumentID()

		again, err := s.store.FindByID(context.Background(), request.ID)
		s.Require().NoError(err)
		s.Equal(request.Items[0].DocumentID, again.Items[0].DocumentID)
	})
}

func (s *AccessStoreSuite) TestListing() {
	now := time.Now()
	older := s.newRequest(now.Add(-time.Hour))
	newer := s.newRequest(now)
	newer.PersonID = older.PersonID
	newer.EntityID = older.EntityID
	unrelated := s.newRequest(now)

	s.Require().NoError(s.store.Create(context.Background(), older))
	s.Require().NoError(s.store.Create(context.Background(), newer))
	s.Require().NoError(s.store.Create(context.Background(), unrelated))

	s.Run("by person, newest first", func() {
		requests, err := s.store.ListByPerson(context.Background(), older.PersonID)
		s.Require().NoError(err)
		s.Require().Len(requests, 2)
		s.Equal(newer.ID, requests[0].ID)
		s.Equal(older.ID, requests[1].ID)
	})

	s.Run("by entity, newest first", func() {
		requests, err := s.store.ListByEntity(context.Background(), older.EntityID)
		s.Require().NoError(err)
		s.Require().Len(requests, 2)
		s.Equal(newer.ID, requests[0].ID)
	})

	s.Run("no matches yields empty", func() {
		requests, err := s.store.ListByPerson(context.Background(), domain.NewPersonID())
		s.Require().NoError(err)
		s.Empty(requests)
	})
}

func (s *AccessStoreSuite) TestUpdateStatus() {
	s.Run("compare-and-swap commits exactly one transition", func() {
		request := s.newRequest(time.Now())
		s.Require().NoError(s.store.Create(context.Background(), request))

		decidedAt := time.Now()
		err := s.store.UpdateStatus(context.Background(), request.ID, StatusPending, StatusApproved, decidedAt, "ok")
		s.Require().NoError(err)

		found, err := s.store.FindByID(context.Background(), request.ID)
		s.Require().NoError(err)
		s.Equal(StatusApproved, found.Status)
		s.Require().NotNil(found.DecidedAt)
		s.Equal(decidedAt, *found.DecidedAt)
		s.Equal("ok", found.Note)

		err = s.store.UpdateStatus(context.Background(), request.ID, StatusPending, StatusRejected, decidedAt, "")
		s.Require().ErrorIs(err, ErrStatusConflict)
	})

	s.Run("unknown id returns ErrNotFound", func() {
		err := s.store.UpdateStatus(context.Background(), domain.NewRequestID(), StatusPending, StatusApproved, time.Now(), "")
		s.Require().ErrorIs(err, ErrNotFound)
	})
}
