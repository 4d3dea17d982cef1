package access

import (
	"context"
	"sort"
	"sync"
	"time"

	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

// InMemoryStore keeps requests in a map guarded by one mutex, which makes the
// compare-and-swap in UpdateStatus trivially atomic.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[domain.RequestID]Request
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[domain.RequestID]Request)}
}

func (s *InMemoryStore) Create(_ context.Context, request Request) error {
	if len(request.Items) == 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "request must carry at least one item")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[request.ID]; exists {
		return dErrors.New(dErrors.CodeConflict, "access request already exists")
	}
	s.requests[request.ID] = cloneRequest(request)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.RequestID) (Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if request, ok := s.requests[id]; ok {
		return cloneRequest(request), nil
	}
	return Request{}, ErrNotFound
}

func (s *InMemoryStore) ListByPerson(_ context.Context, personID domain.PersonID) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []Request
	for _, request := range s.requests {
		if request.PersonID == personID {
			result = append(result, cloneRequest(request))
		}
	}
	sortByRequestedAt(result)
	return result, nil
}

func (s *InMemoryStore) ListByEntity(_ context.Context, entityID domain.EntityID) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []Request
	for _, request := range s.requests {
		if request.EntityID == entityID {
			result = append(result, cloneRequest(request))
		}
	}
	sortByRequestedAt(result)
	return result, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id domain.RequestID, from, to Status, decidedAt time.Time, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[id]
	if !ok {
		return ErrNotFound
	}
	if request.Status != from {
		return ErrStatusConflict
	}
	request.Status = to
	request.DecidedAt = &decidedAt
	request.Note = note
	s.requests[id] = request
	return nil
}

func cloneRequest(request Request) Request {
	request.Items = append([]Item(nil), request.Items...)
	if request.DecidedAt != nil {
		decidedAt := *request.DecidedAt
		request.DecidedAt = &decidedAt
	}
	return request
}

func sortByRequestedAt(requests []Request) {
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].RequestedAt.After(requests[j].RequestedAt)
	})
}
