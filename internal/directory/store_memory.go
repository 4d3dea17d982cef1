package directory

import (
	"context"
	"sync"

	"custodia/pkg/domain"
)

// InMemoryStore keeps the directory in maps. It favors clarity over
// performance and backs unit tests and local development.
type InMemoryStore struct {
	mu       sync.RWMutex
	persons  map[domain.PersonID]Person
	entities map[domain.EntityID]Entity
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		persons:  make(map[domain.PersonID]Person),
		entities: make(map[domain.EntityID]Entity),
	}
}

func (s *InMemoryStore) SavePerson(_ context.Context, person Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persons[person.ID] = person
	return nil
}

func (s *InMemoryStore) FindPerson(_ context.Context, id domain.PersonID) (Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if person, ok := s.persons[id]; ok {
		return person, nil
	}
	return Person{}, ErrNotFound
}

func (s *InMemoryStore) FindPersonByIdentity(_ context.Context, kind domain.IdentityKind, number string) (Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, person := range s.persons {
		if person.IdentityKind == kind && person.IdentityNumber == number {
			return person, nil
		}
	}
	return Person{}, ErrNotFound
}

func (s *InMemoryStore) SaveEntity(_ context.Context, entity Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[entity.ID] = entity
	return nil
}

func (s *InMemoryStore) FindEntity(_ context.Context, id domain.EntityID) (Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entity, ok := s.entities[id]; ok {
		return entity, nil
	}
	return Entity{}, ErrNotFound
}

func (s *InMemoryStore) FindEntityByClientID(_ context.Context, clientID string) (Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entity := range s.entities {
		if entity.ClientID == clientID {
			return entity, nil
		}
	}
	return Entity{}, ErrNotFound
}
