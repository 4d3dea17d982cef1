package catalog

import (
	"context"
	"sync"

	"custodia/pkg/domain"
)

// InMemoryStore keeps documents in a map; used by unit tests and local runs.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[domain.DocumentID]Document
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[domain.DocumentID]Document)}
}

func (s *InMemoryStore) Save(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.DocumentID) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if doc, ok := s.docs[id]; ok {
		return cloneDocument(doc), nil
	}
	return Document{}, ErrNotFound
}

func (s *InMemoryStore) ListByPerson(_ context.Context, personID domain.PersonID) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []Document
	for _, doc := range s.docs {
		if doc.PersonID == personID {
			docs = append(docs, cloneDocument(doc))
		}
	}
	return docs, nil
}

// cloneDocument copies the file slice so callers cannot mutate stored state.
func cloneDocument(doc Document) Document {
	doc.Files = append([]File(nil), doc.Files...)
	return doc
}
