package store

import (
	"context"
	"sync"

	"github.com/matzehuels/gridboard/pkg/layout"
)

// MemoryStore keeps layouts in a map. Records are copied in and out so
// callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	layouts map[string]*layout.Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{layouts: make(map[string]*layout.Record)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*layout.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.layouts[id]
	if !ok {
		return nil, notFound(id)
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*layout.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*layout.Record, 0, len(s.layouts))
	for _, rec := range s.layouts {
		recs = append(recs, rec.Clone())
	}
	sortRecords(recs)
	return recs, nil
}

func (s *MemoryStore) Save(ctx context.Context, rec *layout.Record) error {
	if err := prepare(rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[rec.ID] = rec.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.layouts, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
