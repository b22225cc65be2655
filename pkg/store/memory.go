package store

import (
	"context"
	"slices"
	"sync"

	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
)

// MemoryStore keeps encoded documents in memory.
// Documents are copied on the way in and out, so callers never share state
// with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	pages map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pages: make(map[string][]byte)}
}

func (s *MemoryStore) Load(ctx context.Context, pageID string) (*Document, error) {
	s.mu.RLock()
	data, ok := s.pages[pageID]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(pageID)
	}
	return Unmarshal(data)
}

func (s *MemoryStore) Save(ctx context.Context, doc *Document) error {
	if err := errs.ValidatePageID(doc.PageID); err != nil {
		return err
	}
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.pages[doc.PageID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, pageID string) error {
	s.mu.Lock()
	delete(s.pages, pageID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.pages))
	for id := range s.pages {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
