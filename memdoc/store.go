package memdoc

import "sync"

// Store groups named collections, creating them on first use.
type Store struct {
	mu          sync.Mutex
	collections map[string]*Collection
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{collections: make(map[string]*Collection)}
}

// Collection returns the named collection, creating it if needed.
func (s *Store) Collection(name string) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = New()
		s.collections[name] = c
	}
	return c
}
