package memory

import (
	"context"
	"sort"
	"sync"

	"phrasecounter/internal/storage"
)

// Store is an in-process backend; its contents are lost on exit.
type Store struct {
	mu          sync.Mutex
	collections map[string]*collection
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// Collection returns the named collection, creating it on first use
func (s *Store) Collection(name string) storage.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &collection{records: make(map[string][]byte)}
		s.collections[name] = c
	}
	return c
}

// Close is a no-op
func (s *Store) Close() error { return nil }

type collection struct {
	mu      sync.RWMutex
	records map[string][]byte

	// set by Store.FailPuts and FailPutsAfter
	failPuts  error
	putsAllow int // Writes still accepted before failPuts applies
}

func (c *collection) List(_ context.Context) ([]storage.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.records))
	for id := range c.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]storage.Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, storage.Record{ID: id, Data: append([]byte(nil), c.records[id]...)})
	}
	return records, nil
}

func (c *collection) Put(_ context.Context, id string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failPuts != nil {
		if c.putsAllow <= 0 {
			return c.failPuts
		}
		c.putsAllow--
	}
	c.records[id] = append([]byte(nil), data...)
	return nil
}

func (c *collection) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.records[id]; !ok {
		return storage.ErrNotFound
	}
	delete(c.records, id)
	return nil
}

// FailPuts makes subsequent writes to the named collection return err.
// Passing nil restores normal behavior.
func (s *Store) FailPuts(name string, err error) {
	s.FailPutsAfter(name, 0, err)
}

// FailPutsAfter lets n more writes to the named collection succeed and
// fails every write after them with err
func (s *Store) FailPutsAfter(name string, n int, err error) {
	c := s.Collection(name).(*collection)
	c.mu.Lock()
	c.failPuts = err
	c.putsAllow = n
	c.mu.Unlock()
}
