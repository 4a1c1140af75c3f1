package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("storage: record not found")

// Collection names used by the application.
const (
	CollectionPhrases = "pc-phrase"
	CollectionHistory = "pc-history"
)

// Record is one stored item: an id and its JSON-encoded body.
type Record struct {
	ID   string
	Data []byte
}

// Collection is a named set of records keyed by id.
// Put overwrites the whole record; there are no partial updates.
type Collection interface {
	List(ctx context.Context) ([]Record, error)
	Put(ctx context.Context, id string, data []byte) error
	Delete(ctx context.Context, id string) error
}

// Backend represents the root storage interface.
type Backend interface {
	Collection(name string) Collection
	Close() error
}

// EnsureDir creates dir with user-only permissions if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}
