package bolt

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"phrasecounter/internal/storage"
)

// FileName is the database file created inside the data directory.
const FileName = "phrasecounter.db"

// Store implements storage.Backend using bbolt, one bucket per collection.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := storage.EnsureDir(dir); err != nil {
			return nil, err
		}
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(storage.CollectionPhrases, storage.CollectionHistory); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) ensureBuckets(names ...string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range names {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Collection returns the bucket-backed collection with the given name.
func (s *Store) Collection(name string) storage.Collection {
	return &collection{db: s.db, bucket: []byte(name)}
}

type collection struct {
	db     *bbolt.DB
	bucket []byte
}

func (c *collection) List(ctx context.Context) ([]storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []storage.Record
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			// Values are only valid for the life of the transaction
			data := make([]byte, len(v))
			copy(data, v)
			records = append(records, storage.Record{ID: string(k), Data: data})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.bucket, err)
	}
	return records, nil
}

func (c *collection) Put(ctx context.Context, id string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(c.bucket)
		if err != nil {
			return fmt.Errorf("create bucket %s: %w", c.bucket, err)
		}
		return b.Put([]byte(id), data)
	})
}

func (c *collection) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil || b.Get([]byte(id)) == nil {
			return storage.ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}
