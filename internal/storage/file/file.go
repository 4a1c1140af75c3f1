package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"

	"phrasecounter/internal/storage"
)

// FormatVersion is the on-disk version of a collection file
const FormatVersion = 1

// document is the JSON layout of one collection file
type document struct {
	Version int                        `json:"version"`
	Records map[string]json.RawMessage `json:"records"`
}

// Store keeps each collection in its own JSON file under a directory
type Store struct {
	dir string

	mu          sync.Mutex
	collections map[string]*collection
}

// Open creates a file-backed store rooted at dir
func Open(dir string) (*Store, error) {
	if err := storage.EnsureDir(dir); err != nil {
		return nil, err
	}
	return &Store{
		dir:         dir,
		collections: make(map[string]*collection),
	}, nil
}

// Dir returns the directory holding the collection files
func (s *Store) Dir() string { return s.dir }

// Path returns the file path used for a collection
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Collection returns the named collection, creating its handle on first use
func (s *Store) Collection(name string) storage.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		return c
	}
	path := s.Path(name)
	c := &collection{
		path: path,
		lock: flock.New(path + ".lock"),
	}
	s.collections[name] = c
	return c
}

// Close releases nothing; files are closed after each operation
func (s *Store) Close() error { return nil }

type collection struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

func (c *collection) List(ctx context.Context) ([]storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock %s: %w", filepath.Base(c.path), err)
	}
	defer func() { _ = c.lock.Unlock() }()

	doc, err := c.loadUnlocked()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(doc.Records))
	for id := range doc.Records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]storage.Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, storage.Record{ID: id, Data: []byte(doc.Records[id])})
	}
	return records, nil
}

func (c *collection) Put(ctx context.Context, id string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("record %s: invalid JSON", id)
	}
	return c.update(ctx, func(doc *document) error {
		doc.Records[id] = json.RawMessage(data)
		return nil
	})
}

func (c *collection) Delete(ctx context.Context, id string) error {
	return c.update(ctx, func(doc *document) error {
		if _, ok := doc.Records[id]; !ok {
			return storage.ErrNotFound
		}
		delete(doc.Records, id)
		return nil
	})
}

// update runs a read-modify-write cycle under the advisory file lock
func (c *collection) update(ctx context.Context, fn func(*document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", filepath.Base(c.path), err)
	}
	defer func() { _ = c.lock.Unlock() }()

	doc, err := c.loadUnlocked()
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return c.saveUnlocked(doc)
}

func (c *collection) loadUnlocked() (document, error) {
	empty := document{Version: FormatVersion, Records: map[string]json.RawMessage{}}

	b, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return empty, nil
		}
		return document{}, fmt.Errorf("read %s: %w", filepath.Base(c.path), err)
	}
	if len(b) == 0 {
		return empty, nil
	}

	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return document{}, fmt.Errorf("parse %s: %w", filepath.Base(c.path), err)
	}
	if doc.Version == 0 {
		doc.Version = FormatVersion
	}
	if doc.Version != FormatVersion {
		return document{}, fmt.Errorf("%s: unsupported version %d", filepath.Base(c.path), doc.Version)
	}
	if doc.Records == nil {
		doc.Records = map[string]json.RawMessage{}
	}
	return doc, nil
}

// saveUnlocked writes to a temp file and renames it over the collection file.
// Records are written compact and unescaped so List returns the bytes given
// to Put.
func (c *collection) saveUnlocked(doc document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(c.path), err)
	}
	b := buf.Bytes()

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(c.path), err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(c.path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(c.path), err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filepath.Base(c.path), err)
	}
	return nil
}
