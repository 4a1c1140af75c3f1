package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"phrasecounter/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	return store
}

func TestCollectionPutList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	phrases := store.Collection(storage.CollectionPhrases)

	if err := phrases.Put(ctx, "b", []byte(`{"text":"meeting"}`)); err != nil {
		t.Fatalf("put b: %v", err)
	}
	if err := phrases.Put(ctx, "a", []byte(`{"text":"coffee"}`)); err != nil {
		t.Fatalf("put a: %v", err)
	}
	// Overwrite keeps a single record
	if err := phrases.Put(ctx, "a", []byte(`{"text":"coffee","count":2}`)); err != nil {
		t.Fatalf("put a again: %v", err)
	}

	records, err := phrases.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "a" || records[1].ID != "b" {
		t.Errorf("expected records sorted by id, got %q, %q", records[0].ID, records[1].ID)
	}
	if string(records[0].Data) != `{"text":"coffee","count":2}` {
		t.Errorf("unexpected record body %s", records[0].Data)
	}

	// A fresh store over the same directory sees the same data
	reopened, err := Open(store.Dir())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	again, err := reopened.Collection(storage.CollectionPhrases).List(ctx)
	if err != nil {
		t.Fatalf("list after reopen: %v", err)
	}
	if len(again) != 2 {
		t.Errorf("expected 2 records after reopen, got %d", len(again))
	}
}

func TestCollectionsAreSeparateFiles(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Collection(storage.CollectionHistory).Put(ctx, "h1", []byte(`{}`)); err != nil {
		t.Fatalf("put history: %v", err)
	}

	if _, err := os.Stat(store.Path(storage.CollectionHistory)); err != nil {
		t.Errorf("expected history file to exist: %v", err)
	}
	if _, err := os.Stat(store.Path(storage.CollectionPhrases)); !os.IsNotExist(err) {
		t.Errorf("expected no phrase file, stat err = %v", err)
	}

	records, err := store.Collection(storage.CollectionPhrases).List(ctx)
	if err != nil {
		t.Fatalf("list phrases: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty phrase collection, got %d", len(records))
	}
}

func TestCollectionDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	c := store.Collection(storage.CollectionPhrases)

	if err := c.Put(ctx, "a", []byte(`{}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.Delete(ctx, "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRecordBytesSurviveSave(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	c := store.Collection(storage.CollectionPhrases)

	bodies := map[string]string{
		"a": `{"text":"coffee","count":2}`,
		"b": `{"text":"Q&A <standup>","count":0}`,
		"c": `{"nested":{"list":[1,2,3]},"ok":true}`,
	}
	for id, body := range bodies {
		if err := c.Put(ctx, id, []byte(body)); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	// A second write rewrites the whole file; earlier records must not change
	if err := c.Put(ctx, "d", []byte(`{}`)); err != nil {
		t.Fatalf("put d: %v", err)
	}

	records, err := c.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, rec := range records {
		want, ok := bodies[rec.ID]
		if !ok {
			continue
		}
		if string(rec.Data) != want {
			t.Errorf("record %s = %s, want %s", rec.ID, rec.Data, want)
		}
	}
}

func TestPutRejectsInvalidJSON(t *testing.T) {
	store := openTestStore(t)

	err := store.Collection(storage.CollectionPhrases).Put(context.Background(), "a", []byte("{nope"))
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestListRejectsUnknownVersion(t *testing.T) {
	store := openTestStore(t)

	path := store.Path(storage.CollectionPhrases)
	if err := os.WriteFile(path, []byte(`{"version":9,"records":{}}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := store.Collection(storage.CollectionPhrases).List(context.Background()); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestWatcherReportsCollectionWrites(t *testing.T) {
	store := openTestStore(t)

	w, err := NewWatcher(store, storage.CollectionPhrases)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.Start()
	defer func() { _ = w.Stop() }()

	ctx := context.Background()
	if err := store.Collection(storage.CollectionPhrases).Put(ctx, "a", []byte(`{}`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	select {
	case ev := <-w.Events:
		if ev.Collection != storage.CollectionPhrases {
			t.Errorf("expected event for %s, got %s", storage.CollectionPhrases, ev.Collection)
		}
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}
}

func TestWatcherCollectionFor(t *testing.T) {
	store := openTestStore(t)

	w, err := NewWatcher(store, storage.CollectionPhrases)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer func() { _ = w.Stop() }()

	tests := []struct {
		name   string
		path   string
		wantOK bool
	}{
		{"phrase file", store.Path(storage.CollectionPhrases), true},
		{"history file not watched", store.Path(storage.CollectionHistory), false},
		{"lock file", store.Path(storage.CollectionPhrases) + ".lock", false},
		{"temp file", store.Path(storage.CollectionPhrases) + ".123.tmp", false},
		{"other dir", filepath.Join(t.TempDir(), storage.CollectionPhrases+".json"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := w.collectionFor(tt.path)
			if ok != tt.wantOK {
				t.Errorf("collectionFor(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
		})
	}
}
