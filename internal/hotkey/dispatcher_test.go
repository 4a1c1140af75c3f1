package hotkey

import (
	"context"
	"testing"

	"phrasecounter/internal/phrase"
	"phrasecounter/internal/storage"
	"phrasecounter/internal/storage/memory"
)

func newTestStore(t *testing.T, texts ...string) *phrase.Store {
	t.Helper()

	store, err := phrase.NewStore(context.Background(), memory.New().Collection(storage.CollectionPhrases), phrase.Options{})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	for _, text := range texts {
		if _, err := store.Create(context.Background(), text); err != nil {
			t.Fatalf("Create(%q) error = %v", text, err)
		}
	}
	return store
}

func counts(store *phrase.Store) map[string]int {
	out := make(map[string]int)
	for _, p := range store.All() {
		out[p.Text] = p.Count
	}
	return out
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name        string
		press       KeyPress
		wantUpdated int
		want        map[string]int
	}{
		{"single match", KeyPress{Rune: 'm'}, 1, map[string]int{"apple": 0, "avocado": 0, "meeting": 1}},
		{"shared hotkey", KeyPress{Rune: 'a'}, 2, map[string]int{"apple": 1, "avocado": 1, "meeting": 0}},
		{"uppercase matches", KeyPress{Rune: 'A'}, 2, map[string]int{"apple": 1, "avocado": 1, "meeting": 0}},
		{"no match", KeyPress{Rune: 'z'}, 0, map[string]int{"apple": 0, "avocado": 0, "meeting": 0}},
		{"ctrl ignored", KeyPress{Rune: 'a', Ctrl: true}, 0, map[string]int{"apple": 0, "avocado": 0, "meeting": 0}},
		{"non printable", KeyPress{Rune: '\x1b'}, 0, map[string]int{"apple": 0, "avocado": 0, "meeting": 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, "apple", "avocado", "meeting")
			d := NewDispatcher(store)

			updated, err := d.Dispatch(context.Background(), tt.press)
			if err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if len(updated) != tt.wantUpdated {
				t.Errorf("updated %d phrases, want %d", len(updated), tt.wantUpdated)
			}

			got := counts(store)
			for text, want := range tt.want {
				if got[text] != want {
					t.Errorf("%s count = %d, want %d", text, got[text], want)
				}
			}
		})
	}
}

func TestDispatchRepeated(t *testing.T) {
	store := newTestStore(t, "coffee", "meeting")
	d := NewDispatcher(store)

	for range 3 {
		if _, err := d.Dispatch(context.Background(), KeyPress{Rune: 'c'}); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
	}

	got := counts(store)
	if got["coffee"] != 3 || got["meeting"] != 0 {
		t.Errorf("counts = %v, want coffee 3 meeting 0", got)
	}
}
