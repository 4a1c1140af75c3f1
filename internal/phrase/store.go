package phrase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"phrasecounter/internal/storage"
)

var (
	// ErrEmptyText is returned by Create when the text is blank
	ErrEmptyText = errors.New("phrase: text is empty")

	// ErrNotFound is returned for an unknown phrase id
	ErrNotFound = errors.New("phrase: not found")
)

// ChangeKind describes what happened to a phrase
type ChangeKind int

const (
	Added    ChangeKind = iota // Phrase created
	Updated                    // Count, hotkey or reset
	Removed                    // Phrase deleted
	Reloaded                   // Whole list re-read from storage
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Updated:
		return "updated"
	case Removed:
		return "removed"
	case Reloaded:
		return "reloaded"
	}
	return "unknown"
}

// Change is delivered to listeners after a successful write
type Change struct {
	Kind   ChangeKind
	Phrase Phrase // Zero for Reloaded
}

// Listener receives change notifications
type Listener func(Change)

// Options configures a Store
type Options struct {
	// ClampAtZero stops Decrement from taking a count below zero
	ClampAtZero bool

	// Palette assigns colors to new phrases; defaults to the mocha palette
	Palette Palette

	// Now defaults to time.Now
	Now func() time.Time

	Logger zerolog.Logger
}

// CreateOption overrides a default on Create
type CreateOption func(*Phrase)

// WithHotkey sets the hotkey instead of deriving it from the text
func WithHotkey(key string) CreateOption {
	return func(p *Phrase) {
		if hk, ok := NormalizeHotkey(key); ok {
			p.Hotkey = hk
		}
	}
}

// WithColor sets the display color instead of picking one
func WithColor(color string) CreateOption {
	return func(p *Phrase) {
		if color != "" {
			p.Color = color
		}
	}
}

// Store owns the tracked phrases and is their only writer
type Store struct {
	coll        storage.Collection
	clampAtZero bool
	palette     Palette
	now         func() time.Time
	logger      zerolog.Logger

	mu      sync.RWMutex
	phrases []Phrase // Ordered by CreatedAt

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextID     int
}

// NewStore loads the phrases from coll and returns a ready store
func NewStore(ctx context.Context, coll storage.Collection, opts Options) (*Store, error) {
	if opts.Palette == nil {
		opts.Palette = ThemePalette("mocha")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		coll:        coll,
		clampAtZero: opts.ClampAtZero,
		palette:     opts.Palette,
		now:         opts.Now,
		logger:      opts.Logger.With().Str("component", "phrase-store").Logger(),
		listeners:   make(map[int]Listener),
	}

	phrases, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.phrases = phrases
	return s, nil
}

// load reads and decodes the whole collection
func (s *Store) load(ctx context.Context) ([]Phrase, error) {
	records, err := s.coll.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load phrases: %w", err)
	}

	phrases := make([]Phrase, 0, len(records))
	for _, rec := range records {
		var p Phrase
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			s.logger.Warn().Err(err).Str("id", rec.ID).Msg("Skipping unreadable phrase record")
			continue
		}
		if p.ID == "" {
			p.ID = rec.ID
		}
		phrases = append(phrases, p.normalize())
	}

	sort.SliceStable(phrases, func(i, j int) bool {
		return phrases[i].CreatedAt.Before(phrases[j].CreatedAt)
	})
	return phrases, nil
}

// Reload re-reads the collection, e.g. after another process changed it
func (s *Store) Reload(ctx context.Context) error {
	phrases, err := s.load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.phrases = phrases
	s.mu.Unlock()

	s.logger.Debug().Int("phrases", len(phrases)).Msg("Reloaded phrases")
	s.notify(Change{Kind: Reloaded})
	return nil
}

// Create adds a phrase. Blank text returns ErrEmptyText and adds nothing.
func (s *Store) Create(ctx context.Context, text string, opts ...CreateOption) (Phrase, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Phrase{}, ErrEmptyText
	}

	p := Phrase{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: s.now(),
	}
	for _, opt := range opts {
		opt(&p)
	}
	if p.Hotkey == "" {
		p.Hotkey, _ = NormalizeHotkey(text)
	}
	if p.Color == "" {
		p.Color = s.palette()
	}

	s.mu.Lock()
	if err := s.put(ctx, p); err != nil {
		s.mu.Unlock()
		return Phrase{}, err
	}
	s.phrases = append(s.phrases, p)
	s.mu.Unlock()

	s.logger.Debug().Str("id", p.ID).Str("text", p.Text).Str("hotkey", p.Hotkey).Msg("Created phrase")
	s.notify(Change{Kind: Added, Phrase: p})
	return p, nil
}

// Increment adds one to the count
func (s *Store) Increment(ctx context.Context, id string) (Phrase, error) {
	return s.mutate(ctx, id, func(p *Phrase) bool {
		p.Count++
		return true
	})
}

// Decrement subtracts one from the count. With ClampAtZero a count of zero
// is left unchanged.
func (s *Store) Decrement(ctx context.Context, id string) (Phrase, error) {
	return s.mutate(ctx, id, func(p *Phrase) bool {
		if s.clampAtZero && p.Count <= 0 {
			return false
		}
		p.Count--
		return true
	})
}

// SetHotkey stores the lowercased first character of key. An empty key
// (a cancelled prompt) changes nothing.
func (s *Store) SetHotkey(ctx context.Context, id, key string) (Phrase, error) {
	hk, ok := NormalizeHotkey(key)
	return s.mutate(ctx, id, func(p *Phrase) bool {
		if !ok || p.Hotkey == hk {
			return false
		}
		p.Hotkey = hk
		return true
	})
}

// Reset sets the count to zero
func (s *Store) Reset(ctx context.Context, id string) (Phrase, error) {
	return s.mutate(ctx, id, func(p *Phrase) bool {
		if p.Count == 0 {
			return false
		}
		p.Count = 0
		return true
	})
}

// ResetAll sets every count to zero. Either every nonzero phrase is reset
// or, when a write fails, the records already written are restored and the
// counts are left as they were.
func (s *Store) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	var reset []int
	for i, p := range s.phrases {
		if p.Count != 0 {
			reset = append(reset, i)
		}
	}

	for n, idx := range reset {
		p := s.phrases[idx]
		p.Count = 0
		if err := s.put(ctx, p); err != nil {
			for _, done := range reset[:n] {
				if rerr := s.put(ctx, s.phrases[done]); rerr != nil {
					s.logger.Error().Err(rerr).Str("id", s.phrases[done].ID).Msg("Failed to restore phrase after reset")
				}
			}
			s.mu.Unlock()
			return err
		}
	}

	changed := make([]Phrase, 0, len(reset))
	for _, idx := range reset {
		s.phrases[idx].Count = 0
		changed = append(changed, s.phrases[idx])
	}
	s.mu.Unlock()

	for _, p := range changed {
		s.notify(Change{Kind: Updated, Phrase: p})
	}
	return nil
}

// Remove deletes a phrase permanently
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	p := s.phrases[idx]

	if err := s.coll.Delete(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.mu.Unlock()
		return fmt.Errorf("delete phrase %s: %w", id, err)
	}
	s.phrases = append(s.phrases[:idx], s.phrases[idx+1:]...)
	s.mu.Unlock()

	s.logger.Debug().Str("id", id).Str("text", p.Text).Msg("Removed phrase")
	s.notify(Change{Kind: Removed, Phrase: p})
	return nil
}

// All returns a copy of the phrases in creation order
func (s *Store) All() []Phrase {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Phrase, len(s.phrases))
	copy(out, s.phrases)
	return out
}

// Len returns the number of phrases
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.phrases)
}

// Get returns the phrase with the given id
func (s *Store) Get(id string) (Phrase, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexOf(id); idx >= 0 {
		return s.phrases[idx], true
	}
	return Phrase{}, false
}

// Find resolves an id or a case-insensitive text match
func (s *Store) Find(ref string) (Phrase, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Phrase{}, false
	}
	if p, ok := s.Get(ref); ok {
		return p, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.phrases {
		if strings.EqualFold(p.Text, ref) {
			return p, true
		}
	}
	return Phrase{}, false
}

// Matching returns every phrase whose hotkey is key
func (s *Store) Matching(key string) []Phrase {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Phrase
	for _, p := range s.phrases {
		if p.Hotkey == key {
			out = append(out, p)
		}
	}
	return out
}

// OnChange registers a listener and returns a function that removes it
func (s *Store) OnChange(l Listener) func() {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		delete(s.listeners, id)
	}
}

// notify calls listeners outside of the store locks
func (s *Store) notify(c Change) {
	s.listenerMu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.listenerMu.Unlock()

	for _, l := range listeners {
		l(c)
	}
}

// mutate applies fn to a copy of the phrase, persists it and only then
// commits it in memory. fn returns false when nothing changed.
func (s *Store) mutate(ctx context.Context, id string, fn func(*Phrase) bool) (Phrase, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return Phrase{}, ErrNotFound
	}

	old := s.phrases[idx]
	p := old
	if !fn(&p) {
		s.mu.Unlock()
		return p, nil
	}
	if err := s.put(ctx, p); err != nil {
		s.mu.Unlock()
		return old, err
	}
	s.phrases[idx] = p
	s.mu.Unlock()

	s.notify(Change{Kind: Updated, Phrase: p})
	return p, nil
}

// put writes one phrase record. Must be called with s.mu held.
func (s *Store) put(ctx context.Context, p Phrase) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode phrase %s: %w", p.ID, err)
	}
	if err := s.coll.Put(ctx, p.ID, data); err != nil {
		return fmt.Errorf("save phrase %s: %w", p.ID, err)
	}
	return nil
}

// indexOf must be called with s.mu held
func (s *Store) indexOf(id string) int {
	for i := range s.phrases {
		if s.phrases[i].ID == id {
			return i
		}
	}
	return -1
}
