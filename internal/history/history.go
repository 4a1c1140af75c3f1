package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"phrasecounter/internal/phrase"
	"phrasecounter/internal/storage"
)

// Entry is an archived phrase count. Entries are never modified.
type Entry struct {
	ID        string          `json:"id"`
	Snapshot  phrase.Snapshot `json:"phraseSnapshot"`
	Timestamp time.Time       `json:"timestamp"`
}

// DayTotal sums the archived counts of one calendar day
type DayTotal struct {
	Day    time.Time      // Local midnight
	Label  string         // "M/D"
	Counts map[string]int // Keyed by phrase text
}

// Total returns the sum of all phrase counts for the day
func (d DayTotal) Total() int {
	n := 0
	for _, c := range d.Counts {
		n += c
	}
	return n
}

// Store is the append-only history log
type Store struct {
	coll   storage.Collection
	logger zerolog.Logger

	mu      sync.RWMutex
	entries []Entry // Ordered by Timestamp
}

// NewStore loads the history collection
func NewStore(ctx context.Context, coll storage.Collection, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		coll:   coll,
		logger: logger.With().Str("component", "history-store").Logger(),
	}

	records, err := coll.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	for _, rec := range records {
		var e Entry
		if err := json.Unmarshal(rec.Data, &e); err != nil {
			s.logger.Warn().Err(err).Str("id", rec.ID).Msg("Skipping unreadable history record")
			continue
		}
		if e.ID == "" {
			e.ID = rec.ID
		}
		s.entries = append(s.entries, e)
	}
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Timestamp.Before(s.entries[j].Timestamp)
	})

	return s, nil
}

// Append archives one entry per snapshot, all stamped with at. It is all or
// nothing: when a write fails the entries already written are deleted again.
func (s *Store) Append(ctx context.Context, snapshots []phrase.Snapshot, at time.Time) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]Entry, 0, len(snapshots))
	for _, snap := range snapshots {
		e := Entry{
			ID:        uuid.NewString(),
			Snapshot:  snap,
			Timestamp: at,
		}
		data, err := json.Marshal(e)
		if err != nil {
			s.rollback(ctx, added)
			return nil, fmt.Errorf("encode history entry: %w", err)
		}
		if err := s.coll.Put(ctx, e.ID, data); err != nil {
			s.rollback(ctx, added)
			return nil, fmt.Errorf("save history entry: %w", err)
		}
		added = append(added, e)
	}
	s.entries = append(s.entries, added...)

	s.logger.Debug().Int("entries", len(added)).Time("at", at).Msg("Archived session")
	return added, nil
}

// rollback deletes entries written by a failed Append. Must be called with
// s.mu held.
func (s *Store) rollback(ctx context.Context, written []Entry) {
	for _, e := range written {
		if err := s.coll.Delete(ctx, e.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().Err(err).Str("id", e.ID).Msg("Failed to roll back history entry")
		}
	}
}

// All returns a copy of the log, oldest first
func (s *Store) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// ByDay groups entries by local calendar day, oldest day first
func (s *Store) ByDay() []DayTotal {
	entries := s.All()

	byDay := make(map[time.Time]*DayTotal)
	var days []time.Time
	for _, e := range entries {
		ts := e.Timestamp.Local()
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.Local)
		dt, ok := byDay[day]
		if !ok {
			dt = &DayTotal{
				Day:    day,
				Label:  fmt.Sprintf("%d/%d", int(day.Month()), day.Day()),
				Counts: make(map[string]int),
			}
			byDay[day] = dt
			days = append(days, day)
		}
		dt.Counts[e.Snapshot.Text] += e.Snapshot.Count
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]DayTotal, 0, len(days))
	for _, d := range days {
		out = append(out, *byDay[d])
	}
	return out
}
