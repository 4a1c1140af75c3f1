package hotkey

import (
	"context"
	"unicode"

	"phrasecounter/internal/phrase"
)

// KeyPress is a single key event from the presentation layer
type KeyPress struct {
	Rune rune
	Ctrl bool // Control-modified presses are reserved for shortcuts
}

// Counter is the part of the phrase store the dispatcher needs
type Counter interface {
	Matching(key string) []phrase.Phrase
	Increment(ctx context.Context, id string) (phrase.Phrase, error)
}

// Dispatcher turns key presses into increments of every matching phrase
type Dispatcher struct {
	counter Counter
}

// NewDispatcher creates a dispatcher over the given counter
func NewDispatcher(counter Counter) *Dispatcher {
	return &Dispatcher{counter: counter}
}

// Dispatch increments each phrase whose hotkey is the pressed character and
// returns the phrases after incrementing. Ctrl presses and unmatched keys
// are no-ops.
func (d *Dispatcher) Dispatch(ctx context.Context, kp KeyPress) ([]phrase.Phrase, error) {
	if kp.Ctrl || kp.Rune == 0 || !unicode.IsPrint(kp.Rune) {
		return nil, nil
	}

	key := string(unicode.ToLower(kp.Rune))
	matches := d.counter.Matching(key)

	updated := make([]phrase.Phrase, 0, len(matches))
	for _, p := range matches {
		next, err := d.counter.Increment(ctx, p.ID)
		if err != nil {
			return updated, err
		}
		updated = append(updated, next)
	}
	return updated, nil
}
