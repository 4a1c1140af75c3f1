package tally

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"phrasecounter/internal/chart"
	"phrasecounter/internal/history"
	"phrasecounter/internal/hotkey"
	"phrasecounter/internal/metrics"
	"phrasecounter/internal/phrase"
	"phrasecounter/internal/session"
	"phrasecounter/internal/storage"
)

// Options configures a Controller
type Options struct {
	// Clock defaults to the system clock
	Clock session.Clock

	// WindowSize is the per-phrase sample capacity; defaults to 180
	WindowSize int

	Logger zerolog.Logger
}

// Controller owns the counting session and coordinates the stores
type Controller struct {
	phrases    *phrase.Store
	history    *history.Store
	timer      *session.Timer
	samples    *chart.Sampler
	dispatcher *hotkey.Dispatcher
	clock      session.Clock
	logger     zerolog.Logger
}

// New creates a controller with an idle session
func New(phrases *phrase.Store, hist *history.Store, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = session.RealClock{}
	}

	c := &Controller{
		phrases:    phrases,
		history:    hist,
		timer:      session.NewTimer(opts.Clock),
		samples:    chart.NewSampler(opts.WindowSize),
		dispatcher: hotkey.NewDispatcher(phrases),
		clock:      opts.Clock,
		logger:     opts.Logger.With().Str("component", "tally").Logger(),
	}
	metrics.PhrasesTracked.Set(float64(phrases.Len()))
	return c
}

// Phrases returns the phrase store
func (c *Controller) Phrases() *phrase.Store { return c.phrases }

// History returns the history store
func (c *Controller) History() *history.Store { return c.history }

// Timer returns the session timer for read access
func (c *Controller) Timer() *session.Timer { return c.timer }

// Samples returns the chart window of one phrase
func (c *Controller) Samples(id string) *chart.Window { return c.samples.Window(id) }

// Create adds a phrase; see phrase.Store.Create
func (c *Controller) Create(ctx context.Context, text string, opts ...phrase.CreateOption) (phrase.Phrase, error) {
	p, err := c.phrases.Create(ctx, text, opts...)
	if err != nil {
		c.storageError(err)
		return p, err
	}
	metrics.PhrasesTracked.Set(float64(c.phrases.Len()))
	c.logger.Info().Str("text", p.Text).Str("hotkey", p.Hotkey).Msg("Phrase added")
	return p, nil
}

// Remove deletes a phrase and its samples
func (c *Controller) Remove(ctx context.Context, id string) error {
	if err := c.phrases.Remove(ctx, id); err != nil {
		c.storageError(err)
		return err
	}
	c.samples.Forget(id)
	metrics.PhrasesTracked.Set(float64(c.phrases.Len()))
	return nil
}

// Increment adds one to a phrase from an on-screen control
func (c *Controller) Increment(ctx context.Context, id string) (phrase.Phrase, error) {
	p, err := c.phrases.Increment(ctx, id)
	if err != nil {
		c.storageError(err)
		return p, err
	}
	metrics.IncrementsTotal.WithLabelValues("control", "up").Inc()
	return p, nil
}

// Decrement subtracts one from a phrase from an on-screen control
func (c *Controller) Decrement(ctx context.Context, id string) (phrase.Phrase, error) {
	p, err := c.phrases.Decrement(ctx, id)
	if err != nil {
		c.storageError(err)
		return p, err
	}
	metrics.IncrementsTotal.WithLabelValues("control", "down").Inc()
	return p, nil
}

// SetHotkey changes a phrase's hotkey; an empty key is a no-op
func (c *Controller) SetHotkey(ctx context.Context, id, key string) (phrase.Phrase, error) {
	p, err := c.phrases.SetHotkey(ctx, id, key)
	if err != nil {
		c.storageError(err)
	}
	return p, err
}

// Press routes a key press to the hotkey dispatcher
func (c *Controller) Press(ctx context.Context, kp hotkey.KeyPress) ([]phrase.Phrase, error) {
	if kp.Ctrl {
		return nil, nil
	}

	updated, err := c.dispatcher.Dispatch(ctx, kp)
	if err != nil {
		c.storageError(err)
		return updated, err
	}

	metrics.HotkeyPressesTotal.WithLabelValues(strconv.FormatBool(len(updated) > 0)).Inc()
	if len(updated) > 0 {
		metrics.IncrementsTotal.WithLabelValues("hotkey", "up").Add(float64(len(updated)))
	}
	return updated, nil
}

// Start begins a session. It returns false when one is already running.
func (c *Controller) Start() (session.Handle, bool) {
	h, ok := c.timer.Start()
	if ok {
		c.logger.Info().Time("start", c.timer.StartTime()).Msg("Session started")
	}
	return h, ok
}

// Stop ends the running session, if any
func (c *Controller) Stop() {
	if !c.timer.Running() {
		return
	}
	c.timer.Stop()
	c.logger.Info().Dur("elapsed", c.timer.Elapsed()).Msg("Session stopped")
}

// Tick advances the session and samples every phrase. It returns false when
// the handle is stale, which ends the tick loop.
func (c *Controller) Tick(h session.Handle) bool {
	if !c.timer.Tick(h) {
		return false
	}
	c.samples.Sample(c.phrases.All())
	return true
}

// Reset stops the session, zeroes every count and clears the samples
func (c *Controller) Reset(ctx context.Context) error {
	c.timer.Reset()
	c.samples.Clear()
	if err := c.phrases.ResetAll(ctx); err != nil {
		c.storageError(err)
		return err
	}
	c.logger.Info().Msg("Session reset")
	return nil
}

// SaveHistory stops the session, archives one entry per phrase and resets.
// On a failed write the counts are left as they were.
func (c *Controller) SaveHistory(ctx context.Context) (Summary, error) {
	c.Stop()

	minutes := c.timer.MinutesElapsed()
	phrases := c.phrases.All()

	summary := Summary{
		Elapsed: c.timer.Elapsed(),
		Minutes: minutes,
		SavedAt: c.clock.Now(),
		Lines:   make([]Line, 0, len(phrases)),
	}
	snapshots := make([]phrase.Snapshot, 0, len(phrases))
	for _, p := range phrases {
		summary.Lines = append(summary.Lines, Line{
			Text:  p.Text,
			Count: p.Count,
			Rate:  session.Rate(p.Count, minutes),
		})
		snapshots = append(snapshots, p.Snapshot())
	}

	if _, err := c.history.Append(ctx, snapshots, summary.SavedAt); err != nil {
		metrics.StorageErrorsTotal.WithLabelValues(storage.CollectionHistory).Inc()
		c.logger.Error().Err(err).Msg("Failed to archive session")
		return summary, err
	}

	metrics.SessionsSavedTotal.Inc()
	metrics.SessionDuration.Observe(minutes * 60)
	c.logger.Info().Int("phrases", len(phrases)).Float64("minutes", minutes).Msg("Session saved")

	return summary, c.Reset(ctx)
}

// storageError records failed phrase writes; validation errors are skipped
func (c *Controller) storageError(err error) {
	if err == nil || errors.Is(err, phrase.ErrEmptyText) || errors.Is(err, phrase.ErrNotFound) {
		return
	}
	metrics.StorageErrorsTotal.WithLabelValues(storage.CollectionPhrases).Inc()
	c.logger.Error().Err(err).Msg("Phrase write failed")
}

// Line is one phrase in a save summary
type Line struct {
	Text  string
	Count int
	Rate  float64 // Per minute; NaN when no time elapsed
}

// Summary describes an archived session
type Summary struct {
	Elapsed time.Duration
	Minutes float64
	SavedAt time.Time
	Lines   []Line
}

// String renders the summary as a totals message
func (s Summary) String() string {
	var b strings.Builder
	b.WriteString("Totals:\n")
	for _, l := range s.Lines {
		fmt.Fprintf(&b, "\t%s: %d (%s)\n", l.Text, l.Count, FormatRate(l.Rate))
	}
	return b.String()
}

// FormatRate renders a per-minute rate to three significant digits, or
// "n/a" when undefined
func FormatRate(rate float64) string {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%#.3g", rate)
}
