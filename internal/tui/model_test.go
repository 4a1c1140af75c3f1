package tui

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"phrasecounter/internal/chart"
	"phrasecounter/internal/history"
	"phrasecounter/internal/phrase"
	"phrasecounter/internal/session"
	"phrasecounter/internal/storage"
	"phrasecounter/internal/storage/memory"
	"phrasecounter/internal/tally"
)

func newTestModel(t *testing.T) (Model, *tally.Controller) {
	t.Helper()

	ctx := context.Background()
	backend := memory.New()
	clock := &session.TestClock{CurrentTime: time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local)}

	phrases, err := phrase.NewStore(ctx, backend.Collection(storage.CollectionPhrases), phrase.Options{Now: clock.Now})
	if err != nil {
		t.Fatalf("phrase.NewStore() error = %v", err)
	}
	hist, err := history.NewStore(ctx, backend.Collection(storage.CollectionHistory), zerolog.Nop())
	if err != nil {
		t.Fatalf("history.NewStore() error = %v", err)
	}
	ctrl := tally.New(phrases, hist, tally.Options{Clock: clock})

	m := NewModel(ModelOptions{Controller: ctrl})
	t.Cleanup(m.Close)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model), ctrl
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func counts(ctrl *tally.Controller) map[string]int {
	out := make(map[string]int)
	for _, p := range ctrl.Phrases().All() {
		out[p.Text] = p.Count
	}
	return out
}

func TestNewModel(t *testing.T) {
	m, _ := newTestModel(t)
	if m.viewMode != ViewPhrases {
		t.Errorf("expected initial view mode to be ViewPhrases, got %d", m.viewMode)
	}
	if m.inputMode != inputNone {
		t.Errorf("expected no open prompt, got %d", m.inputMode)
	}
	if !strings.Contains(m.View(), "No phrases yet") {
		t.Error("expected empty state hint in view")
	}
}

func TestNewPhrasePrompt(t *testing.T) {
	m, ctrl := newTestModel(t)

	m, _ = press(t, m, key(tea.KeyCtrlN))
	if m.inputMode != inputNewPhrase {
		t.Fatalf("expected new phrase prompt after ctrl+n, got %d", m.inputMode)
	}

	// Typed characters go to the prompt, not to the hotkey dispatcher
	m, _ = press(t, m, runes("coffee"), key(tea.KeyEnter))
	if m.inputMode != inputNone {
		t.Error("expected prompt to close after enter")
	}
	if got := counts(ctrl); len(got) != 1 || got["coffee"] != 0 {
		t.Errorf("expected one phrase coffee with count 0, got %v", got)
	}
	if len(m.phraseList.Items()) != 1 {
		t.Errorf("expected 1 list item, got %d", len(m.phraseList.Items()))
	}
}

func TestNewPhraseBlankIsSkipped(t *testing.T) {
	m, ctrl := newTestModel(t)

	m, _ = press(t, m, key(tea.KeyCtrlN), runes("   "), key(tea.KeyEnter))
	if ctrl.Phrases().Len() != 0 {
		t.Error("expected blank phrase to be skipped")
	}
	if m.err != nil {
		t.Errorf("expected no error for blank phrase, got %v", m.err)
	}
}

func TestHotkeysIncrement(t *testing.T) {
	m, ctrl := newTestModel(t)
	ctx := context.Background()
	_, _ = ctrl.Create(ctx, "coffee")
	_, _ = ctrl.Create(ctx, "meeting")

	_, _ = press(t, m, runes("c"), runes("c"), runes("C"), runes("x"))

	got := counts(ctrl)
	if got["coffee"] != 3 || got["meeting"] != 0 {
		t.Errorf("counts = %v, want coffee 3 meeting 0", got)
	}
}

func TestCtrlKeysAreNotHotkeys(t *testing.T) {
	m, ctrl := newTestModel(t)
	_, _ = ctrl.Create(context.Background(), "meeting")

	_, _ = press(t, m, key(tea.KeyCtrlR))
	if counts(ctrl)["meeting"] != 0 {
		t.Error("ctrl-modified key must not increment")
	}
}

func TestAltKeysAreHotkeys(t *testing.T) {
	m, ctrl := newTestModel(t)
	_, _ = ctrl.Create(context.Background(), "meeting")

	alt := runes("M")
	alt.Alt = true
	_, _ = press(t, m, alt)
	if got := counts(ctrl)["meeting"]; got != 1 {
		t.Errorf("meeting = %d after alt+M, want 1", got)
	}
}

func TestArrowKeysAdjustSelected(t *testing.T) {
	m, ctrl := newTestModel(t)
	ctx := context.Background()
	_, _ = ctrl.Create(ctx, "coffee")
	_, _ = ctrl.Create(ctx, "meeting")

	m = m.refreshPhrases()
	m, _ = press(t, m, key(tea.KeyDown), key(tea.KeyRight), key(tea.KeyRight), key(tea.KeyLeft))

	got := counts(ctrl)
	if got["meeting"] != 1 || got["coffee"] != 0 {
		t.Errorf("counts = %v, want meeting 1", got)
	}
	if p, ok := m.SelectedPhrase(); !ok || p.Text != "meeting" {
		t.Errorf("selected = %+v, want meeting", p)
	}
}

func TestHotkeyPromptCancel(t *testing.T) {
	m, ctrl := newTestModel(t)
	p, _ := ctrl.Create(context.Background(), "coffee")
	m = m.refreshPhrases()

	m, _ = press(t, m, key(tea.KeyCtrlK), runes("z"), key(tea.KeyEsc))
	if m.inputMode != inputNone {
		t.Error("expected prompt closed after esc")
	}
	got, _ := ctrl.Phrases().Get(p.ID)
	if got.Hotkey != "c" {
		t.Errorf("hotkey = %q after cancel, want c", got.Hotkey)
	}

	// Enter with an empty prompt is also a no-op
	m, _ = press(t, m, key(tea.KeyCtrlK), key(tea.KeyEnter))
	got, _ = ctrl.Phrases().Get(p.ID)
	if got.Hotkey != "c" {
		t.Errorf("hotkey = %q after empty submit, want c", got.Hotkey)
	}

	_, _ = press(t, m, key(tea.KeyCtrlK), runes("Z"), key(tea.KeyEnter))
	got, _ = ctrl.Phrases().Get(p.ID)
	if got.Hotkey != "z" {
		t.Errorf("hotkey = %q, want z", got.Hotkey)
	}
}

func TestDeleteSelected(t *testing.T) {
	m, ctrl := newTestModel(t)
	_, _ = ctrl.Create(context.Background(), "coffee")
	m = m.refreshPhrases()

	m, _ = press(t, m, key(tea.KeyCtrlD))
	if ctrl.Phrases().Len() != 0 {
		t.Error("expected phrase deleted after ctrl+d")
	}
	if len(m.phraseList.Items()) != 0 {
		t.Error("expected list to be empty after delete")
	}
}

func TestStartStopTicks(t *testing.T) {
	m, ctrl := newTestModel(t)

	m, cmd := press(t, m, key(tea.KeyCtrlT))
	if cmd == nil {
		t.Fatal("expected tick command after ctrl+t")
	}
	if !ctrl.Timer().Running() {
		t.Fatal("expected timer running after ctrl+t")
	}

	// A second start is a no-op and schedules nothing
	if _, cmd := press(t, m, key(tea.KeyCtrlT)); cmd != nil {
		t.Error("expected no second tick loop")
	}

	h := m.tick
	if h == 0 {
		t.Fatal("expected tick handle to be recorded")
	}
	updated, next := m.Update(tickMsg{handle: h})
	m = updated.(Model)
	if next == nil {
		t.Error("expected tick to reschedule itself")
	}

	m, _ = press(t, m, key(tea.KeyCtrlX))
	if ctrl.Timer().State() != session.Stopped {
		t.Fatalf("expected stopped timer, got %s", ctrl.Timer().State())
	}
	if _, next := m.Update(tickMsg{handle: h}); next != nil {
		t.Error("expected stale tick to end the loop")
	}
}

func TestSaveShowsSummary(t *testing.T) {
	m, ctrl := newTestModel(t)
	ctx := context.Background()
	_, _ = ctrl.Create(ctx, "coffee")
	_, _ = ctrl.Create(ctx, "meeting")

	m, _ = press(t, m, runes("c"), runes("c"), runes("c"), key(tea.KeyCtrlW))
	if m.summary == nil {
		t.Fatal("expected summary after ctrl+w")
	}
	if !strings.Contains(m.View(), "coffee: 3 (n/a)") {
		t.Errorf("expected totals in view, got:\n%s", m.View())
	}
	if ctrl.History().Len() != 2 {
		t.Errorf("history len = %d, want 2", ctrl.History().Len())
	}
	if counts(ctrl)["coffee"] != 0 {
		t.Error("expected counts reset after save")
	}

	// Hotkeys are swallowed while the summary is open; esc dismisses
	m, cmd := press(t, m, runes("c"), key(tea.KeyEsc))
	if cmd != nil {
		t.Error("esc on the summary must not quit")
	}
	if m.summary != nil {
		t.Error("expected summary dismissed")
	}
	if counts(ctrl)["coffee"] != 0 {
		t.Error("key press behind the summary must not count")
	}
}

func TestTabSwitchesView(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, key(tea.KeyTab))
	if m.viewMode != ViewHistory {
		t.Errorf("expected ViewHistory after tab, got %d", m.viewMode)
	}
	m, _ = press(t, m, key(tea.KeyTab))
	if m.viewMode != ViewPhrases {
		t.Errorf("expected ViewPhrases after second tab, got %d", m.viewMode)
	}
}

func TestHistoryViewIgnoresHotkeys(t *testing.T) {
	m, ctrl := newTestModel(t)
	_, _ = ctrl.Create(context.Background(), "coffee")

	_, _ = press(t, m, key(tea.KeyTab), runes("c"))
	if counts(ctrl)["coffee"] != 0 {
		t.Error("hotkeys should only count in the phrases view")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		m, _ := newTestModel(t)
		_, cmd := press(t, m, key(k))
		if cmd == nil {
			t.Fatalf("expected quit command for %s", key(k))
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("expected QuitMsg for %s", key(k))
		}
	}
}

func TestStoreChangesRefreshList(t *testing.T) {
	m, ctrl := newTestModel(t)

	// A change made outside Update, e.g. a reload from disk
	_, _ = ctrl.Create(context.Background(), "coffee")

	cmd := m.waitForChangeCmd()
	msg := cmd()
	if _, ok := msg.(phraseChangedMsg); !ok {
		t.Fatalf("expected phraseChangedMsg, got %T", msg)
	}
	updated, _ := m.Update(msg)
	if n := len(updated.(Model).phraseList.Items()); n != 1 {
		t.Errorf("expected 1 list item after change, got %d", n)
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   string
	}{
		{"empty", nil, ""},
		{"flat", []int{2, 2, 2}, "▁▁▁"},
		{"ramp", []int{0, 7}, "▁█"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sparkline(tt.values); got != tt.want {
				t.Errorf("sparkline(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestChartValuesPadsAndTrims(t *testing.T) {
	w := chart.NewWindow(6)
	w.Push(2)
	w.Push(5)

	if got := chartValues(w, 40); !slices.Equal(got, []int{0, 0, 0, 0, 2, 5}) {
		t.Errorf("chartValues(width 40) = %v, want zero-filled window", got)
	}
	if got := chartValues(w, 3); !slices.Equal(got, []int{0, 2, 5}) {
		t.Errorf("chartValues(width 3) = %v, want newest 3", got)
	}
}
