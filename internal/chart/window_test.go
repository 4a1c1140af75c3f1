package chart

import (
	"slices"
	"testing"

	"phrasecounter/internal/phrase"
)

func TestWindowPushEvictsOldest(t *testing.T) {
	w := NewWindow(3)

	w.Push(1)
	w.Push(2)
	if got := w.Values(); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("Values() = %v, want [0 1 2]", got)
	}

	w.Push(3)
	w.Push(4)
	if got := w.Values(); !slices.Equal(got, []int{2, 3, 4}) {
		t.Errorf("Values() = %v, want [2 3 4]", got)
	}
	if w.Len() != 3 {
		t.Errorf("Len() = %d, want 3", w.Len())
	}
	if got := w.Recent(2); !slices.Equal(got, []int{3, 4}) {
		t.Errorf("Recent(2) = %v, want [3 4]", got)
	}
}

func TestWindowDefaultCapacity(t *testing.T) {
	w := NewWindow(0)
	if got := len(w.Values()); got != DefaultCapacity {
		t.Errorf("len(Values()) = %d on an empty window, want %d", got, DefaultCapacity)
	}

	for i := range 200 {
		w.Push(i)
	}
	values := w.Values()
	if len(values) != DefaultCapacity {
		t.Fatalf("len(Values()) = %d, want %d", len(values), DefaultCapacity)
	}
	if values[0] != 20 || values[len(values)-1] != 199 {
		t.Errorf("Values() spans %d..%d, want 20..199", values[0], values[len(values)-1])
	}
}

func TestWindowClear(t *testing.T) {
	w := NewWindow(4)
	w.Push(7)
	w.Push(8)
	w.Clear()

	if w.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", w.Len())
	}
	if got := w.Values(); !slices.Equal(got, []int{0, 0, 0, 0}) {
		t.Errorf("Values() = %v after Clear", got)
	}
	if got := w.Recent(4); len(got) != 0 {
		t.Errorf("Recent() = %v after Clear, want empty", got)
	}
}

func TestSampler(t *testing.T) {
	s := NewSampler(5)

	a := phrase.Phrase{ID: "a", Count: 1}
	b := phrase.Phrase{ID: "b", Count: 4}
	s.Sample([]phrase.Phrase{a, b})
	a.Count = 2
	s.Sample([]phrase.Phrase{a})

	if got := s.Window("a").Recent(5); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("a samples = %v, want [1 2]", got)
	}
	// b was removed before the second sample
	if got := s.Window("b").Len(); got != 0 {
		t.Errorf("b window should have been dropped, has %d samples", got)
	}

	s.Clear()
	if s.Window("a").Len() != 0 {
		t.Error("Clear() should empty windows")
	}
}
