package chart

import "phrasecounter/internal/phrase"

// Sampler keeps one sample window per phrase id
type Sampler struct {
	capacity int
	windows  map[string]*Window
}

// NewSampler creates a sampler whose windows hold capacity samples
func NewSampler(capacity int) *Sampler {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Sampler{
		capacity: capacity,
		windows:  make(map[string]*Window),
	}
}

// Sample pushes the current count of every phrase and drops the windows of
// phrases that no longer exist
func (s *Sampler) Sample(phrases []phrase.Phrase) {
	seen := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		seen[p.ID] = struct{}{}
		s.window(p.ID).Push(p.Count)
	}
	for id := range s.windows {
		if _, ok := seen[id]; !ok {
			delete(s.windows, id)
		}
	}
}

// Window returns the samples of one phrase, creating an empty window if the
// phrase has none yet
func (s *Sampler) Window(id string) *Window {
	return s.window(id)
}

func (s *Sampler) window(id string) *Window {
	w, ok := s.windows[id]
	if !ok {
		w = NewWindow(s.capacity)
		s.windows[id] = w
	}
	return w
}

// Forget drops the window of one phrase
func (s *Sampler) Forget(id string) {
	delete(s.windows, id)
}

// Clear empties every window
func (s *Sampler) Clear() {
	for _, w := range s.windows {
		w.Clear()
	}
}
