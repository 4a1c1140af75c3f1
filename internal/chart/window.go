package chart

// DefaultCapacity is the number of one-second samples kept per phrase
const DefaultCapacity = 180

// Window is a fixed-capacity ring buffer of samples
type Window struct {
	buf   []int
	start int // Index of the oldest sample
	size  int
}

// NewWindow creates an empty window holding up to capacity samples
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Window{buf: make([]int, capacity)}
}

// Len returns the number of samples pushed since the last clear, up to the
// window capacity
func (w *Window) Len() int { return w.size }

// Push appends a sample, evicting the oldest when full
func (w *Window) Push(v int) {
	if w.size < len(w.buf) {
		w.buf[(w.start+w.size)%len(w.buf)] = v
		w.size++
		return
	}
	w.buf[w.start] = v
	w.start = (w.start + 1) % len(w.buf)
}

// Values returns Cap samples oldest first, zero-filled on the left until the
// window has filled up
func (w *Window) Values() []int {
	out := make([]int, len(w.buf))
	pad := len(w.buf) - w.size
	for i := 0; i < w.size; i++ {
		out[pad+i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

// Recent returns the last n samples oldest first (fewer if not yet pushed)
func (w *Window) Recent(n int) []int {
	if n > w.size {
		n = w.size
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = w.buf[(w.start+w.size-n+i)%len(w.buf)]
	}
	return out
}

// Clear drops all samples
func (w *Window) Clear() {
	w.start = 0
	w.size = 0
	for i := range w.buf {
		w.buf[i] = 0
	}
}
