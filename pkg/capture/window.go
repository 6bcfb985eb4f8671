package capture

import "github.com/itohio/adcstream/pkg/sample"

// Window keeps the last N samples.
// Internally a ring buffer; Samples returns them ordered oldest to newest.
type Window struct {
	buf  []sample.Sample
	head int // Next write position
	full bool
}

// NewWindow creates a window holding up to size samples. A size below 1 is treated as 1.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{buf: make([]sample.Sample, size)}
}

// Push appends s, evicting the oldest sample when full.
func (w *Window) Push(s sample.Sample) {
	w.buf[w.head] = s
	w.head++
	if w.head == len(w.buf) {
		w.head = 0
		w.full = true
	}
}

// Len returns the number of samples held.
func (w *Window) Len() int {
	if w.full {
		return len(w.buf)
	}
	return w.head
}

// Cap returns the window size.
func (w *Window) Cap() int {
	return len(w.buf)
}

// Samples appends the held samples to dst, oldest first, and returns the result.
func (w *Window) Samples(dst []sample.Sample) []sample.Sample {
	if w.full {
		dst = append(dst, w.buf[w.head:]...)
	}
	return append(dst, w.buf[:w.head]...)
}

// Reset empties the window.
func (w *Window) Reset() {
	w.head = 0
	w.full = false
}
