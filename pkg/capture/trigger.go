// Package capture turns the continuous sample stream into bounded captures.
//
// A capture starts at the first value at or above the threshold and ends once
// BelowLimit consecutive values have stayed below it. Every value in between,
// including the trailing low ones, belongs to the capture.
package capture

import "fmt"

// State is the trigger state.
type State int

const (
	Armed State = iota
	Capturing
	Done
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Capturing:
		return "capturing"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Trigger is the threshold trigger state machine.
type Trigger struct {
	threshold  int16
	belowLimit int

	state  State
	below  int
	values []int16
}

// NewTrigger creates an armed trigger. A belowLimit below 1 is treated as 1.
func NewTrigger(threshold int16, belowLimit int) *Trigger {
	if belowLimit < 1 {
		belowLimit = 1
	}
	return &Trigger{
		threshold:  threshold,
		belowLimit: belowLimit,
	}
}

// Feed advances the trigger by one value and returns the resulting state.
// Once Done, values are ignored until Reset.
func (t *Trigger) Feed(v int16) State {
	switch t.state {
	case Armed:
		if v >= t.threshold {
			t.state = Capturing
			t.values = append(t.values[:0], v)
			t.below = 0
		}
	case Capturing:
		t.values = append(t.values, v)
		if v < t.threshold {
			t.below++
		} else {
			t.below = 0
		}
		if t.below >= t.belowLimit {
			t.state = Done
		}
	}
	return t.state
}

// State returns the current state.
func (t *Trigger) State() State {
	return t.state
}

// Len returns the number of captured values.
func (t *Trigger) Len() int {
	return len(t.values)
}

// Samples returns a copy of the captured values.
func (t *Trigger) Samples() []int16 {
	out := make([]int16, len(t.values))
	copy(out, t.values)
	return out
}

// Threshold returns the trigger level in counts.
func (t *Trigger) Threshold() int16 {
	return t.threshold
}

// SetThreshold changes the trigger level and re-arms.
func (t *Trigger) SetThreshold(v int16) {
	t.threshold = v
	t.Reset()
}

// Reset discards captured values and re-arms.
func (t *Trigger) Reset() {
	t.state = Armed
	t.below = 0
	t.values = t.values[:0]
}
