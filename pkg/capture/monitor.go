package capture

import (
	"sync"

	"github.com/itohio/adcstream/pkg/config"
	"github.com/itohio/adcstream/pkg/sample"
	"go.uber.org/zap"
)

// Monitor watches the live sample stream. It keeps a window of recent
// samples for display and runs the trigger over every sample, re-arming
// after each completed capture.
type Monitor struct {
	log *zap.Logger

	mu       sync.RWMutex
	window   *Window
	trigger  *Trigger
	captured []sample.Sample // Samples of the capture in progress
	last     []sample.Sample // Most recent completed capture
	shutdown bool            // Set when the input channel closes, prevents further callbacks

	cbMu      sync.RWMutex
	onUpdate  []func(samples []sample.Sample, state State)
	onCapture []func(samples []sample.Sample)
}

// NewMonitor creates a Monitor. A nil logger discards logs.
func NewMonitor(cfg *config.CaptureConfig, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		log:     logger,
		window:  NewWindow(cfg.Window),
		trigger: NewTrigger(cfg.Threshold, cfg.BelowLimit),
	}
}

// ProcessSamples consumes input until it is closed.
// When the input channel closes, it sets the shutdown flag to prevent further callbacks.
func (m *Monitor) ProcessSamples(input <-chan sample.Sample) {
	for s := range input {
		m.processSample(s)
	}
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
}

func (m *Monitor) processSample(s sample.Sample) {
	m.mu.Lock()
	m.window.Push(s)

	n := m.trigger.Len()
	state := m.trigger.Feed(s.Counts)
	if m.trigger.Len() > n {
		if n == 0 {
			m.captured = m.captured[:0]
		}
		m.captured = append(m.captured, s)
	}

	var done []sample.Sample
	if state == Done {
		done = make([]sample.Sample, len(m.captured))
		copy(done, m.captured)
		m.last = done
		m.trigger.Reset()
		m.captured = m.captured[:0]
	}

	notify := !m.shutdown
	var windowCopy []sample.Sample
	if notify {
		windowCopy = m.window.Samples(make([]sample.Sample, 0, m.window.Len()))
	}
	m.mu.Unlock()

	if !notify {
		return
	}

	if done != nil {
		m.log.Info("capture complete",
			zap.Int("samples", len(done)),
			zap.Int16("threshold", m.Threshold()))
	}

	// Callbacks run without holding any locks.
	m.cbMu.RLock()
	updates := append([]func([]sample.Sample, State){}, m.onUpdate...)
	captures := append([]func([]sample.Sample){}, m.onCapture...)
	m.cbMu.RUnlock()

	for _, cb := range updates {
		cb(windowCopy, state)
	}
	if done != nil {
		for _, cb := range captures {
			cb(done)
		}
	}
}

// Samples returns a copy of the live window, oldest first.
func (m *Monitor) Samples() []sample.Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.window.Samples(make([]sample.Sample, 0, m.window.Len()))
}

// LastCapture returns the most recent completed capture, or nil.
func (m *Monitor) LastCapture() []sample.Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.last == nil {
		return nil
	}
	out := make([]sample.Sample, len(m.last))
	copy(out, m.last)
	return out
}

// State returns the trigger state.
func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trigger.State()
}

// Threshold returns the trigger level in counts.
func (m *Monitor) Threshold() int16 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trigger.Threshold()
}

// SetThreshold changes the trigger level and abandons any capture in progress.
func (m *Monitor) SetThreshold(v int16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trigger.SetThreshold(v)
	m.captured = m.captured[:0]
}

// Reconfigure applies new trigger and window parameters. The live window and
// any capture in progress are discarded.
func (m *Monitor) Reconfigure(cfg *config.CaptureConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.window = NewWindow(cfg.Window)
	m.trigger = NewTrigger(cfg.Threshold, cfg.BelowLimit)
	m.captured = m.captured[:0]
}

// OnUpdate registers a callback invoked after every sample with the live
// window and the trigger state. Callbacks should copy what they need and return quickly.
func (m *Monitor) OnUpdate(cb func(samples []sample.Sample, state State)) {
	if cb == nil {
		return
	}
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.onUpdate = append(m.onUpdate, cb)
}

// OnCapture registers a callback invoked with every completed capture.
func (m *Monitor) OnCapture(cb func(samples []sample.Sample)) {
	if cb == nil {
		return
	}
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.onCapture = append(m.onCapture, cb)
}

// ResetShutdown clears the shutdown flag and the live window, allowing
// callbacks again. Call it before starting a new acquisition chain.
func (m *Monitor) ResetShutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = false
	m.window.Reset()
	m.trigger.Reset()
	m.captured = m.captured[:0]
}
