package capture

import (
	"sync"
	"testing"
	"time"

	"github.com/itohio/adcstream/pkg/config"
	"github.com/itohio/adcstream/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func feedMonitor(m *Monitor, values ...int16) {
	in := make(chan sample.Sample, len(values))
	now := time.Now()
	for i, v := range values {
		in <- sample.Sample{Timestamp: now.Add(time.Duration(i) * time.Millisecond), Counts: v}
	}
	close(in)
	m.ProcessSamples(in)
}

func sampleCounts(samples []sample.Sample) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = s.Counts
	}
	return out
}

func TestMonitor_Window(t *testing.T) {
	m := NewMonitor(&config.CaptureConfig{Threshold: 100, BelowLimit: 2, Window: 3}, nil)
	feedMonitor(m, 1, 2, 3, 4, 5)
	assert.Equal(t, []int16{3, 4, 5}, sampleCounts(m.Samples()))
	assert.Equal(t, Armed, m.State())
	assert.Nil(t, m.LastCapture())
}

func TestMonitor_Captures(t *testing.T) {
	m := NewMonitor(&config.CaptureConfig{Threshold: 100, BelowLimit: 2, Window: 10}, nil)

	var (
		mu       sync.Mutex
		captures [][]int16
		states   []State
	)
	m.OnCapture(func(samples []sample.Sample) {
		mu.Lock()
		defer mu.Unlock()
		captures = append(captures, sampleCounts(samples))
	})
	m.OnUpdate(func(samples []sample.Sample, state State) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, state)
	})

	feedMonitor(m, 0, 150, 1, 2, 0, 200, 300, 5, 6, 7)

	require.Len(t, captures, 2)
	assert.Equal(t, []int16{150, 1, 2}, captures[0])
	assert.Equal(t, []int16{200, 300, 5, 6}, captures[1])
	assert.Equal(t, []int16{200, 300, 5, 6}, sampleCounts(m.LastCapture()))
	assert.Equal(t, []State{Armed, Capturing, Capturing, Done, Armed, Capturing, Capturing, Capturing, Done, Armed}, states)
	assert.Equal(t, Armed, m.State())
}

func TestMonitor_SetThreshold(t *testing.T) {
	m := NewMonitor(&config.CaptureConfig{Threshold: 100, BelowLimit: 2, Window: 10}, nil)
	feedMonitor(m, 150)
	assert.Equal(t, Capturing, m.State())

	m.SetThreshold(1000)
	assert.Equal(t, Armed, m.State())
	assert.Equal(t, int16(1000), m.Threshold())
	// The live window survives a threshold change, Reconfigure clears it.
	assert.Equal(t, []int16{150}, sampleCounts(m.Samples()))

	m.Reconfigure(&config.CaptureConfig{Threshold: 1000, BelowLimit: 2, Window: 10})
	assert.Empty(t, m.Samples())
}

// Mirrors the live chain: no callbacks once the input has closed, until ResetShutdown.
func TestMonitor_GracefulShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewMonitor(&config.CaptureConfig{Threshold: 100, BelowLimit: 2, Window: 10}, nil)

	var mu sync.Mutex
	count := 0
	m.OnUpdate(func([]sample.Sample, State) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	in := make(chan sample.Sample, 3)
	done := make(chan struct{})
	go func() {
		m.ProcessSamples(in)
		close(done)
	}()
	for i := range 3 {
		in <- sample.Sample{Counts: int16(i)}
	}
	close(in)
	<-done

	mu.Lock()
	assert.Equal(t, 3, count)
	mu.Unlock()

	// The shutdown flag suppresses callbacks from a stale chain.
	m.processSample(sample.Sample{Counts: 1})
	mu.Lock()
	assert.Equal(t, 3, count)
	mu.Unlock()

	m.ResetShutdown()
	assert.Empty(t, m.Samples())
	feedMonitor(m, 1)
	mu.Lock()
	assert.Equal(t, 4, count)
	mu.Unlock()
}

func TestMonitor_NilCallbacksIgnored(t *testing.T) {
	m := NewMonitor(&config.CaptureConfig{Threshold: 1, BelowLimit: 1, Window: 2}, nil)
	m.OnUpdate(nil)
	m.OnCapture(nil)
	assert.NotPanics(t, func() { feedMonitor(m, 5, 0) })
}

func TestMonitor_Reconfigure(t *testing.T) {
	m := NewMonitor(&config.CaptureConfig{Threshold: 100, BelowLimit: 5, Window: 10}, nil)
	feedMonitor(m, 1, 2, 150)

	m.Reconfigure(&config.CaptureConfig{Threshold: 10, BelowLimit: 1, Window: 2})
	assert.Empty(t, m.Samples())
	assert.Equal(t, Armed, m.State())

	m.ResetShutdown()
	feedMonitor(m, 20, 0, 3)
	assert.Equal(t, []int16{0, 3}, sampleCounts(m.Samples()))
	assert.Equal(t, []int16{20, 0}, sampleCounts(m.LastCapture()))
}
