package sample

import (
	"testing"
	"time"

	"github.com/itohio/adcstream/pkg/config"
	"github.com/itohio/adcstream/pkg/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCountsToVolts(t *testing.T) {
	tests := []struct {
		name       string
		counts     int16
		vref       float64
		resolution int
		want       float64
	}{
		{name: "zero", counts: 0, vref: 3.3, resolution: 12, want: 0},
		{name: "full scale 12 bit", counts: 4095, vref: 3.3, resolution: 12, want: 3.3},
		{name: "half scale", counts: 2048, vref: 3.3, resolution: 12, want: 2048.0 / 4095.0 * 3.3},
		{name: "negative", counts: -4095, vref: 3.3, resolution: 12, want: -3.3},
		{name: "10 bit", counts: 1023, vref: 5, resolution: 10, want: 5},
		{name: "invalid resolution falls back", counts: 4095, vref: 1, resolution: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CountsToVolts(tt.counts, tt.vref, tt.resolution), 1e-9)
		})
	}
}

func TestNewConverter(t *testing.T) {
	defer goleak.VerifyNone(t)

	convert := NewConverter(&config.ADCConfig{VRef: 3.3, Resolution: 12}, 10)

	in := make(chan device.RawSample, 3)
	now := time.Now()
	in <- device.RawSample{Timestamp: now, Counts: 0}
	in <- device.RawSample{Timestamp: now.Add(time.Millisecond), Counts: 4095}
	in <- device.RawSample{Timestamp: now.Add(2 * time.Millisecond), Counts: -1}
	close(in)

	var got []Sample
	for s := range convert(in) {
		got = append(got, s)
	}

	require.Len(t, got, 3)
	assert.Equal(t, now, got[0].Timestamp)
	assert.Equal(t, int16(4095), got[1].Counts)
	assert.InDelta(t, 3.3, got[1].Volts, 1e-9)
	assert.Less(t, got[2].Volts, 0.0)
}

func TestNewConverter_ClosesOutput(t *testing.T) {
	defer goleak.VerifyNone(t)

	in := make(chan device.RawSample)
	out := NewConverter(&config.ADCConfig{VRef: 3.3, Resolution: 12}, 0)(in)
	close(in)

	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("output channel not closed")
	}
}
