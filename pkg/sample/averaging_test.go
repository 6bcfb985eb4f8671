package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func runAveraging(window int, counts ...int16) []Sample {
	in := make(chan Sample, len(counts))
	base := time.Now()
	for i, c := range counts {
		in <- Sample{Timestamp: base.Add(time.Duration(i) * time.Millisecond), Counts: c, Volts: float64(c) / 1000}
	}
	close(in)

	var out []Sample
	for s := range NewAveragingConverter(window, 0)(in) {
		out = append(out, s)
	}
	return out
}

func TestAveragingConverter(t *testing.T) {
	defer goleak.VerifyNone(t)

	got := runAveraging(3, 3, 6, 9, 12, 0)

	var counts []int16
	for _, s := range got {
		counts = append(counts, s.Counts)
	}
	assert.Equal(t, []int16{3, 5, 6, 9, 7}, counts)
	assert.InDelta(t, 0.007, got[4].Volts, 1e-9)
}

func TestAveragingConverter_WindowOne(t *testing.T) {
	got := runAveraging(1, 10, -20, 30)
	assert.Equal(t, int16(-20), got[1].Counts)
	assert.Equal(t, int16(30), got[2].Counts)
}

func TestAveragingConverter_KeepsNewestTimestamp(t *testing.T) {
	got := runAveraging(4, 1, 2, 3)
	assert.True(t, got[2].Timestamp.After(got[0].Timestamp))
}

func TestAveragingConverter_InvalidWindow(t *testing.T) {
	got := runAveraging(0, 7, 8)
	assert.Len(t, got, 2)
	assert.Equal(t, int16(8), got[1].Counts)
}

func TestRoundDiv(t *testing.T) {
	assert.Equal(t, int64(3), roundDiv(5, 2))
	assert.Equal(t, int64(-3), roundDiv(-5, 2))
	assert.Equal(t, int64(1), roundDiv(4, 3))
	assert.Equal(t, int64(-1), roundDiv(-4, 3))
}
