package device

import (
	"testing"
	"time"

	"github.com/itohio/adcstream/pkg/config"
	"github.com/itohio/adcstream/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testMockConfig() *config.MockConfig {
	return &config.MockConfig{
		Message:     "Hi",
		BitSamples:  4,
		IdleCounts:  100,
		HighCounts:  5000,
		Noise:       10,
		IdleSamples: 20,
	}
}

func testStreamConfig() *config.StreamConfig {
	return &config.StreamConfig{
		Interval:  10 * time.Microsecond,
		PowerMode: "5v",
	}
}

func TestMock_ConnectClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewMock(testMockConfig(), testStreamConfig(), nil)
	assert.False(t, m.IsConnected())

	require.NoError(t, m.Connect())
	assert.True(t, m.IsConnected())
	assert.ErrorIs(t, m.Connect(), ErrAlreadyConnected)

	samples := m.Samples()
	timeout := time.After(2 * time.Second)
	var got []int16
	for len(got) < 50 {
		select {
		case s := <-samples:
			got = append(got, s.Counts)
		case <-timeout:
			t.Fatalf("received only %d samples", len(got))
		}
	}

	require.NoError(t, m.Close())
	assert.False(t, m.IsConnected())
	assert.NoError(t, m.Close())

	for _, v := range got {
		low := v >= 90 && v <= 110
		high := v >= 4990 && v <= 5010
		assert.True(t, low || high, "unexpected level %d", v)
	}

	// Drain: the reader closes the channel on exit.
	for range samples {
	}

	st := m.Stats()
	assert.GreaterOrEqual(t, st.Conversions, uint64(50))
	assert.Zero(t, st.Dropped)
}

func TestMock_Reconnect(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewMock(testMockConfig(), testStreamConfig(), nil)
	for range 2 {
		require.NoError(t, m.Connect())
		select {
		case <-m.Samples():
		case <-time.After(2 * time.Second):
			t.Fatal("no sample")
		}
		require.NoError(t, m.Close())
	}
}

func TestWaveADC(t *testing.T) {
	a := newWaveADC([]int16{1, 2, 3}, 0)
	assert.True(t, a.IsEndConversion(stream.WaitForResult))

	var got []int16
	for range 5 {
		got = append(got, a.Result16())
	}
	assert.Equal(t, []int16{1, 2, 3, 1, 2}, got)
}

func TestWaveADC_Clamps(t *testing.T) {
	a := newWaveADC([]int16{32767, -32768}, 100)
	for range 100 {
		v := a.Result16()
		assert.True(t, v >= 32667 || v <= -32668, "value %d", v)
	}
}

func TestWaveADC_Empty(t *testing.T) {
	a := newWaveADC(nil, 5)
	assert.Equal(t, int16(0), a.Result16())
}

func TestMock_StreamConfig(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewMock(testMockConfig(), &config.StreamConfig{
		Interval:  50 * time.Microsecond,
		PowerMode: "3v",
	}, nil)
	require.NoError(t, m.Connect())

	select {
	case <-m.Samples():
	case <-time.After(2 * time.Second):
		t.Fatal("no sample")
	}
	require.NoError(t, m.Close())

	assert.Equal(t, 50*time.Microsecond, m.sampler.Interval())
	assert.Equal(t, stream.Operation3V, m.usb.mode)
}

func TestMock_InvalidPowerMode(t *testing.T) {
	m := NewMock(testMockConfig(), &config.StreamConfig{PowerMode: "12v"}, nil)
	assert.Error(t, m.Connect())
	assert.False(t, m.IsConnected())
}

func TestMock_DefaultStreamConfig(t *testing.T) {
	m := NewMock(nil, nil, nil)
	assert.Equal(t, config.Default().Stream.Interval, m.stream.Interval)
}
