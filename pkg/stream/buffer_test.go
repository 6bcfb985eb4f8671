package stream

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampleBuffer_Format(t *testing.T) {
	tests := []struct {
		v    int16
		want string
	}{
		{0, "0\r\n"},
		{-1, "-1\r\n"},
		{1023, "1023\r\n"},
		{math.MaxInt16, "32767\r\n"},
		{math.MinInt16, "-32768\r\n"},
	}

	var b SampleBuffer
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, string(b.Format(tt.v)))
		})
	}
}

func TestSampleBuffer_AllValues(t *testing.T) {
	var b SampleBuffer
	for v := math.MinInt16; v <= math.MaxInt16; v++ {
		got := b.Format(int16(v))
		if string(got) != strconv.Itoa(v)+"\r\n" {
			t.Fatalf("Format(%d) = %q", v, got)
		}
		if len(got) > MaxSampleLen || len(got) > BufferSize {
			t.Fatalf("Format(%d) is %d bytes", v, len(got))
		}
	}
}

func TestSampleBuffer_Reused(t *testing.T) {
	var b SampleBuffer
	first := b.Format(-32768)
	second := b.Format(5)

	assert.Equal(t, "5\r\n", string(second))
	assert.Equal(t, &b[0], &first[0], "buffer must not be reallocated")
}

func TestFormat_Copies(t *testing.T) {
	a := Format(12)
	b := Format(34)
	assert.Equal(t, "12\r\n", string(a))
	assert.Equal(t, "34\r\n", string(b))
}

func TestParsePowerMode(t *testing.T) {
	m, ok := ParsePowerMode("3v")
	assert.True(t, ok)
	assert.Equal(t, Operation3V, m)

	m, ok = ParsePowerMode("")
	assert.True(t, ok)
	assert.Equal(t, Operation5V, m)

	_, ok = ParsePowerMode("12v")
	assert.False(t, ok)

	assert.Equal(t, "3v", Operation3V.String())
	assert.Equal(t, "5v", Operation5V.String())
}
