package capture

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/itohio/adcstream/pkg/device"
	"github.com/itohio/adcstream/pkg/sample"
)

// ErrNaN is returned by ReadCSV for a NaN value.
var ErrNaN = errors.New("value is not a number")

// CSV column names.
const (
	ColumnTime   = "tiempo"
	ColumnCounts = "counts"
)

// WriteCSV writes samples with a header row. The time column holds seconds
// since the first sample.
func WriteCSV(w io.Writer, samples []device.RawSample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnTime, ColumnCounts}); err != nil {
		return err
	}

	if len(samples) > 0 {
		start := samples[0].Timestamp
		for _, s := range samples {
			rec := []string{
				strconv.FormatFloat(s.Timestamp.Sub(start).Seconds(), 'f', 6, 64),
				strconv.Itoa(int(s.Counts)),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV reads the counts column of a capture file. The value is always taken
// from the last column, so single column files work too. A header row is
// detected by its last field not being a number. Fractional and infinite
// values are rounded and clamped to the int16 range; NaN is an error.
func ReadCSV(r io.Reader) ([]int16, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []int16
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 {
			continue
		}

		field := strings.TrimSpace(rec[len(rec)-1])
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if math.IsNaN(v) {
			return nil, fmt.Errorf("line %d: %w", line, ErrNaN)
		}
		out = append(out, clampCounts(v))
	}

	if len(out) == 0 {
		return nil, ErrNoSamples
	}
	return out, nil
}

func clampCounts(v float64) int16 {
	v = math.Round(v)
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(v)
	}
}

// Counts extracts the raw counts of samples.
func Counts(samples []device.RawSample) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = s.Counts
	}
	return out
}

// RawSamples strips the converted values from samples.
func RawSamples(samples []sample.Sample) []device.RawSample {
	out := make([]device.RawSample, len(samples))
	for i, s := range samples {
		out[i] = device.RawSample{Timestamp: s.Timestamp, Counts: s.Counts}
	}
	return out
}
