package sample

import (
	"time"

	"github.com/itohio/adcstream/pkg/config"
	"github.com/itohio/adcstream/pkg/device"
)

// Sample is a received reading together with its value in volts.
type Sample struct {
	Timestamp time.Time
	Counts    int16   // Raw conversion result
	Volts     float64 // Counts scaled by the ADC reference
}

// Converter is a function type that converts RawSample channel to Sample channel.
type Converter func(in <-chan device.RawSample) <-chan Sample

// NewConverter creates a converter function that transforms RawSample to Sample.
// The output channel is closed when in is closed.
func NewConverter(cfg *config.ADCConfig, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}
	vref, resolution := cfg.VRef, cfg.Resolution

	return func(in <-chan device.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for raw := range in {
				out <- Sample{
					Timestamp: raw.Timestamp,
					Counts:    raw.Counts,
					Volts:     CountsToVolts(raw.Counts, vref, resolution),
				}
			}
		}()

		return out
	}
}

// CountsToVolts converts a conversion result of the given resolution in
// bits to volts. Negative counts (differential inputs) give negative volts.
func CountsToVolts(counts int16, vref float64, resolution int) float64 {
	if resolution <= 0 || resolution > 16 {
		resolution = 12
	}
	full := float64(int(1)<<resolution - 1)
	return float64(counts) / full * vref
}
