package capture

import (
	"context"
	"errors"

	"github.com/itohio/adcstream/pkg/config"
	"github.com/itohio/adcstream/pkg/device"
)

var ErrNoSamples = errors.New("no samples captured")

// Capture reads in until one capture completes and returns its samples.
//
// If ctx ends first, the partial capture is returned together with ctx.Err().
// If in is closed first, the partial capture is returned, or ErrNoSamples when
// the trigger never fired.
func Capture(ctx context.Context, in <-chan device.RawSample, cfg *config.CaptureConfig) ([]device.RawSample, error) {
	t := NewTrigger(cfg.Threshold, cfg.BelowLimit)
	var out []device.RawSample

	for {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case s, ok := <-in:
			if !ok {
				if len(out) == 0 {
					return nil, ErrNoSamples
				}
				return out, nil
			}

			n := t.Len()
			st := t.Feed(s.Counts)
			if t.Len() > n {
				out = append(out, s)
			}
			if st == Done {
				return out, nil
			}
		}
	}
}
