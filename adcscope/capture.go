package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"github.com/itohio/adcstream/pkg/capture"
	"github.com/itohio/adcstream/pkg/decode"
	"github.com/itohio/adcstream/pkg/sample"
	"go.uber.org/zap"
)

// decodeCapture Manchester-decodes a completed capture and returns a status line.
func decodeCapture(state *appState, samples []sample.Sample) string {
	raw := capture.RawSamples(samples)
	res, err := decode.DecodeBurst(
		capture.Counts(raw),
		state.monitor.Threshold(),
		state.cfg.Manchester.SampleRate,
		state.cfg.Manchester.EdgeMargin,
	)
	if err != nil {
		state.log.Warn("capture not decoded", zap.Int("samples", len(samples)), zap.Error(err))
		return fmt.Sprintf("%d samples, %v", len(samples), err)
	}

	state.log.Info("capture decoded",
		zap.Int("samples", len(samples)),
		zap.Int("pulse_width", res.Pulse.Width()),
		zap.Duration("pulse", res.Duration),
		zap.Int("bits", len(res.Bits)),
		zap.String("text", res.Text))
	return fmt.Sprintf("%d samples, %d bits: %q", len(samples), len(res.Bits), res.Text)
}

// handleSaveCapture writes the last completed capture to a CSV file chosen by the user.
func handleSaveCapture(state *appState) {
	samples := state.monitor.LastCapture()
	if len(samples) == 0 {
		dialog.ShowError(capture.ErrNoSamples, state.window)
		return
	}

	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		if w == nil {
			return // Cancelled
		}

		werr := capture.WriteCSV(w, capture.RawSamples(samples))
		if cerr := w.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			dialog.ShowError(fmt.Errorf("failed to save capture: %w", werr), state.window)
			return
		}
		state.log.Info("capture saved", zap.String("uri", w.URI().String()), zap.Int("samples", len(samples)))
	}, state.window)
	d.SetFileName("capture.csv")
	d.Show()
}
