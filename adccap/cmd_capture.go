package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/adcstream/pkg/capture"
	"github.com/itohio/adcstream/pkg/config"
	"github.com/itohio/adcstream/pkg/decode"
	"github.com/itohio/adcstream/pkg/device"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	captureOut        string
	captureDecode     bool
	thresholdOverride int
)

// captureCmd captures one burst
var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Wait for the trigger and capture one burst",
	Long: `Waits until a sample reaches the threshold, then records every sample
until below_limit consecutive samples have stayed under it.`,
	Args: cobra.NoArgs,
	RunE: runCapture,
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	dev := newDevice(cfg)
	if err := dev.Connect(); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.Serial.Port, err)
	}
	logger.Info("waiting for trigger",
		zap.String("port", cfg.Serial.Port),
		zap.Bool("mock", useMock),
		zap.Int16("threshold", cfg.Capture.Threshold),
		zap.Int("below_limit", cfg.Capture.BelowLimit))

	samples, err := captureOnce(ctx, dev, &cfg.Capture)
	if err != nil {
		if len(samples) == 0 {
			return err
		}
		logger.Warn("capture incomplete", zap.Int("samples", len(samples)), zap.Error(err))
	}
	logger.Info("capture complete", zap.Int("samples", len(samples)))

	if captureOut != "" {
		if err := writeCaptureFile(captureOut, samples); err != nil {
			return err
		}
		logger.Info("capture saved", zap.String("path", captureOut))
	}

	if !captureDecode {
		fmt.Fprintf(cmd.OutOrStdout(), "captured %d samples\n", len(samples))
		return nil
	}
	return decodeAndPrint(cmd.OutOrStdout(), capture.Counts(samples), cfg)
}

// captureOnce runs the trigger over the device stream. The device is closed
// once the capture finishes or ctx ends, whichever comes first.
func captureOnce(ctx context.Context, dev device.Device, cfg *config.CaptureConfig) ([]device.RawSample, error) {
	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	var samples []device.RawSample

	g.Go(func() error {
		defer close(done)
		var err error
		samples, err = capture.Capture(gctx, dev.Samples(), cfg)
		return err
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-done:
		}
		return dev.Close()
	})

	err := g.Wait()
	if errors.Is(err, capture.ErrNoSamples) && ctx.Err() != nil {
		err = ctx.Err()
	}
	return samples, err
}

func writeCaptureFile(path string, samples []device.RawSample) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return capture.WriteCSV(f, samples)
}

// decodeAndPrint Manchester-decodes values and prints the result.
func decodeAndPrint(w io.Writer, values []int16, cfg *config.Config) error {
	res, err := decode.DecodeBurst(values, cfg.Capture.Threshold, cfg.Manchester.SampleRate, cfg.Manchester.EdgeMargin)
	if err != nil {
		return fmt.Errorf("failed to decode %d samples: %w", len(values), err)
	}
	logger.Debug("burst decoded",
		zap.Int("pulse_start", res.Pulse.Start),
		zap.Int("pulse_end", res.Pulse.End),
		zap.Int("reference", res.Reference),
		zap.Ints("edges", res.Edges))

	printResult(w, res)
	return nil
}

func printResult(w io.Writer, res decode.Result) {
	fmt.Fprintf(w, "pulse width: %d samples", res.Pulse.Width())
	if res.Duration > 0 {
		fmt.Fprintf(w, " (%v)", res.Duration)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "bit period:  %d samples\n", res.Period)

	bits := make([]byte, len(res.Bits))
	for i, b := range res.Bits {
		bits[i] = '0' + b
	}
	fmt.Fprintf(w, "bits:        %s\n", bits)
	fmt.Fprintf(w, "text:        %s\n", res.Text)
}
