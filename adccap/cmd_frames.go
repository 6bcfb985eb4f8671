package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/adcstream/pkg/config"
	"github.com/itohio/adcstream/pkg/decode"
	"github.com/itohio/adcstream/pkg/device"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const frameChunkSize = 256

// framesCmd runs the frame decoder
var framesCmd = &cobra.Command{
	Use:   "frames [FILE]",
	Short: "Decode sync/length/data frames from a raw 0/1 stream",
	Long: `Reads raw bytes from the serial port, or from FILE when given, keeps only
the '0' and '1' digits and decodes frames made of the sync byte, a length byte
and that many data bytes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFrames,
}

func runFrames(cmd *cobra.Command, args []string) error {
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

	var src io.ReadCloser
	if len(args) == 1 {
		src, err = os.Open(args[0])
	} else {
		src, err = device.OpenRaw(cfg.Serial.Port, cfg.Serial.BaudRate)
	}
	if err != nil {
		return err
	}

	n, err := decodeFrames(ctx, src, frameConfig(&cfg.Frame), cmd.OutOrStdout())
	logger.Info("frame decoder stopped", zap.Int("frames", n))
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// decodeFrames reads src in chunks and prints every valid frame. src is
// closed when reading ends or ctx is done. Returns the number of frames printed.
func decodeFrames(ctx context.Context, src io.ReadCloser, cfg decode.FrameConfig, w io.Writer) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	chunks := make(chan []byte, 16)
	readDone := make(chan struct{})

	g.Go(func() error {
		defer close(chunks)
		defer close(readDone)
		for {
			buf := make([]byte, frameChunkSize)
			n, err := src.Read(buf)
			if n > 0 {
				select {
				case chunks <- buf[:n]:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				return err
			}
		}
	})

	// Closing the source unblocks a pending Read on cancellation.
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-readDone:
		}
		return src.Close()
	})

	count := 0
	g.Go(func() error {
		dec := decode.NewFrameDecoder(cfg)
		for chunk := range chunks {
			for _, f := range dec.Feed(chunk) {
				if !f.Valid() {
					logger.Debug("empty frame", zap.Int("length", f.Length))
					continue
				}
				count++
				if _, err := fmt.Fprintf(w, "frame %d: %s\n", f.Length, f.Text); err != nil {
					return err
				}
			}
		}
		return nil
	})

	err := g.Wait()
	return count, err
}

func frameConfig(cfg *config.FrameConfig) decode.FrameConfig {
	return decode.FrameConfig{
		SyncPattern:   cfg.SyncPattern,
		MinSyncMatch:  cfg.MinSyncMatch,
		SamplesPerBit: cfg.SamplesPerBit,
		Invert:        cfg.Invert,
		Shift:         cfg.Shift,
		MaxBuffer:     cfg.MaxBuffer,
		KeepBuffer:    cfg.KeepBuffer,
	}
}
