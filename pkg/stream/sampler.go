// Package stream implements the device side acquisition loop: start the ADC
// and the USB serial port, wait for the host, then send every conversion
// result as decimal text.
//
// The package only depends on context, strconv, sync/atomic and time so it
// builds for TinyGo targets as well as for host tests.
package stream

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultInterval is the pause after every iteration.
const DefaultInterval = time.Millisecond

// Config contains the loop parameters. Zero values are replaced by defaults.
type Config struct {
	Interval  time.Duration
	PowerMode PowerMode

	// Delay blocks for the given duration. Defaults to time.Sleep.
	Delay func(time.Duration)
	// EnableInterrupts is called first during Init. Defaults to a no-op.
	EnableInterrupts func()
}

// Stats counts loop activity since start.
type Stats struct {
	Conversions uint64 // Results read from the converter
	Sent        uint64 // Samples handed to the transport
	Dropped     uint64 // Samples discarded because the transport was busy
}

// Sampler runs the acquisition loop.
type Sampler struct {
	adc Converter
	usb Transport
	cfg Config

	buf         SampleBuffer
	initialized bool

	conversions atomic.Uint64
	sent        atomic.Uint64
	dropped     atomic.Uint64
}

// New creates a Sampler. Nothing is touched until Init or Run is called.
func New(adc Converter, usb Transport, cfg Config) *Sampler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Delay == nil {
		cfg.Delay = time.Sleep
	}
	if cfg.EnableInterrupts == nil {
		cfg.EnableInterrupts = func() {}
	}

	return &Sampler{
		adc: adc,
		usb: usb,
		cfg: cfg,
	}
}

// Init brings up both subsystems and waits for the host to configure the
// port. There is no timeout: with a background context it waits forever.
// Only a cancelled ctx makes it return early, with ctx.Err().
func (s *Sampler) Init(ctx context.Context) error {
	if s.initialized {
		return nil
	}

	s.cfg.EnableInterrupts()

	s.adc.Start()
	s.adc.StartConvert()
	s.usb.Start(s.cfg.PowerMode)

	for !s.usb.Configured() {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	s.usb.InitCDC()

	s.initialized = true
	return nil
}

// Step runs one loop iteration: wait for a conversion, format the result,
// send it if the transport is ready and pause. sent is false when the
// sample was dropped. err is non-nil only if ctx ends while waiting.
func (s *Sampler) Step(ctx context.Context) (sent bool, err error) {
	for !s.adc.IsEndConversion(WaitForResult) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
	}

	counts := s.adc.Result16()
	s.conversions.Add(1)

	msg := s.buf.Format(counts)
	if s.usb.Ready() {
		s.usb.Send(msg)
		s.sent.Add(1)
		sent = true
	} else {
		s.dropped.Add(1)
	}

	s.cfg.Delay(s.cfg.Interval)
	return sent, nil
}

// Run initializes the subsystems and loops until ctx is done.
func (s *Sampler) Run(ctx context.Context) error {
	if err := s.Init(ctx); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.Step(ctx); err != nil {
			return err
		}
	}
}

// Stats returns a snapshot of the counters. Safe to call from any goroutine.
func (s *Sampler) Stats() Stats {
	return Stats{
		Conversions: s.conversions.Load(),
		Sent:        s.sent.Load(),
		Dropped:     s.dropped.Load(),
	}
}

// Interval returns the effective pause between iterations.
func (s *Sampler) Interval() time.Duration {
	return s.cfg.Interval
}
