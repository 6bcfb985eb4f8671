package device

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"

	"github.com/itohio/adcstream/pkg/config"
	"github.com/itohio/adcstream/pkg/decode"
	"github.com/itohio/adcstream/pkg/stream"
	"go.uber.org/zap"
)

// Mock simulates the device end to end: a real stream.Sampler runs against a
// simulated converter and writes the wire format into a pipe that is parsed
// exactly like a serial port.
type Mock struct {
	cfg    *config.MockConfig
	stream *config.StreamConfig
	log    *zap.Logger

	samples   chan RawSample
	mu        sync.RWMutex
	cancel    context.CancelFunc
	pw        *io.PipeWriter
	wg        sync.WaitGroup
	sampler   *stream.Sampler
	usb       *pipeTransport
	connected bool
}

// NewMock creates a new mocked device instance. The simulated sampler takes
// its interval and power mode from streamCfg.
func NewMock(cfg *config.MockConfig, streamCfg *config.StreamConfig, logger *zap.Logger) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}
	if streamCfg == nil {
		def := config.Default().Stream
		streamCfg = &def
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Mock{
		cfg:     cfg,
		stream:  streamCfg,
		log:     logger.With(zap.String("device", "mock")),
		samples: make(chan RawSample, DefaultBufferSize),
	}
}

// Connect starts the simulated sampling loop.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}

	mode, ok := stream.ParsePowerMode(m.stream.PowerMode)
	if !ok {
		return fmt.Errorf("invalid power mode %q", m.stream.PowerMode)
	}

	wave := decode.Burst(m.cfg.Message, m.cfg.BitSamples, m.cfg.IdleSamples, m.cfg.IdleCounts, m.cfg.HighCounts)
	adc := newWaveADC(wave, m.cfg.Noise)

	pr, pw := io.Pipe()
	usb := &pipeTransport{w: pw}
	m.usb = usb

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.pw = pw
	m.samples = make(chan RawSample, DefaultBufferSize)
	m.sampler = stream.New(adc, usb, stream.Config{
		Interval:  m.stream.Interval,
		PowerMode: mode,
	})
	m.connected = true

	sampler, samples := m.sampler, m.samples
	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		if err := sampler.Run(ctx); err != nil && ctx.Err() == nil {
			m.log.Error("sampler stopped", zap.Error(err))
		}
	}()
	go func() {
		defer m.wg.Done()
		defer pr.Close()
		readSamples(ctx, pr, samples, m.log)
	}()

	m.log.Info("connected",
		zap.String("message", m.cfg.Message),
		zap.Int("burst_samples", len(wave)),
		zap.Duration("interval", m.sampler.Interval()),
		zap.Stringer("power_mode", mode))

	return nil
}

// Close stops the sampler and the reader. The samples channel is closed
// once both have exited.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.pw.Close()
	m.wg.Wait()
	m.connected = false

	st := m.sampler.Stats()
	m.log.Info("disconnected",
		zap.Uint64("conversions", st.Conversions),
		zap.Uint64("sent", st.Sent),
		zap.Uint64("dropped", st.Dropped))

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.samples
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Stats returns the simulated sampler counters, or zero before Connect.
func (m *Mock) Stats() stream.Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sampler == nil {
		return stream.Stats{}
	}
	return m.sampler.Stats()
}

// waveADC replays a waveform in a loop with optional noise. A conversion is
// always ready.
type waveADC struct {
	wave  []int16
	pos   int
	noise int16
	rng   *rand.Rand
}

func newWaveADC(wave []int16, noise int16) *waveADC {
	return &waveADC{
		wave:  wave,
		noise: noise,
		rng:   rand.New(rand.NewPCG(1, 2)),
	}
}

func (a *waveADC) Start() {}

func (a *waveADC) StartConvert() {}

func (a *waveADC) IsEndConversion(mode stream.WaitMode) bool { return true }

func (a *waveADC) Result16() int16 {
	if len(a.wave) == 0 {
		return 0
	}
	v := int32(a.wave[a.pos])
	a.pos = (a.pos + 1) % len(a.wave)

	if a.noise > 0 {
		v += a.rng.Int32N(2*int32(a.noise)+1) - int32(a.noise)
	}
	if v > 32767 {
		v = 32767
	} else if v < -32768 {
		v = -32768
	}
	return int16(v)
}

// pipeTransport is a USB port whose host side is an io.Pipe.
type pipeTransport struct {
	w    *io.PipeWriter
	mode stream.PowerMode
}

func (t *pipeTransport) Start(mode stream.PowerMode) { t.mode = mode }

func (t *pipeTransport) Configured() bool { return true }

func (t *pipeTransport) InitCDC() {}

func (t *pipeTransport) Ready() bool { return true }

func (t *pipeTransport) Send(p []byte) {
	// Write fails only after Close, when the sampler is about to stop anyway.
	_, _ = t.w.Write(p)
}
