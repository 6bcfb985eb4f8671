package device

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

const (
	// DefaultBaudRate is the baud rate used when none is configured. USB CDC
	// ignores it, but real USB-UART bridges do not.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
	// MaxLineLength bounds a received line. Longer runs without a newline
	// are line noise and are discarded up to the next newline.
	MaxLineLength = 64
)

// RawSample is one reading received from the device.
type RawSample struct {
	Timestamp time.Time // Host receive time, the wire carries none
	Counts    int16     // Signed conversion result
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads samples from the device's virtual serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	log      *zap.Logger

	conn      serial.Port
	samples   chan RawSample
	done      chan struct{}
	mu        sync.RWMutex
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial instance with the specified port, baud rate and
// buffer size. Zero values select the defaults; a nil logger discards logs.
func New(port string, baudRate int, bufSize int, logger *zap.Logger) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		log:      logger.With(zap.String("port", port)),
		samples:  make(chan RawSample, bufSize),
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// OpenRaw opens the port without any line parsing. The frame decoder reads
// the byte stream directly.
func OpenRaw(port string, baudRate int) (io.ReadCloser, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	conn, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", port, err)
	}
	return conn, nil
}

// Connect opens the serial port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}

	conn, err := serial.Open(d.port, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.conn = conn
	d.cancel = cancel
	d.samples = make(chan RawSample, d.bufSize)
	d.done = make(chan struct{})
	d.connected = true

	d.log.Info("connected", zap.Int("baud", d.baudRate))

	samples, done := d.samples, d.done
	go func() {
		defer close(done)
		readSamples(ctx, conn, samples, d.log)
	}()

	return nil
}

// Close closes the port and waits for the reader to stop. The samples
// channel is closed once the reader has exited.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	var err error
	if d.conn != nil {
		if err = d.conn.Close(); err != nil {
			d.log.Warn("error closing serial port", zap.Error(err))
		}
		d.conn = nil
	}
	<-d.done

	d.connected = false
	d.log.Info("disconnected")

	return err
}

// Samples returns the channel for reading samples. Every Connect creates a
// new channel, so call it after connecting.
func (d *Serial) Samples() <-chan RawSample {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.samples
}

// IsConnected returns whether the device is currently connected. It turns
// false when the reader stops on its own, e.g. the port was unplugged; Close
// must still be called to release the port.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.connected {
		return false
	}
	select {
	case <-d.done:
		return false
	default:
		return true
	}
}

// readSamples scans lines from r, parses them and forwards the samples.
// It closes out when it returns. Corrupt lines are skipped and samples are
// dropped if out is full.
func readSamples(ctx context.Context, r io.Reader, out chan<- RawSample, log *zap.Logger) {
	defer close(out)

	scanner := bufio.NewScanner(r)
	scanner.Split(scanBoundedLines(MaxLineLength, log))
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		counts, err := ParseLine(line)
		if err != nil {
			log.Debug("skipping line", zap.String("line", line), zap.Error(err))
			continue
		}

		select {
		case out <- RawSample{Timestamp: time.Now(), Counts: counts}:
		case <-ctx.Done():
			return
		default:
			log.Warn("samples channel full, dropping sample")
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && ctx.Err() == nil {
		log.Error("error reading samples", zap.Error(err))
	}
}

// scanBoundedLines splits like bufio.ScanLines but drops any run longer than
// maxLen that has no newline, together with the rest of its line.
func scanBoundedLines(maxLen int, log *zap.Logger) bufio.SplitFunc {
	discarding := false
	return func(data []byte, atEOF bool) (int, []byte, error) {
		i := bytes.IndexByte(data, '\n')
		switch {
		case i >= 0 && discarding:
			discarding = false
			return i + 1, nil, nil
		case i >= 0:
			return bufio.ScanLines(data, atEOF)
		}

		if len(data) > maxLen || (discarding && len(data) > 0) {
			if !discarding {
				log.Debug("discarding oversize line", zap.Int("bytes", len(data)))
			}
			discarding = !atEOF
			return len(data), nil, nil
		}
		return bufio.ScanLines(data, atEOF)
	}
}

// ParseLine parses one line of the wire format: a signed decimal 16-bit
// value, optionally surrounded by whitespace or the CRLF terminator.
// Example: "-1023\r\n"
func ParseLine(line string) (int16, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, fmt.Errorf("empty line")
	}

	v, err := strconv.ParseInt(line, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid sample %q: %w", line, err)
	}

	return int16(v), nil
}
