package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial     SerialConfig     `yaml:"serial"`
	Stream     StreamConfig     `yaml:"stream"`
	ADC        ADCConfig        `yaml:"adc"`
	Capture    CaptureConfig    `yaml:"capture"`
	Manchester ManchesterConfig `yaml:"manchester"`
	Frame      FrameConfig      `yaml:"frame"`
	Mock       MockConfig       `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// StreamConfig mirrors the device loop parameters. The mock device runs its
// sampler with them.
type StreamConfig struct {
	Interval   time.Duration `yaml:"interval"`    // Pause after every sample
	PowerMode  string        `yaml:"power_mode"`  // "5v" or "3v"
	BufferSize int           `yaml:"buffer_size"` // Host side channel capacity
}

// ADCConfig describes the converter so counts can be shown as volts.
type ADCConfig struct {
	VRef       float64 `yaml:"vref"`
	Resolution int     `yaml:"resolution"` // Bits
}

// CaptureConfig contains trigger parameters.
type CaptureConfig struct {
	Threshold      int16 `yaml:"threshold"`       // Counts
	BelowLimit     int   `yaml:"below_limit"`     // Consecutive samples below threshold that end a capture
	Window         int   `yaml:"window"`          // Samples kept for the live view
	AverageSamples int   `yaml:"average_samples"` // 0 = disabled
}

// ManchesterConfig contains burst decoding parameters.
type ManchesterConfig struct {
	SampleRate float64 `yaml:"sample_rate"` // Hz, used only to report durations
	EdgeMargin float64 `yaml:"edge_margin"` // Fraction of a bit period
}

// FrameConfig contains parameters for the sync/length/data frame decoder.
type FrameConfig struct {
	SyncPattern   string `yaml:"sync_pattern"`
	MinSyncMatch  int    `yaml:"min_sync_match"`
	SamplesPerBit int    `yaml:"samples_per_bit"`
	Invert        bool   `yaml:"invert"`
	Shift         int    `yaml:"shift"`
	MaxBuffer     int    `yaml:"max_buffer"`
	KeepBuffer    int    `yaml:"keep_buffer"`
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	Message     string `yaml:"message"`      // Text Manchester encoded into every burst
	BitSamples  int    `yaml:"bit_samples"`  // Samples per half bit
	IdleCounts  int16  `yaml:"idle_counts"`  // Level while low
	HighCounts  int16  `yaml:"high_counts"`  // Level while high
	Noise       int16  `yaml:"noise"`        // Peak noise in counts
	IdleSamples int    `yaml:"idle_samples"` // Low samples around every burst
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM7", // Default for Windows, should be "/dev/ttyACM0" on Linux
			BaudRate: 115200,
		},
		Stream: StreamConfig{
			Interval:   time.Millisecond,
			PowerMode:  "5v",
			BufferSize: 100,
		},
		ADC: ADCConfig{
			VRef:       3.3,
			Resolution: 12,
		},
		Capture: CaptureConfig{
			Threshold:      4000,
			BelowLimit:     20,
			Window:         1000,
			AverageSamples: 0,
		},
		Manchester: ManchesterConfig{
			SampleRate: 10000,
			EdgeMargin: 0.2,
		},
		Frame: FrameConfig{
			SyncPattern:   "10101010",
			MinSyncMatch:  5,
			SamplesPerBit: 4,
			Invert:        false,
			Shift:         2,
			MaxBuffer:     8000,
			KeepBuffer:    4000,
		},
		Mock: MockConfig{
			Message:     "HOLA",
			BitSamples:  8,
			IdleCounts:  200,
			HighCounts:  6000,
			Noise:       50,
			IdleSamples: 200,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Stream.Interval == 0 {
		c.Stream.Interval = def.Stream.Interval
	}
	if c.Stream.PowerMode == "" {
		c.Stream.PowerMode = def.Stream.PowerMode
	}
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = def.Stream.BufferSize
	}

	if c.ADC.VRef == 0 {
		c.ADC.VRef = def.ADC.VRef
	}
	if c.ADC.Resolution == 0 {
		c.ADC.Resolution = def.ADC.Resolution
	}

	if c.Capture.Threshold == 0 {
		c.Capture.Threshold = def.Capture.Threshold
	}
	if c.Capture.BelowLimit == 0 {
		c.Capture.BelowLimit = def.Capture.BelowLimit
	}
	if c.Capture.Window == 0 {
		c.Capture.Window = def.Capture.Window
	}

	if c.Manchester.SampleRate == 0 {
		c.Manchester.SampleRate = def.Manchester.SampleRate
	}
	if c.Manchester.EdgeMargin == 0 {
		c.Manchester.EdgeMargin = def.Manchester.EdgeMargin
	}

	if c.Frame.SyncPattern == "" {
		c.Frame.SyncPattern = def.Frame.SyncPattern
	}
	if c.Frame.MinSyncMatch == 0 {
		c.Frame.MinSyncMatch = def.Frame.MinSyncMatch
	}
	if c.Frame.SamplesPerBit == 0 {
		c.Frame.SamplesPerBit = def.Frame.SamplesPerBit
	}
	if c.Frame.MaxBuffer == 0 {
		c.Frame.MaxBuffer = def.Frame.MaxBuffer
	}
	if c.Frame.KeepBuffer == 0 {
		c.Frame.KeepBuffer = def.Frame.KeepBuffer
	}

	if c.Mock.Message == "" {
		c.Mock.Message = def.Mock.Message
	}
	if c.Mock.BitSamples == 0 {
		c.Mock.BitSamples = def.Mock.BitSamples
	}
	if c.Mock.HighCounts == 0 {
		c.Mock.HighCounts = def.Mock.HighCounts
	}
	if c.Mock.IdleSamples == 0 {
		c.Mock.IdleSamples = def.Mock.IdleSamples
	}
}
