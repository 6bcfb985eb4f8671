package main

import (
	"fmt"
	"os"
	"time"

	"github.com/itohio/adcstream/pkg/config"
	"github.com/itohio/adcstream/pkg/device"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	portName   string
	useMock    bool
	timeout    time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "adccap",
	Short: "Capture and decode the ADC sample stream",
	Long: `adccap talks to the sampling device over its virtual serial port.

The device sends one signed decimal value per line. adccap captures bursts
with a threshold trigger, saves them as CSV and decodes the Manchester
message carried by each burst. It also runs the sync/length/data frame
decoder over a raw stream.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logCfg := zap.NewProductionConfig()
		if verbose {
			logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = logCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
	rootCmd.PersistentFlags().BoolVar(&useMock, "mock", false, "Use mocked device instead of serial port")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Give up after this long (0 = wait forever)")

	captureCmd.Flags().StringVarP(&captureOut, "out", "o", "", "Write the capture to this CSV file")
	captureCmd.Flags().BoolVarP(&captureDecode, "decode", "d", false, "Manchester-decode the capture")
	captureCmd.Flags().IntVar(&thresholdOverride, "threshold", -1, "Trigger threshold in counts (overrides config)")

	decodeCmd.Flags().IntVar(&thresholdOverride, "threshold", -1, "Binarization threshold in counts (overrides config)")

	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(framesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if portName != "" {
		cfg.Serial.Port = portName
	}
	if thresholdOverride >= 0 {
		if thresholdOverride > 32767 {
			return nil, fmt.Errorf("threshold %d out of range", thresholdOverride)
		}
		cfg.Capture.Threshold = int16(thresholdOverride)
	}
	return cfg, nil
}

// newDevice builds the configured sample source.
func newDevice(cfg *config.Config) device.Device {
	if useMock {
		return device.NewMock(&cfg.Mock, &cfg.Stream, logger)
	}
	return device.New(cfg.Serial.Port, cfg.Serial.BaudRate, cfg.Stream.BufferSize, logger)
}
