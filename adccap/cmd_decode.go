package main

import (
	"fmt"
	"os"

	"github.com/itohio/adcstream/pkg/capture"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// decodeCmd decodes a saved capture
var decodeCmd = &cobra.Command{
	Use:   "decode FILE.csv",
	Short: "Manchester-decode a saved capture",
	Long: `Reads a capture written by "adccap capture --out" (or any CSV whose last
column holds the samples) and decodes the message it carries.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	values, err := capture.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	logger.Info("capture loaded", zap.String("path", args[0]), zap.Int("samples", len(values)))

	return decodeAndPrint(cmd.OutOrStdout(), values, cfg)
}
