package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "COM7", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, time.Millisecond, cfg.Stream.Interval)
	assert.Equal(t, "5v", cfg.Stream.PowerMode)
	assert.Equal(t, float64(3.3), cfg.ADC.VRef)
	assert.Equal(t, 12, cfg.ADC.Resolution)
	assert.Equal(t, int16(4000), cfg.Capture.Threshold)
	assert.Equal(t, 20, cfg.Capture.BelowLimit)
	assert.Equal(t, 1000, cfg.Capture.Window)
	assert.Equal(t, float64(10000), cfg.Manchester.SampleRate)
	assert.Equal(t, 0.2, cfg.Manchester.EdgeMargin)
	assert.Equal(t, "10101010", cfg.Frame.SyncPattern)
	assert.Equal(t, 5, cfg.Frame.MinSyncMatch)
	assert.Equal(t, 4, cfg.Frame.SamplesPerBit)
	assert.Equal(t, 2, cfg.Frame.Shift)
	assert.False(t, cfg.Frame.Invert)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "COM7", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
  baud_rate: 9600

stream:
  interval: 10ms
  power_mode: 3v

capture:
  threshold: 2500
  below_limit: 5

manchester:
  sample_rate: 1000
  edge_margin: 0.25

frame:
  sync_pattern: "11001100"
  invert: true
  shift: 0

mock:
  message: "OK"
  bit_samples: 4
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 10*time.Millisecond, cfg.Stream.Interval)
	assert.Equal(t, "3v", cfg.Stream.PowerMode)
	assert.Equal(t, int16(2500), cfg.Capture.Threshold)
	assert.Equal(t, 5, cfg.Capture.BelowLimit)
	assert.Equal(t, float64(1000), cfg.Manchester.SampleRate)
	assert.Equal(t, 0.25, cfg.Manchester.EdgeMargin)
	assert.Equal(t, "11001100", cfg.Frame.SyncPattern)
	assert.True(t, cfg.Frame.Invert)
	assert.Equal(t, 0, cfg.Frame.Shift)
	assert.Equal(t, "OK", cfg.Mock.Message)
	assert.Equal(t, 4, cfg.Mock.BitSamples)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
capture:
  threshold: 0
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	// Should use defaults for missing fields
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, int16(4000), cfg.Capture.Threshold)
	assert.Equal(t, time.Millisecond, cfg.Stream.Interval)
	assert.Equal(t, "10101010", cfg.Frame.SyncPattern)
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Capture.Threshold = 1234
	cfg.Stream.Interval = 10 * time.Millisecond

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, int16(1234), loaded.Capture.Threshold)
	assert.Equal(t, 10*time.Millisecond, loaded.Stream.Interval)
}
