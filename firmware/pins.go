//go:build tinygo

package main

import (
	"machine"
	"time"
)

const (
	// Sampling configuration
	SAMPLE_INTERVAL = time.Millisecond // Pause after every sent sample

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// ADC pin
	PIN_ADC = machine.A1

	// Serial configuration
	// Ignored by USB CDC, kept for boards that expose a UART bridge.
	// "-32768\r\n" is 8 bytes, at 1000 samples/sec that is 8,000 bytes/sec.
	UART_BAUD_RATE = 115200
)
