//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"machine"
	"time"

	"github.com/itohio/adcstream/pkg/stream"
)

func main() {
	adc := &adcConverter{pin: PIN_ADC}
	usb := &cdcTransport{port: machine.Serial}

	sampler := stream.New(adc, usb, stream.Config{
		Interval:  SAMPLE_INTERVAL,
		PowerMode: stream.Operation5V,
		Delay:     time.Sleep,
	})

	// Run only returns on Init failure, which needs a cancelled context.
	_ = sampler.Run(context.Background())
}

// adcConverter runs one blocking conversion per poll.
type adcConverter struct {
	pin   machine.Pin
	adc   machine.ADC
	value uint16
}

func (c *adcConverter) Start() {
	c.pin.Configure(machine.PinConfig{Mode: machine.PinInput})
	c.adc = machine.ADC{Pin: c.pin}
	c.adc.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})
}

// StartConvert is a no-op: Get starts and completes a conversion.
func (c *adcConverter) StartConvert() {}

func (c *adcConverter) IsEndConversion(stream.WaitMode) bool {
	c.value = c.adc.Get()
	return true
}

// Result16 returns the last conversion in ADC_RESOLUTION bit counts.
// machine.ADC scales every result to 16 bits.
func (c *adcConverter) Result16() int16 {
	return int16(c.value >> (16 - ADC_RESOLUTION))
}

// serialPort is the part of machine.Serial the transport uses.
type serialPort interface {
	Configure(machine.UARTConfig) error
	Write([]byte) (int, error)
}

// cdcTransport sends over the USB CDC serial port.
type cdcTransport struct {
	port serialPort
}

// Start ignores the power mode, the board regulates its own USB supply.
func (t *cdcTransport) Start(stream.PowerMode) {
	_ = t.port.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE})
}

// Configured reports whether the host has opened the port. Ports without
// DTR are always configured.
func (t *cdcTransport) Configured() bool {
	if d, ok := t.port.(interface{ DTR() bool }); ok {
		return d.DTR()
	}
	return true
}

// InitCDC is a no-op: the USB stack answers line coding requests itself.
func (t *cdcTransport) InitCDC() {}

// Ready is always true, writes are buffered by the USB stack.
func (t *cdcTransport) Ready() bool {
	return true
}

func (t *cdcTransport) Send(p []byte) {
	_, _ = t.port.Write(p)
}
