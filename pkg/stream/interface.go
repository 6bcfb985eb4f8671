package stream

// WaitMode selects how Converter.IsEndConversion waits.
type WaitMode uint8

const (
	// WaitForResult blocks until the conversion in flight has finished.
	WaitForResult WaitMode = iota
	// ReturnStatus reports the current status without waiting.
	ReturnStatus
)

// PowerMode is the supply voltage the USB block is started with.
type PowerMode uint8

const (
	Operation5V PowerMode = iota
	Operation3V
)

// String returns the config spelling of the mode.
func (m PowerMode) String() string {
	switch m {
	case Operation3V:
		return "3v"
	default:
		return "5v"
	}
}

// ParsePowerMode parses "5v" or "3v"; empty means 5v. Anything else
// yields Operation5V and false.
func ParsePowerMode(s string) (PowerMode, bool) {
	switch s {
	case "5v", "5V", "":
		return Operation5V, true
	case "3v", "3V":
		return Operation3V, true
	}
	return Operation5V, false
}

// Converter is the analog-to-digital subsystem.
type Converter interface {
	Start()
	StartConvert()
	// IsEndConversion reports whether a result is available. With
	// WaitForResult the call may block until it is.
	IsEndConversion(mode WaitMode) bool
	Result16() int16
}

// Transport is the USB virtual serial port.
type Transport interface {
	Start(mode PowerMode)
	// Configured reports whether the host has enumerated the interface.
	Configured() bool
	InitCDC()
	// Ready reports whether the port can accept an outgoing write now.
	Ready() bool
	Send(p []byte)
}
