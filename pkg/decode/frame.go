package decode

import "strings"

// FrameConfig configures a FrameDecoder. Zero values select defaults.
type FrameConfig struct {
	SyncPattern   string // Defaults to "10101010"
	MinSyncMatch  int    // Matching positions needed to accept a sync window
	SamplesPerBit int    // Raw digits compacted into one bit
	Invert        bool   // Swap 0 and 1 after compaction
	Shift         int    // Bits dropped from the head of every chunk
	MaxBuffer     int    // Bit buffer length that triggers trimming
	KeepBuffer    int    // Bits kept after trimming
}

// Frame is one decoded message.
type Frame struct {
	Length int
	Text   string
}

// Valid reports whether the frame carries any visible text.
func (f Frame) Valid() bool {
	return strings.TrimSpace(f.Text) != ""
}

type frameState int

const (
	stateSearchSync frameState = iota
	stateReadLen
	stateReadData
)

// FrameDecoder turns a raw stream of '0'/'1' digits into frames laid out as
// sync byte, length byte and length data bytes.
type FrameDecoder struct {
	cfg FrameConfig

	buf      []byte
	state    frameState
	expected int
}

// NewFrameDecoder creates a decoder in the sync search state.
func NewFrameDecoder(cfg FrameConfig) *FrameDecoder {
	if cfg.SyncPattern == "" {
		cfg.SyncPattern = "10101010"
	}
	if cfg.MinSyncMatch <= 0 {
		cfg.MinSyncMatch = 5
	}
	if cfg.SamplesPerBit <= 0 {
		cfg.SamplesPerBit = 1
	}
	if cfg.MaxBuffer <= 0 {
		cfg.MaxBuffer = 8000
	}
	if cfg.KeepBuffer <= 0 || cfg.KeepBuffer > cfg.MaxBuffer {
		cfg.KeepBuffer = cfg.MaxBuffer / 2
	}

	return &FrameDecoder{cfg: cfg}
}

// Feed consumes a chunk of raw bytes and returns the frames completed by it.
// Bytes other than '0' and '1' are ignored.
func (d *FrameDecoder) Feed(data []byte) []Frame {
	raw := make([]byte, 0, len(data))
	for _, c := range data {
		if c == '0' || c == '1' {
			raw = append(raw, c)
		}
	}
	if len(raw) == 0 {
		return nil
	}

	bits := Compact(raw, d.cfg.SamplesPerBit)
	if d.cfg.Invert {
		for i, b := range bits {
			if b == '0' {
				bits[i] = '1'
			} else {
				bits[i] = '0'
			}
		}
	}
	if d.cfg.Shift > 0 {
		if d.cfg.Shift >= len(bits) {
			bits = bits[:0]
		} else {
			bits = bits[d.cfg.Shift:]
		}
	}

	d.buf = append(d.buf, bits...)
	if len(d.buf) > d.cfg.MaxBuffer {
		d.buf = append(d.buf[:0], d.buf[len(d.buf)-d.cfg.KeepBuffer:]...)
	}

	var frames []Frame
	for {
		switch d.state {
		case stateSearchSync:
			idx := FindSync(d.buf, d.cfg.SyncPattern, d.cfg.MinSyncMatch)
			if idx < 0 {
				return frames
			}
			d.buf = d.buf[idx+len(d.cfg.SyncPattern):]
			d.state = stateReadLen

		case stateReadLen:
			if len(d.buf) < 8 {
				return frames
			}
			d.expected = int(bitsToByte(d.buf[:8]))
			d.buf = d.buf[8:]
			d.state = stateReadData

		case stateReadData:
			n := d.expected * 8
			if len(d.buf) < n {
				return frames
			}
			text := make([]byte, d.expected)
			for i := range text {
				text[i] = bitsToByte(d.buf[i*8 : i*8+8])
			}
			d.buf = d.buf[n:]
			frames = append(frames, Frame{Length: d.expected, Text: string(text)})
			d.state = stateSearchSync
		}
	}
}

// Reset drops buffered bits and returns to the sync search state.
func (d *FrameDecoder) Reset() {
	d.buf = d.buf[:0]
	d.state = stateSearchSync
	d.expected = 0
}

// FindSync returns the offset of the first window of len(pattern) digits
// that agrees with pattern in at least minMatch positions, or -1.
func FindSync(bits []byte, pattern string, minMatch int) int {
	n := len(pattern)
	for i := 0; i < len(bits)-n; i++ {
		match := 0
		for j := range n {
			if bits[i+j] == pattern[j] {
				match++
			}
		}
		if match >= minMatch {
			return i
		}
	}
	return -1
}

// Compact reduces every full block of n digits to its majority digit. A tie
// keeps the block's first digit. A trailing partial block is dropped.
func Compact(bits []byte, n int) []byte {
	if n <= 1 {
		return append([]byte(nil), bits...)
	}

	out := make([]byte, 0, len(bits)/n)
	for i := 0; i+n <= len(bits); i += n {
		block := bits[i : i+n]
		ones := 0
		for _, b := range block {
			if b == '1' {
				ones++
			}
		}
		switch {
		case 2*ones > n:
			out = append(out, '1')
		case 2*ones < n:
			out = append(out, '0')
		default:
			out = append(out, block[0])
		}
	}
	return out
}

func bitsToByte(bits []byte) byte {
	var b byte
	for _, c := range bits {
		b <<= 1
		if c == '1' {
			b |= 1
		}
	}
	return b
}
