package stream

import "strconv"

const (
	// BufferSize is the capacity of the sample text buffer.
	BufferSize = 64
	// MaxSampleLen is the longest formatted sample: "-32768\r\n".
	MaxSampleLen = 8
)

// SampleBuffer holds the text of one formatted sample. It is reused every
// iteration and never grows.
type SampleBuffer [BufferSize]byte

// Format writes v as signed decimal followed by CRLF and returns the filled
// part of the buffer. The returned slice aliases b.
func (b *SampleBuffer) Format(v int16) []byte {
	out := strconv.AppendInt(b[:0], int64(v), 10)
	return append(out, '\r', '\n')
}

// Format returns the wire text for v in a freshly allocated slice.
func Format(v int16) []byte {
	var b SampleBuffer
	out := b.Format(v)
	return append([]byte(nil), out...)
}
