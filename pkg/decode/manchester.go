// Package decode recovers bits and text from captured sample bursts.
//
// A burst starts with a single high pulse whose width w is one half bit.
// Bits follow after a further w samples, each 2w long, with the data carried
// by the edge in the middle of the bit: falling for 1, rising for 0.
package decode

import (
	"errors"
	"time"

	"github.com/chewxy/math32"
)

// ErrNoPulse is returned when no complete high pulse is found.
var ErrNoPulse = errors.New("no complete high pulse")

// DefaultEdgeMargin is the fraction of a bit period near either border in
// which edges are ignored.
const DefaultEdgeMargin = 0.2

// Pulse is a high run in a logic trace: logic[Start..End-1] are 1 and
// logic[End] is 0.
type Pulse struct {
	Start int
	End   int
}

// Width returns the pulse length in samples.
func (p Pulse) Width() int {
	return p.End - p.Start
}

// Result is the outcome of decoding one burst.
type Result struct {
	Pulse     Pulse
	Reference int           // First sample of the first bit
	Period    int           // Samples per bit
	Duration  time.Duration // Pulse width in time, zero if the sample rate is unknown
	Edges     []int         // Central edge used for every decoded bit
	Bits      []uint8
	Text      string
}

// Binarize maps every value above threshold to 1 and the rest to 0.
func Binarize(values []int16, threshold int16) []uint8 {
	logic := make([]uint8, len(values))
	for i, v := range values {
		if v > threshold {
			logic[i] = 1
		}
	}
	return logic
}

// FirstPulse finds the first high run that also ends inside the trace.
func FirstPulse(logic []uint8) (Pulse, error) {
	start := -1
	for i, l := range logic {
		if l == 1 {
			start = i
			break
		}
	}
	if start < 0 {
		return Pulse{}, ErrNoPulse
	}

	for j := start + 1; j < len(logic); j++ {
		if logic[j-1] == 1 && logic[j] == 0 {
			return Pulse{Start: start, End: j}, nil
		}
	}
	return Pulse{}, ErrNoPulse
}

// Manchester decodes the bits following the reference pulse p.
//
// Every bit window of 2w samples is searched for the edge closest to its
// centre. The window is skipped if it has no edge or if that edge lies
// within margin*2w of either border.
func Manchester(logic []uint8, p Pulse, margin float64) Result {
	w := p.Width()
	res := Result{
		Pulse:     p,
		Reference: p.End + w,
		Period:    2 * w,
	}
	if w <= 0 {
		return res
	}
	if margin <= 0 {
		margin = DefaultEdgeMargin
	}

	var edges []int
	for i := res.Reference + 1; i < len(logic); i++ {
		if logic[i] != logic[i-1] {
			edges = append(edges, i)
		}
	}

	period := res.Period
	limit := float32(margin) * float32(period)
	e := 0
	for k := res.Reference; k < len(logic); k += period {
		next := k + period
		if next >= len(logic) {
			break
		}

		for e < len(edges) && edges[e] < k {
			e++
		}
		centre := float32(k+next) / 2
		best := -1
		bestDist := float32(0)
		for j := e; j < len(edges) && edges[j] < next; j++ {
			d := math32.Abs(float32(edges[j]) - centre)
			if best < 0 || d < bestDist {
				best = edges[j]
				bestDist = d
			}
		}
		if best < 0 {
			continue
		}
		if float32(best-k) < limit || float32(next-best) < limit {
			continue
		}

		switch {
		case logic[best-1] == 1 && logic[best] == 0:
			res.Bits = append(res.Bits, 1)
		case logic[best-1] == 0 && logic[best] == 1:
			res.Bits = append(res.Bits, 0)
		}
		res.Edges = append(res.Edges, best)
	}

	res.Text = BitsToText(res.Bits)
	return res
}

// DecodeBurst binarizes values, finds the reference pulse and decodes the
// bits after it. sampleRate in Hz is only used to fill Result.Duration.
func DecodeBurst(values []int16, threshold int16, sampleRate, margin float64) (Result, error) {
	logic := Binarize(values, threshold)
	p, err := FirstPulse(logic)
	if err != nil {
		return Result{}, err
	}

	res := Manchester(logic, p, margin)
	if sampleRate > 0 {
		res.Duration = time.Duration(float64(p.Width()) * float64(time.Second) / sampleRate)
	}
	return res, nil
}

// BitsToText groups bits MSB first into bytes, padding the tail with zeros.
// Printable ASCII is kept; every other byte becomes '?'.
func BitsToText(bits []uint8) string {
	if len(bits) == 0 {
		return ""
	}

	out := make([]byte, 0, (len(bits)+7)/8)
	for i := 0; i < len(bits); i += 8 {
		var b byte
		for j := range 8 {
			b <<= 1
			if i+j < len(bits) && bits[i+j] != 0 {
				b |= 1
			}
		}
		if b >= 32 && b <= 126 {
			out = append(out, b)
		} else {
			out = append(out, '?')
		}
	}
	return string(out)
}
