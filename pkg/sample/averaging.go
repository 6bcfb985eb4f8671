package sample

// NewAveragingConverter creates a moving average over the last windowSize
// samples. Every input produces one output carrying the newest timestamp.
func NewAveragingConverter(windowSize int, bufSize int) func(in <-chan Sample) <-chan Sample {
	if windowSize <= 0 {
		windowSize = 1
	}
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan Sample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			ring := make([]Sample, windowSize)
			var (
				n, pos   int
				sumCount int64
				sumVolts float64
			)

			for s := range in {
				if n == windowSize {
					old := ring[pos]
					sumCount -= int64(old.Counts)
					sumVolts -= old.Volts
				} else {
					n++
				}
				ring[pos] = s
				pos = (pos + 1) % windowSize
				sumCount += int64(s.Counts)
				sumVolts += s.Volts

				out <- Sample{
					Timestamp: s.Timestamp,
					Counts:    int16(roundDiv(sumCount, int64(n))),
					Volts:     sumVolts / float64(n),
				}
			}
		}()

		return out
	}
}

// roundDiv divides rounding half away from zero.
func roundDiv(a, b int64) int64 {
	if a >= 0 {
		return (a + b/2) / b
	}
	return (a - b/2) / b
}
