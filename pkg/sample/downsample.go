package sample

// DownsampleSamples thins the counts trace to at most maxPoints samples taken
// at evenly spaced indices, so a long live window plots at a fixed cost.
// maxPoints <= 0 keeps every sample. The result is built in dst when its
// capacity allows; samples itself is never aliased.
func DownsampleSamples(dst []Sample, samples []Sample, maxPoints int) []Sample {
	n := len(samples)
	if maxPoints <= 0 || n <= maxPoints {
		return append(dst[:0], samples...)
	}

	dst = dst[:0]
	for i := range maxPoints {
		dst = append(dst, samples[i*n/maxPoints])
	}
	return dst
}
