package decode

// Burst builds the waveform of message as read by the ADC: idle low
// samples, a reference pulse of bitSamples, a low gap of bitSamples, the
// Manchester coded bytes MSB first (2*bitSamples per bit) and idle low
// samples again.
func Burst(message string, bitSamples, idleSamples int, low, high int16) []int16 {
	if bitSamples <= 0 {
		bitSamples = 1
	}
	if idleSamples < 0 {
		idleSamples = 0
	}

	n := 2*idleSamples + 2*bitSamples + len(message)*8*2*bitSamples
	wave := make([]int16, 0, n)

	level := func(v int16, count int) {
		for range count {
			wave = append(wave, v)
		}
	}

	level(low, idleSamples)
	level(high, bitSamples)
	level(low, bitSamples)

	for i := 0; i < len(message); i++ {
		c := message[i]
		for bit := 7; bit >= 0; bit-- {
			if c&(1<<bit) != 0 {
				level(high, bitSamples)
				level(low, bitSamples)
			} else {
				level(low, bitSamples)
				level(high, bitSamples)
			}
		}
	}

	level(low, idleSamples)
	return wave
}
