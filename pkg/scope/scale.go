package scope

import (
	"github.com/chewxy/math32"
	"github.com/itohio/adcstream/pkg/sample"
)

// autoScale returns the Y range covering samples and the threshold with a 10% margin.
func autoScale(samples []sample.Sample, threshold int16) (yMin, yMax float64) {
	yMin, yMax = float64(threshold), float64(threshold)
	for _, s := range samples {
		v := float64(s.Counts)
		if v < yMin {
			yMin = v
		}
		if v > yMax {
			yMax = v
		}
	}

	span := yMax - yMin
	if span == 0 {
		span = 1
	}
	margin := span * 0.1
	return yMin - margin, yMax + margin
}

// firstAtOrAbove returns the index of the first sample at or above threshold, or -1.
func firstAtOrAbove(samples []sample.Sample, threshold int16) int {
	for i, s := range samples {
		if s.Counts >= threshold {
			return i
		}
	}
	return -1
}

// mapY converts a value to a vertical pixel position inside the plot area.
func mapY(v, yMin, yMax float64, plotY, plotHeight float32) float32 {
	if yMax == yMin {
		return plotY + plotHeight/2
	}
	return plotY + plotHeight - float32((v-yMin)/(yMax-yMin))*plotHeight
}

// mapX converts a sample index to a horizontal pixel position.
func mapX(i, n int, plotX, plotWidth float32) float32 {
	if n < 2 {
		return plotX
	}
	return plotX + float32(i)/float32(n-1)*plotWidth
}

// dashes splits [x0, x1] into dash segments of length dash separated by gap.
// The last dash is clipped to x1.
func dashes(x0, x1, dash, gap float32) [][2]float32 {
	if x1 <= x0 || dash <= 0 {
		return nil
	}
	period := dash + math32.Max(gap, 0)
	n := int(math32.Ceil((x1 - x0) / period))
	out := make([][2]float32, 0, n)
	for x := x0; x < x1; x += period {
		out = append(out, [2]float32{x, math32.Min(x+dash, x1)})
	}
	return out
}
