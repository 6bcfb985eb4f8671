package scope

import (
	"image/color"
	"math"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/adcstream/pkg/sample"
)

var (
	gridColor      = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor     = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	traceColor     = color.RGBA{R: 255, G: 165, B: 0, A: 255} // Orange
	thresholdColor = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	markerColor    = color.RGBA{R: 0, G: 100, B: 200, A: 255}
	statusColor    = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	grid *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.grid.Resize(size)

	if r.lastSize.Width != size.Width || r.lastSize.Height != size.Height {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh updates the widget display.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	samples := r.scope.displaySamples
	threshold := r.scope.threshold
	marker := r.scope.markerIndex
	status := r.scope.status
	yMin := r.scope.yMin
	yMax := r.scope.yMax
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.grid}

	marginLeft := float32(60.0)
	marginRight := float32(20.0)
	marginTop := float32(20.0)
	marginBottom := float32(40.0)

	plotWidth := size.Width - marginLeft - marginRight
	plotHeight := size.Height - marginTop - marginBottom
	plotX := marginLeft
	plotY := marginTop

	r.drawGrid(plotX, plotY, plotWidth, plotHeight, yMin, yMax, len(samples))

	if len(samples) > 1 {
		r.drawSampleLine(plotX, plotY, plotWidth, plotHeight, samples, yMin, yMax)
	}

	r.drawThreshold(plotX, plotY, plotWidth, plotHeight, threshold, yMin, yMax)

	if marker >= 0 {
		x := mapX(marker, len(samples), plotX, plotWidth)
		line := canvas.NewLine(markerColor)
		line.Position1 = fyne.NewPos(x, plotY)
		line.Position2 = fyne.NewPos(x, plotY+plotHeight)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)
	}

	if status != "" {
		text := canvas.NewText(status, statusColor)
		text.TextSize = 11
		text.Move(fyne.NewPos(plotX+10, plotY+10))
		r.objects = append(r.objects, text)
	}
}

// drawGrid draws the oscilloscope-style grid with count and sample index labels.
func (r *scopeRenderer) drawGrid(plotX, plotY, plotWidth, plotHeight float32, yMin, yMax float64, n int) {
	numHLines := 8
	for i := range numHLines + 1 {
		y := plotY + float32(i)*plotHeight/float32(numHLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(plotX, y)
		line.Position2 = fyne.NewPos(plotX+plotWidth, y)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		value := yMax - float64(i)*(yMax-yMin)/float64(numHLines)
		text := canvas.NewText(formatCounts(value), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(plotX-5, y-6))
		r.objects = append(r.objects, text)
	}

	numVLines := 10
	for i := range numVLines + 1 {
		x := plotX + float32(i)*plotWidth/float32(numVLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(x, plotY)
		line.Position2 = fyne.NewPos(x, plotY+plotHeight)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		idx := 0
		if n > 1 {
			idx = i * (n - 1) / numVLines
		}
		text := canvas.NewText(strconv.Itoa(idx), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, plotY+plotHeight+5))
		r.objects = append(r.objects, text)
	}
}

// drawSampleLine draws the counts trace (orange).
func (r *scopeRenderer) drawSampleLine(plotX, plotY, plotWidth, plotHeight float32, samples []sample.Sample, yMin, yMax float64) {
	prev := fyne.NewPos(mapX(0, len(samples), plotX, plotWidth), mapY(float64(samples[0].Counts), yMin, yMax, plotY, plotHeight))
	for i := 1; i < len(samples); i++ {
		p := fyne.NewPos(mapX(i, len(samples), plotX, plotWidth), mapY(float64(samples[i].Counts), yMin, yMax, plotY, plotHeight))
		line := canvas.NewLine(traceColor)
		line.Position1 = prev
		line.Position2 = p
		line.StrokeWidth = 1.5
		r.objects = append(r.objects, line)
		prev = p
	}
}

// drawThreshold draws the trigger level as a dashed red line.
func (r *scopeRenderer) drawThreshold(plotX, plotY, plotWidth, plotHeight float32, threshold int16, yMin, yMax float64) {
	y := mapY(float64(threshold), yMin, yMax, plotY, plotHeight)
	for _, d := range dashes(plotX, plotX+plotWidth, 8, 5) {
		line := canvas.NewLine(thresholdColor)
		line.Position1 = fyne.NewPos(d[0], y)
		line.Position2 = fyne.NewPos(d[1], y)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)
	}

	text := canvas.NewText(formatCounts(float64(threshold)), thresholdColor)
	text.TextSize = 10
	text.Alignment = fyne.TextAlignTrailing
	text.Move(fyne.NewPos(plotX+plotWidth, y-14))
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {
	// Cleanup handled by Fyne
}

func formatCounts(v float64) string {
	return strconv.FormatInt(int64(math.Round(v)), 10)
}
