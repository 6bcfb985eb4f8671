package scope

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/adcstream/pkg/sample"
)

// DefaultMaxPoints limits the number of plotted points.
const DefaultMaxPoints = 1000

// ScopeWidget is a custom Fyne widget that displays the live sample window
// oscilloscope style: counts over sample index with the trigger level.
type ScopeWidget struct {
	widget.BaseWidget

	// Data (protected by mu)
	mu        sync.RWMutex
	threshold int16
	status    string

	// Display buffer (reused for downsampling)
	displaySamples []sample.Sample
	// Index in displaySamples of the first sample at or above threshold, -1 if none
	markerIndex int

	yMin, yMax float64

	maxDisplayPoints int
}

// New creates a new ScopeWidget instance.
func New(maxPoints int) *ScopeWidget {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	s := &ScopeWidget{
		displaySamples:   make([]sample.Sample, 0, maxPoints),
		markerIndex:      -1,
		maxDisplayPoints: maxPoints,
	}
	s.yMin, s.yMax = autoScale(nil, 0)
	s.ExtendBaseWidget(s)
	s.Refresh()
	return s
}

// UpdateData updates the widget with the live window. samples is copied, the
// caller may reuse it. The marker is drawn only while triggered.
// This should be called from the monitor callback using fyne.Do().
func (s *ScopeWidget) UpdateData(samples []sample.Sample, threshold int16, triggered bool) {
	s.mu.Lock()

	s.displaySamples = sample.DownsampleSamples(s.displaySamples, samples, s.maxDisplayPoints)
	s.threshold = threshold
	s.markerIndex = -1
	if triggered {
		s.markerIndex = firstAtOrAbove(s.displaySamples, threshold)
	}
	s.yMin, s.yMax = autoScale(s.displaySamples, threshold)

	s.mu.Unlock()

	// Refresh outside the lock, the renderer takes a read lock.
	s.Refresh()
}

// SetStatus sets the text shown in the top left corner, e.g. the last decoded message.
func (s *ScopeWidget) SetStatus(text string) {
	s.mu.Lock()
	s.status = text
	s.mu.Unlock()
	s.Refresh()
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:   s,
		grid:    grid,
		objects: []fyne.CanvasObject{grid},
	}
}
