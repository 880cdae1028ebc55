// Package trajectory plots pitch tracks on a log-frequency axis and keeps the
// plotted segments for later inspection and replay.
package trajectory

import (
	"image/color"
	"math"
	"sync"

	"github.com/cbegin/pitchpad-go/internal/geometry"
)

// Plot area as fractions of the canvas.
const (
	xMinFrac = 0.15
	xMaxFrac = 0.95
	yMinFrac = 0.1
	yMaxFrac = 0.9
)

// Path is the subset of a 2D drawing context the renderer strokes into.
type Path interface {
	SetStrokeStyle(c color.Color)
	SetLineWidth(w float64)
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Stroke()
}

type Point struct {
	X, Y float64
}

// Segment is a run of consecutive valid samples drawn as one connected line.
type Segment []Point

type Style struct {
	Color     color.Color
	LineWidth float64
}

// DefaultStyle is a wide translucent grey stroke.
var DefaultStyle = Style{
	Color:     color.NRGBA{R: 128, G: 128, B: 128, A: 128},
	LineWidth: 100,
}

// Renderer strokes datasets and accumulates the resulting segments until
// Clear is called. It is safe for concurrent use.
type Renderer struct {
	mu       sync.Mutex
	style    Style
	segments []Segment
}

func NewRenderer(style Style) *Renderer {
	if style.Color == nil {
		style.Color = DefaultStyle.Color
	}
	if style.LineWidth <= 0 {
		style.LineWidth = DefaultStyle.LineWidth
	}
	return &Renderer{style: style}
}

// Project maps a sample to canvas pixels. ok is false for samples that cannot
// be plotted (NaN, non-positive or infinite frequency). When the frequency
// range is degenerate every valid sample lands on the vertical midpoint.
func Project(s Sample, minFreq, maxFreq float64, size geometry.Size) (p Point, ok bool) {
	if !s.Frequency.Valid() {
		return Point{}, false
	}
	xMin, xMax := size.W*xMinFrac, size.W*xMaxFrac
	yMin, yMax := size.H*yMinFrac, size.H*yMaxFrac

	p.X = xMin + (xMax-xMin)*s.Time
	if minFreq <= 0 || maxFreq <= minFreq {
		p.Y = (yMin + yMax) / 2
		return p, true
	}
	logMin := math.Log(minFreq)
	frac := (math.Log(float64(s.Frequency)) - logMin) / (math.Log(maxFreq) - logMin)
	p.Y = yMin + (yMax-yMin)*(1-frac)
	return p, true
}

// Render strokes ds onto p as a single path. Invalid samples break the line;
// the next valid sample starts a new, unconnected sub-path. Every completed
// segment is appended to the accumulated trajectory data.
func (r *Renderer) Render(ds Dataset, size geometry.Size, p Path) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.SetStrokeStyle(r.style.Color)
	p.SetLineWidth(r.style.LineWidth)
	p.BeginPath()

	var seg Segment
	drawing := false
	for _, s := range ds.Data {
		pt, ok := Project(s, ds.MinFrequency, ds.MaxFrequency, size)
		if !ok {
			if drawing {
				r.segments = append(r.segments, seg)
				seg = nil
			}
			drawing = false
			continue
		}
		if drawing {
			p.LineTo(pt.X, pt.Y)
		} else {
			p.MoveTo(pt.X, pt.Y)
			drawing = true
		}
		seg = append(seg, pt)
	}
	if len(seg) > 0 {
		r.segments = append(r.segments, seg)
	}

	p.Stroke()
}

// Replay strokes every accumulated segment onto p in a single path.
func (r *Renderer) Replay(p Path) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.SetStrokeStyle(r.style.Color)
	p.SetLineWidth(r.style.LineWidth)
	p.BeginPath()
	for _, seg := range r.segments {
		for i, pt := range seg {
			if i == 0 {
				p.MoveTo(pt.X, pt.Y)
				continue
			}
			p.LineTo(pt.X, pt.Y)
		}
	}
	p.Stroke()
}

// Clear drops all accumulated segments.
func (r *Renderer) Clear() {
	r.mu.Lock()
	r.segments = nil
	r.mu.Unlock()
}

// Data returns a copy of the accumulated segments.
func (r *Renderer) Data() []Segment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Segment, len(r.segments))
	for i, seg := range r.segments {
		out[i] = append(Segment(nil), seg...)
	}
	return out
}
