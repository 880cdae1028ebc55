// Package geometry places the four canvas buttons and hit-tests normalized
// pointer positions against them.
package geometry

// Margin is the distance in pixels between a button and the left canvas edge
// (and the top/bottom edge for the corner buttons).
const Margin = 10

const (
	sizeFrac = 0.1
	aux1Frac = 0.33
	aux2Frac = 0.67
)

// NumButtons is the number of canvas buttons.
const NumButtons = 4

// Button identifies one of the fixed canvas buttons.
type Button int

const (
	// Green sits in the top-left corner and plays the current recording.
	Green Button = iota
	// Cyan sits in the bottom-left corner and switches to the next recording.
	Cyan
	// Aux1 sits at 33% height and plays the pitch-only audio.
	Aux1
	// Aux2 sits at 67% height and fetches and plots the pitch trajectory.
	Aux2
)

// Buttons lists every button in draw order.
var Buttons = [NumButtons]Button{Green, Cyan, Aux1, Aux2}

func (b Button) String() string {
	switch b {
	case Green:
		return "green"
	case Cyan:
		return "cyan"
	case Aux1:
		return "aux1"
	case Aux2:
		return "aux2"
	default:
		return "unknown"
	}
}

// Size is a canvas size in pixels.
type Size struct {
	W, H float64
}

// Rect is an axis-aligned rectangle in canvas pixel space.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (px, py) lies within r, edges included.
func (r Rect) Contains(px, py float64) bool {
	return px >= r.X && px <= r.X+r.W && py >= r.Y && py <= r.Y+r.H
}

// Region returns the rectangle of b on a canvas of the given size. Regions are
// recomputed on every call so they follow canvas resizes.
func Region(b Button, size Size) Rect {
	w := size.W * sizeFrac
	h := size.H * sizeFrac
	r := Rect{X: Margin, W: w, H: h}
	switch b {
	case Green:
		r.Y = Margin
	case Cyan:
		r.Y = size.H - Margin - h
	case Aux1:
		r.Y = size.H*aux1Frac - h/2
	case Aux2:
		r.Y = size.H*aux2Frac - h/2
	}
	return r
}

// Regions returns every button rectangle indexed by Button.
func Regions(size Size) [NumButtons]Rect {
	var out [NumButtons]Rect
	for _, b := range Buttons {
		out[b] = Region(b, size)
	}
	return out
}

// IsInside reports whether the normalized pointer (x, y), each in [0,1],
// falls inside button b once scaled to the canvas.
func IsInside(b Button, x, y float64, size Size) bool {
	return Region(b, size).Contains(x*size.W, y*size.H)
}

// Hit returns the first button under the normalized pointer, if any.
func Hit(x, y float64, size Size) (Button, bool) {
	for _, b := range Buttons {
		if IsInside(b, x, y, size) {
			return b, true
		}
	}
	return 0, false
}
