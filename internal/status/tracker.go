package status

// Tracker turns sampled pointer state into gesture events, the way a browser
// turns pointerdown/move/up into drawing phases. Feed it once per frame.
type Tracker struct {
	pressed bool
	last    Position
	primed  bool
}

// Update returns the event for this sample, if any. A press edge yields
// StartDrawing and a release edge EndDrawing. Movement while held yields
// Drawing and movement while released yields NotDrawing. A stationary pointer
// produces nothing.
func (t *Tracker) Update(pos Position, pressed bool) (Event, bool) {
	moved := !t.primed || pos != t.last
	wasPressed := t.pressed
	t.primed = true
	t.last = pos
	t.pressed = pressed

	var st Status
	switch {
	case pressed && !wasPressed:
		st = StartDrawing
	case !pressed && wasPressed:
		st = EndDrawing
	case pressed && moved:
		st = Drawing
	case !pressed && moved:
		st = NotDrawing
	default:
		return Event{}, false
	}
	return Event{Status: st, Position: pos}, true
}
