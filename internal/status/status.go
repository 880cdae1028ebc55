// Package status carries pointer gesture events from the input layer to the
// button controller and holds the small amount of state they share.
package status

import (
	"fmt"
	"strings"
)

// Status is the drawing gesture phase reported with each pointer event.
type Status int

const (
	// None is the zero value: no event seen yet.
	None Status = iota
	StartDrawing
	Drawing
	EndDrawing
	NotDrawing
)

func (s Status) String() string {
	switch s {
	case StartDrawing:
		return "StartDrawing"
	case Drawing:
		return "Drawing"
	case EndDrawing:
		return "EndDrawing"
	case NotDrawing:
		return "NotDrawing"
	default:
		return "None"
	}
}

// Parse maps a status name (case-insensitive) to a Status.
func Parse(name string) (Status, error) {
	for _, s := range []Status{StartDrawing, Drawing, EndDrawing, NotDrawing} {
		if strings.EqualFold(name, s.String()) {
			return s, nil
		}
	}
	return None, fmt.Errorf("unknown gesture status %q", name)
}

// Gesture reports whether s is one of the four gesture phases the controller
// reacts to.
func (s Status) Gesture() bool {
	return s >= StartDrawing && s <= NotDrawing
}

// Released reports whether s means the pointer is no longer pressing.
func (s Status) Released() bool {
	return s == EndDrawing || s == NotDrawing
}

// Position is a pointer location normalized to [0,1] of the canvas size.
type Position struct {
	X, Y float64
}

// Event is one status broadcast.
type Event struct {
	Status   Status
	Position Position
}
