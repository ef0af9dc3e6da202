package plot

import "github.com/sweeney/plotview/internal/signal"

// InputKind identifies a host input event.
type InputKind string

const (
	InputPress InputKind = "press" // pointer press at X, Y
	InputWheel InputKind = "wheel" // wheel turn by Delta
	InputPOI   InputKind = "poi"   // cursor moved to Time
)

// Input is one host event. Hosts translate their native events into
// Inputs and Apply them one at a time.
type Input struct {
	Kind  InputKind
	X, Y  int64
	Delta int
	Time  signal.Time
}

// Apply dispatches in to the matching View operation and returns the redraw
// it requested.
func (v *View) Apply(in Input) Redraw {
	switch in.Kind {
	case InputPress:
		if _, ok := v.PointerPress(in.X, in.Y); ok {
			return RedrawCursor
		}
	case InputWheel:
		return v.Wheel(in.Delta)
	case InputPOI:
		return v.SetPointOfInterest(in.Time)
	}
	return RedrawNone
}
