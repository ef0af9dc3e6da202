package plot

import (
	"fmt"

	"github.com/sweeney/plotview/internal/signal"
)

// Redraw is a set of layers a mutation invalidated.
type Redraw uint8

const (
	RedrawNone   Redraw = 0
	RedrawCursor Redraw = 1 << iota
	RedrawTimeline
	RedrawAll = RedrawCursor | RedrawTimeline
)

// Frame is the output of one Render call.
type Frame struct {
	// Commands in drawing order: grid, lanes in lane order, cursor.
	Commands []DrawCommand
	// Matches found by the last timeline pass.
	Matches []Match
	Width   int64
	Height  int64
	// Redrawn reports which layers this call rebuilt.
	Redrawn Redraw
}

type namedSignal struct {
	name   string
	signal *signal.Signal
}

// View is the mutable plot state: signals in lane order, markers in
// registration order, zoom and point of interest.
//
// Every mutation records a redraw request and returns it; Render performs
// the pending work. View is not safe for concurrent use; hosts serialize
// calls.
type View struct {
	geom    Geometry
	zoom    Zoom
	signals []namedSignal
	markers []Marker
	poi     signal.Time
	pending Redraw

	grid    []DrawCommand
	lanes   [][]DrawCommand
	cursor  []DrawCommand
	matches []Match
}

// NewView returns an empty view at zoom 1/1. The first Render draws
// everything.
func NewView(g Geometry) *View {
	return &View{
		geom:    g,
		zoom:    UnitZoom,
		pending: RedrawAll,
	}
}

func (v *View) request(r Redraw) Redraw {
	v.pending |= r
	return r
}

// Mapper returns the coordinate mapper for the current zoom.
func (v *View) Mapper() Mapper {
	return Mapper{Geometry: v.geom, Zoom: v.zoom}
}

// Zoom returns the current zoom ratio.
func (v *View) Zoom() Zoom {
	return v.zoom
}

// Pending returns the redraw work queued since the last Render.
func (v *View) Pending() Redraw {
	return v.pending
}

func (v *View) indexOf(name string) int {
	for i, ns := range v.signals {
		if ns.name == name {
			return i
		}
	}
	return -1
}

// SetSignal registers sig under name. A signal already registered under the
// same name is replaced and keeps its lane; it is not moved to the last lane
// the way a remove followed by a set would move it.
func (v *View) SetSignal(name string, sig *signal.Signal) Redraw {
	if i := v.indexOf(name); i >= 0 {
		v.signals[i].signal = sig
	} else {
		v.signals = append(v.signals, namedSignal{name: name, signal: sig})
	}
	return v.request(RedrawAll)
}

// RemoveSignal unregisters name. Lanes below it move up by one.
// Returns RedrawNone if no such signal exists.
func (v *View) RemoveSignal(name string) Redraw {
	i := v.indexOf(name)
	if i < 0 {
		return RedrawNone
	}
	v.signals = append(v.signals[:i], v.signals[i+1:]...)
	return v.request(RedrawAll)
}

// Signal returns the signal registered under name.
func (v *View) Signal(name string) (*signal.Signal, bool) {
	i := v.indexOf(name)
	if i < 0 {
		return nil, false
	}
	return v.signals[i].signal, true
}

// SignalAt returns the signal in lane i.
func (v *View) SignalAt(i int) (*signal.Signal, bool) {
	if i < 0 || i >= len(v.signals) {
		return nil, false
	}
	return v.signals[i].signal, true
}

// Names returns signal names in lane order.
func (v *View) Names() []string {
	names := make([]string, len(v.signals))
	for i, ns := range v.signals {
		names[i] = ns.name
	}
	return names
}

// Len returns the number of registered signals.
func (v *View) Len() int {
	return len(v.signals)
}

// AddCondition appends a marker. Markers are never replaced; two markers
// with the same spec both draw.
func (v *View) AddCondition(m Marker) (Redraw, error) {
	if err := m.Spec.Validate(); err != nil {
		return RedrawNone, fmt.Errorf("add condition %q: %w", m.Label, err)
	}
	v.markers = append(v.markers, m)
	return v.request(RedrawAll), nil
}

// Markers returns the registered markers in registration order.
func (v *View) Markers() []Marker {
	out := make([]Marker, len(v.markers))
	copy(out, v.markers)
	return out
}

// ZoomIn doubles the zoom numerator. Returns RedrawNone at the largest
// ratio.
func (v *View) ZoomIn() Redraw {
	return v.setZoom(v.zoom.In())
}

// ZoomOut doubles the zoom denominator. Returns RedrawNone at the smallest
// ratio.
func (v *View) ZoomOut() Redraw {
	return v.setZoom(v.zoom.Out())
}

func (v *View) setZoom(z Zoom) Redraw {
	if z == v.zoom {
		return RedrawNone
	}
	v.zoom = z
	return v.request(RedrawAll)
}

// SetPointOfInterest moves the cursor to t. Only the cursor layer is
// invalidated.
func (v *View) SetPointOfInterest(t signal.Time) Redraw {
	v.poi = t
	return v.request(RedrawCursor)
}

// PointOfInterest returns the cursor time.
func (v *View) PointOfInterest() signal.Time {
	return v.poi
}

// Target is a pointer position resolved to a lane and time.
type Target struct {
	Lane   int         `json:"lane"`
	Signal string      `json:"signal"`
	Time   signal.Time `json:"time"`
}

// Locate resolves scene coordinates to the lane and time under them.
func (v *View) Locate(x, y int64) (Target, bool) {
	m := v.Mapper()
	lane, ok := m.LaneAt(y, len(v.signals))
	if !ok {
		return Target{}, false
	}
	return Target{Lane: lane, Signal: v.signals[lane].name, Time: m.TimeAt(x)}, true
}

// PointerPress moves the point of interest to the time under (x, y).
// Presses outside every lane change nothing.
func (v *View) PointerPress(x, y int64) (Target, bool) {
	target, ok := v.Locate(x, y)
	if !ok {
		return Target{}, false
	}
	v.SetPointOfInterest(target.Time)
	return target, true
}

// Wheel zooms in for positive delta and out for negative delta.
func (v *View) Wheel(delta int) Redraw {
	switch {
	case delta > 0:
		return v.ZoomIn()
	case delta < 0:
		return v.ZoomOut()
	}
	return RedrawNone
}

// End returns the greatest final transition over all signals.
func (v *View) End() signal.Time {
	var end signal.Time
	for _, ns := range v.signals {
		if last, ok := ns.signal.Last(); ok && last > end {
			end = last
		}
	}
	return end
}

// Render performs the pending redraw and returns the full frame. Calling it
// with nothing pending returns the same frame again.
func (v *View) Render() Frame {
	m := v.Mapper()
	done := v.pending

	if done&RedrawTimeline != 0 {
		v.grid = RenderGrid(m, len(v.signals), v.End())
		v.lanes = make([][]DrawCommand, len(v.signals))
		v.matches = nil
		for i, ns := range v.signals {
			cmds, matches := RenderSignal(m, i, ns.name, ns.signal, v.markers)
			v.lanes[i] = cmds
			v.matches = append(v.matches, matches...)
		}
	}
	if done&RedrawCursor != 0 {
		sigs := make([]*signal.Signal, len(v.signals))
		for i, ns := range v.signals {
			sigs[i] = ns.signal
		}
		v.cursor = RenderCursor(m, sigs, v.poi)
	}
	v.pending = RedrawNone

	n := len(v.grid) + len(v.cursor)
	for _, l := range v.lanes {
		n += len(l)
	}
	cmds := make([]DrawCommand, 0, n)
	cmds = append(cmds, v.grid...)
	for _, l := range v.lanes {
		cmds = append(cmds, l...)
	}
	cmds = append(cmds, v.cursor...)

	w, h := m.Extent(len(v.signals), v.End())
	matches := make([]Match, len(v.matches))
	copy(matches, v.matches)
	return Frame{
		Commands: cmds,
		Matches:  matches,
		Width:    w,
		Height:   h,
		Redrawn:  done,
	}
}
