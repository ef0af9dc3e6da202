package plot

import (
	"github.com/sweeney/plotview/internal/condition"
	"github.com/sweeney/plotview/internal/signal"
)

// Marker is a condition tagged with the color its matches are drawn in.
type Marker struct {
	Label string
	Spec  condition.Spec
	Color Color
}

// Match records one interval annotated by a marker during a render pass.
type Match struct {
	Lane   int         `json:"lane"`
	Signal string      `json:"signal"`
	Label  string      `json:"label"`
	Color  Color       `json:"color"`
	From   signal.Time `json:"from"`
	To     signal.Time `json:"to"`
	Level  bool        `json:"level"` // level drawn across [From, To]
}

// RenderSignal draws one signal into lane. Every marker gets a fresh
// session that sees each transition once, in order.
//
// Per transition t_i, the interval since the previous transition (or 0) is
// drawn at the level it held: one thick colored line per matching marker,
// stacked MatchOffset apart in marker order, or a single thin black line if
// none matched. A black edge tick spanning the lane marks t_i itself.
func RenderSignal(m Mapper, lane int, name string, sig *signal.Signal, markers []Marker) ([]DrawCommand, []Match) {
	top, _ := m.LaneBounds(lane)

	sessions := make([]*condition.Session, len(markers))
	for i, mk := range markers {
		sessions[i] = mk.Spec.Start()
	}

	var cmds []DrawCommand
	var matches []Match
	line := func(t0, t1 signal.Time, y0, y1 int64, width int, color Color) {
		cmds = append(cmds, DrawCommand{
			X0: m.X(t0), Y0: y0,
			X1: m.X(t1), Y1: y1,
			Width: width,
			Color: color,
			Z:     ZSignal,
			Layer: LayerSignal,
			Lane:  lane,
		})
	}

	level := true
	var prev signal.Time
	for _, t := range sig.Transitions() {
		y := m.levelY(top, level)
		ofs := int64(0)
		for i, s := range sessions {
			if !s.Observe(t, !level) {
				continue
			}
			line(prev, t, y+ofs, y+ofs, MatchWidth, markers[i].Color)
			ofs += MatchOffset
			matches = append(matches, Match{
				Lane:   lane,
				Signal: name,
				Label:  markers[i].Label,
				Color:  markers[i].Color,
				From:   prev,
				To:     t,
				Level:  level,
			})
		}
		if ofs == 0 {
			line(prev, t, y, y, LevelWidth, Black)
		}
		line(t, t, top, top+m.LaneHeight, EdgeWidth, Black)

		prev = t
		level = !level
	}
	return cmds, matches
}

// RenderGrid draws vertical background lines every GridStep from 0 up to
// (not including) end, spanning the height of lanes lanes. When that would
// take more than MaxGridLines lines the step is widened to a multiple of
// GridStep.
func RenderGrid(m Mapper, lanes int, end signal.Time) []DrawCommand {
	if m.GridStep == 0 || end == 0 {
		return nil
	}
	step := m.GridStep
	if n := (end-1)/step + 1; n > MaxGridLines {
		step *= (n + MaxGridLines - 1) / MaxGridLines
	}
	_, height := m.Extent(lanes, end)
	var cmds []DrawCommand
	for t := signal.Time(0); ; t += step {
		x := m.X(t)
		cmds = append(cmds, DrawCommand{
			X0: x, Y0: 0,
			X1: x, Y1: height,
			Width: GridWidth,
			Color: Gray,
			Z:     ZGrid,
			Layer: LayerGrid,
			Lane:  -1,
		})
		if end-t <= step {
			break
		}
	}
	return cmds
}

// RenderCursor draws the point-of-interest overlay: on every lane, a line
// along the midline across the transition interval containing at. Lanes
// where at precedes the first transition or follows the last one get no
// cursor.
func RenderCursor(m Mapper, sigs []*signal.Signal, at signal.Time) []DrawCommand {
	var cmds []DrawCommand
	for lane, sig := range sigs {
		i, ok := sig.Find(at)
		if !ok || i+1 >= sig.Len() {
			continue
		}
		y := m.LaneMid(lane)
		cmds = append(cmds, DrawCommand{
			X0: m.X(sig.At(i)), Y0: y,
			X1: m.X(sig.At(i + 1)), Y1: y,
			Width: CursorWidth,
			Color: Blue,
			Z:     ZCursor,
			Layer: LayerCursor,
			Lane:  lane,
		})
	}
	return cmds
}
