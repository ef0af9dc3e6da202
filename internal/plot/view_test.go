package plot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/plotview/internal/condition"
	"github.com/sweeney/plotview/internal/signal"
)

func laneCommands(f Frame, lane int) []DrawCommand {
	var out []DrawCommand
	for _, c := range f.Commands {
		if c.Layer == LayerSignal && c.Lane == lane {
			out = append(out, c)
		}
	}
	return out
}

func TestNewViewRendersEverythingFirst(t *testing.T) {
	v := NewView(DefaultGeometry())
	assert.Equal(t, RedrawAll, v.Pending())

	f := v.Render()
	assert.Equal(t, RedrawAll, f.Redrawn)
	assert.Empty(t, f.Commands)
	assert.Equal(t, RedrawNone, v.Pending())
	assert.Equal(t, int64(10), f.Height)
}

func TestSetSignalReplacesInPlace(t *testing.T) {
	v := NewView(DefaultGeometry())
	v.SetSignal("a", signal.New(1))
	v.SetSignal("b", signal.New(2))
	v.SetSignal("c", signal.New(3))

	r := v.SetSignal("a", signal.New(10, 20))
	assert.Equal(t, RedrawAll, r)
	assert.Equal(t, []string{"a", "b", "c"}, v.Names())

	sig, ok := v.Signal("a")
	require.True(t, ok)
	assert.Equal(t, 2, sig.Len())
}

func TestSignalLookup(t *testing.T) {
	v := NewView(DefaultGeometry())
	v.SetSignal("a", signal.New(1))

	_, ok := v.Signal("missing")
	assert.False(t, ok)

	sig, ok := v.SignalAt(0)
	require.True(t, ok)
	assert.Equal(t, signal.Time(1), sig.At(0))

	_, ok = v.SignalAt(1)
	assert.False(t, ok)
	_, ok = v.SignalAt(-1)
	assert.False(t, ok)
}

func TestRemoveSignal(t *testing.T) {
	v := NewView(DefaultGeometry())
	v.SetSignal("a", signal.New(100, 200))
	v.SetSignal("b", signal.New(300, 400))
	v.SetSignal("c", signal.New(500, 600))
	v.Render()

	assert.Equal(t, RedrawAll, v.RemoveSignal("b"))
	assert.Equal(t, []string{"a", "c"}, v.Names())

	f := v.Render()
	assert.Len(t, laneCommands(f, 0), 4)
	assert.Len(t, laneCommands(f, 1), 4)
	assert.Empty(t, laneCommands(f, 2))
	for _, c := range laneCommands(f, 1) {
		if c.Y0 != c.Y1 {
			assert.True(t, c.X0 == 500 || c.X0 == 600, "lane 1 now holds signal c, got tick at %d", c.X0)
		}
	}
}

func TestRemoveMissingSignalRequestsNothing(t *testing.T) {
	v := NewView(DefaultGeometry())
	v.SetSignal("a", signal.New(1))
	v.Render()

	assert.Equal(t, RedrawNone, v.RemoveSignal("nope"))
	assert.Equal(t, RedrawNone, v.Pending())
	assert.Equal(t, []string{"a"}, v.Names())
}

func TestAddConditionAppends(t *testing.T) {
	v := NewView(DefaultGeometry())
	spec := condition.StateLength(true, 100, 200)

	_, err := v.AddCondition(Marker{Label: "x", Spec: spec, Color: "#ff0000"})
	require.NoError(t, err)
	_, err = v.AddCondition(Marker{Label: "y", Spec: spec, Color: "#00ff00"})
	require.NoError(t, err)

	markers := v.Markers()
	require.Len(t, markers, 2)
	assert.Equal(t, "x", markers[0].Label)
	assert.Equal(t, "y", markers[1].Label)

	v.SetSignal("s", signal.New(0, 150, 400))
	f := v.Render()
	assert.Len(t, f.Matches, 2)
}

func TestAddConditionRejectsInvalidSpec(t *testing.T) {
	v := NewView(DefaultGeometry())
	v.Render()

	r, err := v.AddCondition(Marker{Label: "bad", Spec: condition.StateLength(true, 9, 1)})
	assert.ErrorIs(t, err, condition.ErrInvalidRange)
	assert.Equal(t, RedrawNone, r)
	assert.Empty(t, v.Markers())
	assert.Equal(t, RedrawNone, v.Pending())
}

func TestZoomRoundTrip(t *testing.T) {
	v := NewView(DefaultGeometry())
	before := v.Mapper()

	v.ZoomIn()
	v.ZoomIn()
	assert.Equal(t, Zoom{Num: 4, Den: 1}, v.Zoom())
	assert.Equal(t, int64(4000), v.Mapper().X(1000))

	v.ZoomOut()
	v.ZoomOut()
	assert.Equal(t, Zoom{Num: 4, Den: 4}, v.Zoom())

	after := v.Mapper()
	for _, tm := range []signal.Time{0, 1, 3, 7, 999, 123457} {
		assert.Equal(t, before.X(tm), after.X(tm), "t=%d", tm)
	}
}

func TestWheel(t *testing.T) {
	v := NewView(DefaultGeometry())
	assert.Equal(t, RedrawAll, v.Wheel(120))
	assert.Equal(t, Zoom{Num: 2, Den: 1}, v.Zoom())
	assert.Equal(t, RedrawAll, v.Wheel(-120))
	assert.Equal(t, Zoom{Num: 2, Den: 2}, v.Zoom())
	assert.Equal(t, RedrawNone, v.Wheel(0))
}

func TestZoomIsBounded(t *testing.T) {
	for _, delta := range []int{1, -1} {
		v := NewView(DefaultGeometry())
		v.SetSignal("a", signal.New(100, 200, 300))

		for i := 0; i < 100; i++ {
			v.Wheel(delta)
		}
		z := v.Zoom()
		assert.Positive(t, z.Num, "delta %d", delta)
		assert.Positive(t, z.Den, "delta %d", delta)
		assert.LessOrEqual(t, z.Num, uint64(MaxZoomTerm))
		assert.LessOrEqual(t, z.Den, uint64(MaxZoomTerm))
		assert.Equal(t, RedrawNone, v.Wheel(delta), "delta %d at the limit", delta)

		f := v.Render()
		for _, c := range f.Commands {
			assert.GreaterOrEqual(t, c.X0, int64(0))
			assert.GreaterOrEqual(t, c.X1, int64(0))
		}
		v.PointerPress(5, 20)

		// the opposite direction still moves
		assert.Equal(t, RedrawAll, v.Wheel(-delta))
	}
}

func TestZoomLimitKeepsRatioMoving(t *testing.T) {
	v := NewView(DefaultGeometry())
	for i := 0; i < 40; i++ {
		v.ZoomIn()
		v.ZoomOut()
	}
	// both terms are at the limit, yet zooming still changes the ratio
	assert.Equal(t, RedrawAll, v.ZoomIn())
	assert.Equal(t, int64(2000), v.Mapper().X(1000))
	assert.Equal(t, RedrawAll, v.ZoomOut())
	assert.Equal(t, RedrawAll, v.ZoomOut())
	assert.Equal(t, int64(500), v.Mapper().X(1000))
}

func TestLocateRoundTrip(t *testing.T) {
	v := NewView(DefaultGeometry())
	v.SetSignal("a", signal.New(100, 5000))
	v.SetSignal("b", signal.New(100, 5000))
	v.SetSignal("c", signal.New(100, 5000))

	check := func(tolerance signal.Time) {
		t.Helper()
		m := v.Mapper()
		for lane := 0; lane < v.Len(); lane++ {
			for _, tm := range []signal.Time{100, 101, 777, 2500, 4999} {
				target, ok := v.Locate(m.X(tm), m.LaneMid(lane))
				require.True(t, ok)
				assert.Equal(t, lane, target.Lane)
				assert.Equal(t, v.Names()[lane], target.Signal)
				assert.LessOrEqual(t, tm-target.Time, tolerance, "t=%d", tm)
				assert.LessOrEqual(t, target.Time, tm)
			}
		}
	}

	check(0)
	v.ZoomIn()
	check(0)
	v.ZoomOut()
	v.ZoomOut()
	v.ZoomOut()
	// one pixel is now four time units
	check(3)
}

func TestLocateOutsideLanes(t *testing.T) {
	v := NewView(DefaultGeometry())
	v.SetSignal("a", signal.New(100))

	_, ok := v.Locate(50, 5)
	assert.False(t, ok)
	_, ok = v.Locate(50, 55)
	assert.False(t, ok)
}

func TestPointerPress(t *testing.T) {
	v := NewView(DefaultGeometry())
	v.SetSignal("a", signal.New(100, 200, 300))
	v.Render()

	_, ok := v.PointerPress(150, 500)
	assert.False(t, ok)
	assert.Equal(t, RedrawNone, v.Pending())
	assert.Equal(t, signal.Time(0), v.PointOfInterest())

	target, ok := v.PointerPress(150, 30)
	require.True(t, ok)
	assert.Equal(t, Target{Lane: 0, Signal: "a", Time: 150}, target)
	assert.Equal(t, signal.Time(150), v.PointOfInterest())
	assert.Equal(t, RedrawCursor, v.Pending())
}

func TestPointOfInterestRedrawsOnlyCursor(t *testing.T) {
	v := NewView(DefaultGeometry())
	v.SetSignal("a", signal.New(100, 200, 300))
	first := v.Render()

	v.SetPointOfInterest(250)
	f := v.Render()
	assert.Equal(t, RedrawCursor, f.Redrawn)

	var cursor []DrawCommand
	for _, c := range f.Commands {
		if c.Layer == LayerCursor {
			cursor = append(cursor, c)
		}
	}
	require.Len(t, cursor, 1)
	assert.Equal(t, int64(200), cursor[0].X0)
	assert.Equal(t, int64(300), cursor[0].X1)
	assert.Equal(t, laneCommands(first, 0), laneCommands(f, 0))
}

func TestRenderIsIdempotent(t *testing.T) {
	v := NewView(DefaultGeometry())
	v.SetSignal("a", signal.New(100, 1200, 2500))
	v.SetSignal("b", signal.New(50, 60))
	_, err := v.AddCondition(Marker{Label: "m", Spec: condition.StateLength(false, 0, 2000), Color: "#ff0000"})
	require.NoError(t, err)
	v.SetPointOfInterest(1500)

	a := v.Render()
	b := v.Render()
	assert.Equal(t, a.Commands, b.Commands)
	assert.Equal(t, a.Matches, b.Matches)
	assert.Equal(t, RedrawNone, b.Redrawn)

	// full rebuild from the same state draws the same thing
	v.ZoomIn()
	v.ZoomOut()
	v.Render()
	v2 := NewView(DefaultGeometry())
	v2.SetSignal("a", signal.New(100, 1200, 2500))
	v2.SetSignal("b", signal.New(50, 60))
	_, err = v2.AddCondition(Marker{Label: "m", Spec: condition.StateLength(false, 0, 2000), Color: "#ff0000"})
	require.NoError(t, err)
	v2.SetPointOfInterest(1500)
	assert.Equal(t, a.Commands, v2.Render().Commands)
}

func TestRenderOrder(t *testing.T) {
	v := NewView(DefaultGeometry())
	v.SetSignal("a", signal.New(100, 1200, 2500))
	v.SetPointOfInterest(150)
	f := v.Render()

	require.NotEmpty(t, f.Commands)
	assert.Equal(t, LayerGrid, f.Commands[0].Layer)
	assert.Equal(t, LayerCursor, f.Commands[len(f.Commands)-1].Layer)
	assert.Equal(t, int64(2500), f.Width)
	assert.Equal(t, int64(60), f.Height)
}

func TestApply(t *testing.T) {
	v := NewView(DefaultGeometry())
	v.SetSignal("a", signal.New(100, 200))
	v.Render()

	assert.Equal(t, RedrawCursor, v.Apply(Input{Kind: InputPress, X: 120, Y: 20}))
	assert.Equal(t, signal.Time(120), v.PointOfInterest())

	assert.Equal(t, RedrawNone, v.Apply(Input{Kind: InputPress, X: 120, Y: 999}))
	assert.Equal(t, RedrawAll, v.Apply(Input{Kind: InputWheel, Delta: 1}))
	assert.Equal(t, RedrawCursor, v.Apply(Input{Kind: InputPOI, Time: 7}))
	assert.Equal(t, signal.Time(7), v.PointOfInterest())
	assert.Equal(t, RedrawNone, v.Apply(Input{Kind: "unknown"}))
}
