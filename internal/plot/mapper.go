package plot

import (
	"math"
	"math/bits"

	"github.com/sweeney/plotview/internal/signal"
)

// Default geometry, matching the original widget's lane layout.
const (
	DefaultWidthScale = 1
	DefaultLaneHeight = 40
	DefaultLaneGap    = 10
	DefaultGridStep   = 1000
)

// Geometry holds the fixed layout constants of a view.
type Geometry struct {
	WidthScale uint64      // pixels per time unit at zoom 1/1
	LaneHeight int64       // height of one lane band
	LaneGap    int64       // gap above every lane
	GridStep   signal.Time // time between grid lines, 0 disables the grid
}

// DefaultGeometry returns the default layout.
func DefaultGeometry() Geometry {
	return Geometry{
		WidthScale: DefaultWidthScale,
		LaneHeight: DefaultLaneHeight,
		LaneGap:    DefaultLaneGap,
		GridStep:   DefaultGridStep,
	}
}

// MaxZoomTerm bounds both zoom terms, so the ratio stays within
// 1/MaxZoomTerm and MaxZoomTerm.
const MaxZoomTerm = 1 << 32

// Zoom is a rational scale factor. Numerator and denominator are only ever
// doubled, so zooming in and back out is exact.
type Zoom struct {
	Num uint64
	Den uint64
}

// UnitZoom is the 1/1 ratio.
var UnitZoom = Zoom{Num: 1, Den: 1}

// In doubles the numerator. Once the numerator reaches MaxZoomTerm it halves
// an even denominator instead, and at the largest ratio it returns z
// unchanged.
func (z Zoom) In() Zoom {
	switch {
	case z.Num < MaxZoomTerm:
		return Zoom{Num: z.Num * 2, Den: z.Den}
	case z.Den > 1 && z.Den%2 == 0:
		return Zoom{Num: z.Num, Den: z.Den / 2}
	}
	return z
}

// Out doubles the denominator, mirroring In.
func (z Zoom) Out() Zoom {
	switch {
	case z.Den < MaxZoomTerm:
		return Zoom{Num: z.Num, Den: z.Den * 2}
	case z.Num > 1 && z.Num%2 == 0:
		return Zoom{Num: z.Num / 2, Den: z.Den}
	}
	return z
}

// terms returns the zoom terms, reading a zero term as 1/1.
func (z Zoom) terms() (num, den uint64) {
	if z.Num == 0 || z.Den == 0 {
		return 1, 1
	}
	return z.Num, z.Den
}

// Mapper translates between time/lane space and pixel space.
// It is a value; a zoom change produces a new Mapper.
type Mapper struct {
	Geometry
	Zoom Zoom
}

// X returns the horizontal pixel position of t. Positions past
// math.MaxInt64 saturate.
func (m Mapper) X(t signal.Time) int64 {
	num, den := m.Zoom.terms()
	hi, scaled := bits.Mul64(uint64(t), m.WidthScale)
	if hi != 0 {
		return math.MaxInt64
	}
	hi, lo := bits.Mul64(scaled, num)
	if hi >= den {
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, den)
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(q)
}

// TimeAt is the inverse of X, truncating the same way. Negative positions
// map to time 0.
func (m Mapper) TimeAt(x int64) signal.Time {
	if x < 0 || m.WidthScale == 0 {
		return 0
	}
	num, den := m.Zoom.terms()
	hi, lo := bits.Mul64(uint64(x), den)
	if hi >= num {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, num)
	return signal.Time(q / m.WidthScale)
}

// LaneBounds returns the top and bottom of lane i.
func (m Mapper) LaneBounds(i int) (top, bottom int64) {
	stride := m.LaneHeight + m.LaneGap
	return int64(i)*stride + m.LaneGap, int64(i+1) * stride
}

// LaneMid returns the vertical midline of lane i.
func (m Mapper) LaneMid(i int) int64 {
	top, _ := m.LaneBounds(i)
	return top + m.LaneHeight/2
}

// LaneAt returns the lane among the first lanes whose band contains y.
// Both band edges are inside.
func (m Mapper) LaneAt(y int64, lanes int) (int, bool) {
	for i := 0; i < lanes; i++ {
		top, bottom := m.LaneBounds(i)
		if y >= top && y <= bottom {
			return i, true
		}
	}
	return 0, false
}

// levelY returns the y position of a level line in a lane with the given
// top: true along the top edge, false along the bottom.
func (m Mapper) levelY(top int64, level bool) int64 {
	if level {
		return top
	}
	return top + m.LaneHeight
}

// Extent returns the scene size for the given lane count and final time.
func (m Mapper) Extent(lanes int, end signal.Time) (width, height int64) {
	return m.X(end), (m.LaneHeight+m.LaneGap)*int64(lanes) + m.LaneGap
}
