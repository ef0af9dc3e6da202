// Package plot turns binary signals and pattern conditions into flat lists
// of colored line segments. This package has NO external dependencies and
// does no I/O; hosts consume the draw commands.
package plot

import (
	"errors"
	"fmt"
	"strings"
)

// Color is a lowercase "#rrggbb" string.
type Color string

const (
	Black Color = "#000000"
	Blue  Color = "#0000ff"
	Gray  Color = "#808080"
)

// ErrBadColor is returned by ParseColor.
var ErrBadColor = errors.New("plot: bad color")

var namedColors = map[string]Color{
	"black":   Black,
	"white":   "#ffffff",
	"gray":    Gray,
	"grey":    Gray,
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    Blue,
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"magenta": "#ff00ff",
	"cyan":    "#00ffff",
	"purple":  "#800080",
}

// ParseColor accepts a color name or a "#rgb"/"#rrggbb" hex string.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return "", fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	hex := s[1:]
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return "", fmt.Errorf("%w: %q", ErrBadColor, s)
		}
	}
	switch len(hex) {
	case 6:
		return Color(s), nil
	case 3:
		return Color("#" + string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})), nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadColor, s)
}

// Layer groups draw commands that are rebuilt together.
type Layer string

const (
	LayerGrid   Layer = "grid"
	LayerSignal Layer = "signal"
	LayerCursor Layer = "cursor"
)

// Stacking order per layer.
const (
	ZGrid   = -10
	ZSignal = 0
	ZCursor = 10
)

// Stroke widths and offsets.
const (
	GridWidth   = 1
	LevelWidth  = 2
	EdgeWidth   = 2
	MatchWidth  = 5
	MatchOffset = 3
	CursorWidth = 6
)

// MaxGridLines caps the background grid of one frame.
const MaxGridLines = 4096

// DrawCommand is one line segment for the host surface.
type DrawCommand struct {
	X0    int64 `json:"x0"`
	Y0    int64 `json:"y0"`
	X1    int64 `json:"x1"`
	Y1    int64 `json:"y1"`
	Width int   `json:"width"`
	Color Color `json:"color"`
	Z     int   `json:"z"`
	Layer Layer `json:"layer"`
	Lane  int   `json:"lane"` // -1 for the grid
}
