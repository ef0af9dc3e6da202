// Package gpio provides GPIO input reading with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Reader reads the logical levels of a fixed set of input lines.
type Reader interface {
	// Read returns one logical level per line, in line order.
	Read() ([]bool, error)

	// Close releases GPIO resources.
	Close() error
}

// DefaultChip is the GPIO character device used when none is given.
const DefaultChip = "gpiochip0"

// ErrBadLine is returned by ParseLine.
var ErrBadLine = errors.New("gpio: bad line spec")

// Line names one input line (BCM offset on a Raspberry Pi).
type Line struct {
	Name   string
	Offset int
}

// ParseLine parses a "name=offset" line spec.
func ParseLine(s string) (Line, error) {
	name, off, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Line{}, fmt.Errorf("%w: %q (want name=offset)", ErrBadLine, s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(off))
	if err != nil || n < 0 {
		return Line{}, fmt.Errorf("%w: %q: offset must be a non-negative integer", ErrBadLine, s)
	}
	return Line{Name: name, Offset: n}, nil
}

// Names returns the line names in order.
func Names(lines []Line) []string {
	names := make([]string, len(lines))
	for i, l := range lines {
		names[i] = l.Name
	}
	return names
}
