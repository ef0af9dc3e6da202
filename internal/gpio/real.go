//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads GPIO from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip   *gpiocdev.Chip
	lines  *gpiocdev.Lines
	values []int
}

// NewRealReader requests the given lines on chip as inputs.
// With activeLow, a raw low reads as logical true.
func NewRealReader(chip string, lines []Line, activeLow bool) (*RealReader, error) {
	if len(lines) == 0 {
		return nil, errors.New("gpio: no lines requested")
	}
	if chip == "" {
		chip = DefaultChip
	}

	c, err := gpiocdev.NewChip(chip, gpiocdev.WithConsumer("plotview"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chip, err)
	}

	offsets := make([]int, len(lines))
	for i, l := range lines {
		offsets[i] = l.Offset
	}

	// Request lines as input with pull-down to match Pi boot defaults.
	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullDown}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	req, err := c.RequestLines(offsets, opts...)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("request lines %v: %w", offsets, err)
	}

	return &RealReader{
		chip:   c,
		lines:  req,
		values: make([]int, len(offsets)),
	}, nil
}

// Read returns the logical level of every requested line.
func (r *RealReader) Read() ([]bool, error) {
	if err := r.lines.Values(r.values); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	out := make([]bool, len(r.values))
	for i, v := range r.values {
		out[i] = v != 0
	}
	return out, nil
}

// Close releases GPIO resources.
// Reconfigures lines to input with pull-down (matching Pi boot defaults) before
// closing to ensure clean state for system shutdown/reboot.
func (r *RealReader) Close() error {
	var errs []error

	if r.lines != nil {
		if err := r.lines.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure lines: %w", err))
		}
		if err := r.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close lines: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
