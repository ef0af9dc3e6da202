// Package config reads and writes YAML view files: the lane geometry, the
// signals to plot and the marks to annotate them with.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/plotview/internal/condition"
	"github.com/sweeney/plotview/internal/plot"
	"github.com/sweeney/plotview/internal/signal"
)

var (
	ErrNoName        = errors.New("config: signal without a name")
	ErrDuplicateName = errors.New("config: duplicate signal name")
	ErrBadLevel      = errors.New("config: level must be high or low")
)

// File is the on-disk shape of a view file.
type File struct {
	Geometry *Geometry `yaml:"geometry,omitempty"`
	Signals  []Signal  `yaml:"signals"`
	Marks    []Mark    `yaml:"marks,omitempty"`
	// Cursor is the initial point of interest.
	Cursor signal.Time `yaml:"cursor,omitempty"`
}

// Geometry overrides the default lane layout. Zero fields keep the default.
type Geometry struct {
	WidthScale uint64      `yaml:"width_scale,omitempty"`
	LaneHeight int64       `yaml:"lane_height,omitempty"`
	LaneGap    int64       `yaml:"lane_gap,omitempty"`
	GridStep   signal.Time `yaml:"grid_step,omitempty"`
}

// Signal is one named timeline.
type Signal struct {
	Name        string        `yaml:"name"`
	Transitions []signal.Time `yaml:"transitions,flow"`
}

// Mark is one condition and the color its matches are drawn in.
type Mark struct {
	Label  string      `yaml:"label"`
	Kind   string      `yaml:"kind,omitempty"` // default state_length
	Level  string      `yaml:"level,omitempty"` // high or low, default high
	Min    signal.Time `yaml:"min,omitempty"`
	Max    signal.Time `yaml:"max,omitempty"`
	Edges  int         `yaml:"edges,omitempty"`
	Window signal.Time `yaml:"window,omitempty"`
	Color  string      `yaml:"color"`
}

// Load reads and validates the view file at path.
func Load(fs afero.Fs, path string) (*File, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read view file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse view file %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("view file %s: %w", path, err)
	}
	return &f, nil
}

// Save writes f to path, creating parent directories. The file is written
// to a temporary name first and renamed into place.
func Save(fs afero.Fs, path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode view file: %w", err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write view file: %w", err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		fs.Remove(tmp)
		return fmt.Errorf("rename view file: %w", err)
	}
	return nil
}

// Validate checks signal names, transition order and every mark.
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Signals))
	for i, s := range f.Signals {
		if s.Name == "" {
			return fmt.Errorf("signal %d: %w", i, ErrNoName)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, s.Name)
		}
		seen[s.Name] = true
		if err := signal.New(s.Transitions...).Validate(); err != nil {
			return fmt.Errorf("signal %q: %w", s.Name, err)
		}
	}
	for i, m := range f.Marks {
		if _, err := m.Marker(); err != nil {
			return fmt.Errorf("mark %d (%s): %w", i, m.Label, err)
		}
	}
	return nil
}

// GeometryOrDefault returns the file's geometry over the defaults.
func (f *File) GeometryOrDefault() plot.Geometry {
	g := plot.DefaultGeometry()
	if f.Geometry == nil {
		return g
	}
	if f.Geometry.WidthScale > 0 {
		g.WidthScale = f.Geometry.WidthScale
	}
	if f.Geometry.LaneHeight > 0 {
		g.LaneHeight = f.Geometry.LaneHeight
	}
	if f.Geometry.LaneGap > 0 {
		g.LaneGap = f.Geometry.LaneGap
	}
	if f.Geometry.GridStep > 0 {
		g.GridStep = f.Geometry.GridStep
	}
	return g
}

// Spec converts the mark to a condition spec.
func (m Mark) Spec() (condition.Spec, error) {
	kind := condition.Kind(m.Kind)
	if kind == "" {
		kind = condition.KindStateLength
	}
	var spec condition.Spec
	switch kind {
	case condition.KindStateLength:
		level, err := parseLevel(m.Level)
		if err != nil {
			return condition.Spec{}, err
		}
		spec = condition.StateLength(level, m.Min, m.Max)
	case condition.KindEdgeCount:
		spec = condition.EdgeCount(m.Edges, m.Window)
	default:
		spec = condition.Spec{Kind: kind}
	}
	if err := spec.Validate(); err != nil {
		return condition.Spec{}, err
	}
	return spec, nil
}

// Marker converts the mark to a plot marker.
func (m Mark) Marker() (plot.Marker, error) {
	spec, err := m.Spec()
	if err != nil {
		return plot.Marker{}, err
	}
	color, err := plot.ParseColor(m.Color)
	if err != nil {
		return plot.Marker{}, err
	}
	return plot.Marker{Label: m.Label, Spec: spec, Color: color}, nil
}

func parseLevel(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "high", "true", "1":
		return true, nil
	case "low", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrBadLevel, s)
}

// Apply loads the file's signals, marks and cursor into v.
func (f *File) Apply(v *plot.View) error {
	for _, s := range f.Signals {
		v.SetSignal(s.Name, signal.New(s.Transitions...))
	}
	for i, m := range f.Marks {
		marker, err := m.Marker()
		if err != nil {
			return fmt.Errorf("mark %d (%s): %w", i, m.Label, err)
		}
		if _, err := v.AddCondition(marker); err != nil {
			return fmt.Errorf("mark %d (%s): %w", i, m.Label, err)
		}
	}
	v.SetPointOfInterest(f.Cursor)
	return nil
}

// NewView builds a view from the file.
func (f *File) NewView() (*plot.View, error) {
	v := plot.NewView(f.GeometryOrDefault())
	if err := f.Apply(v); err != nil {
		return nil, err
	}
	return v, nil
}

// FromView captures v's signals and marks as a file.
func FromView(v *plot.View) *File {
	f := &File{Cursor: v.PointOfInterest()}
	g := v.Mapper().Geometry
	if g != plot.DefaultGeometry() {
		f.Geometry = &Geometry{
			WidthScale: g.WidthScale,
			LaneHeight: g.LaneHeight,
			LaneGap:    g.LaneGap,
			GridStep:   g.GridStep,
		}
	}
	for i, name := range v.Names() {
		sig, _ := v.SignalAt(i)
		f.Signals = append(f.Signals, Signal{Name: name, Transitions: sig.Transitions()})
	}
	for _, m := range v.Markers() {
		f.Marks = append(f.Marks, markOf(m))
	}
	return f
}

func markOf(m plot.Marker) Mark {
	out := Mark{Label: m.Label, Kind: string(m.Spec.Kind), Color: string(m.Color)}
	switch m.Spec.Kind {
	case condition.KindStateLength:
		out.Level = "low"
		if m.Spec.Level {
			out.Level = "high"
		}
		out.Min, out.Max = m.Spec.Min, m.Spec.Max
	case condition.KindEdgeCount:
		out.Edges, out.Window = m.Spec.Edges, m.Spec.Window
	}
	return out
}
