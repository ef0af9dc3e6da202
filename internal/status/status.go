// Package status provides a thread-safe status tracker for the plotview host.
// The host loop writes the latest frame; HTTP handlers read snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/plotview/internal/capture"
	"github.com/sweeney/plotview/internal/plot"
	"github.com/sweeney/plotview/internal/signal"
)

// Config contains host configuration for display.
type Config struct {
	ViewFile    string
	HTTPAddr    string
	Broker      string
	Lines       []string
	PollMs      int64
	DebounceMs  int64
	HeartbeatMs int64
	Unit        string
}

// SignalInfo summarizes one lane.
type SignalInfo struct {
	Name        string
	Transitions int
	End         signal.Time
}

// View is the display state of the plot at the last render.
type View struct {
	FrameID         string
	RenderedAt      time.Time
	Frame           plot.Frame
	Signals         []SignalInfo
	Markers         []plot.Marker
	Zoom            plot.Zoom
	PointOfInterest signal.Time
}

// Describe captures v's display state together with a frame just rendered
// from it.
func Describe(v *plot.View, frameID string, at time.Time, f plot.Frame) View {
	names := v.Names()
	infos := make([]SignalInfo, len(names))
	for i, name := range names {
		sig, _ := v.SignalAt(i)
		end, _ := sig.Last()
		infos[i] = SignalInfo{Name: name, Transitions: sig.Len(), End: end}
	}
	return View{
		FrameID:         frameID,
		RenderedAt:      at,
		Frame:           f,
		Signals:         infos,
		Markers:         v.Markers(),
		Zoom:            v.Zoom(),
		PointOfInterest: v.PointOfInterest(),
	}
}

// Snapshot is a point-in-time view of host state.
// It is a value type — safe to use after the lock is released. The frame's
// command slice is shared and must not be modified.
type Snapshot struct {
	View          View
	Capturing     bool // GPIO capture configured
	Baselined     bool
	Counts        capture.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the host started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable host state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Capturing: len(cfg.Lines) > 0,
			Config:    cfg,
		},
	}
}

// SetView records the state of the latest render.
func (t *Tracker) SetView(v View) {
	t.mu.Lock()
	t.snap.View = v
	t.mu.Unlock()
}

// SetCapture sets capture baseline status and transition counts.
func (t *Tracker) SetCapture(baselined bool, counts capture.Counts) {
	t.mu.Lock()
	t.snap.Baselined = baselined
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the host state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
