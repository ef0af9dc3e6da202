package status

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/plotview/internal/plot"
	"github.com/sweeney/plotview/internal/signal"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
	Frame  *FrameJSON  `json:"frame,omitempty"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event           string       `json:"event,omitempty"`
	Reason          string       `json:"reason,omitempty"`
	FrameID         string       `json:"frame_id"`
	RenderedAt      string       `json:"rendered_at,omitempty"`
	Zoom            string       `json:"zoom"`
	PointOfInterest signal.Time  `json:"point_of_interest"`
	Signals         []SignalJSON `json:"signals"`
	Marks           []MarkJSON   `json:"marks"`
	Capture         *CaptureJSON `json:"capture,omitempty"`
	UptimeSeconds   int64        `json:"uptime_seconds"`
	StartTime       string       `json:"start_time"`
	Timestamp       string       `json:"timestamp"`
	MQTT            MQTTStatus   `json:"mqtt"`
	Config          ConfigJSON   `json:"config"`
}

// SignalJSON is the JSON representation of one lane.
type SignalJSON struct {
	Name        string      `json:"name"`
	Transitions int         `json:"transitions"`
	End         signal.Time `json:"end"`
}

// MarkJSON is the JSON representation of one marker.
type MarkJSON struct {
	Label     string     `json:"label"`
	Condition string     `json:"condition"`
	Color     plot.Color `json:"color"`
}

// CaptureJSON reports GPIO capture state.
type CaptureJSON struct {
	Ready bool `json:"ready"`
	Rises int  `json:"rises"`
	Falls int  `json:"falls"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of host config.
type ConfigJSON struct {
	ViewFile    string   `json:"view_file,omitempty"`
	HTTPAddr    string   `json:"http_addr"`
	Broker      string   `json:"broker"`
	Lines       []string `json:"lines,omitempty"`
	PollMs      int64    `json:"poll_ms"`
	DebounceMs  int64    `json:"debounce_ms"`
	HeartbeatMs int64    `json:"heartbeat_ms"`
	Unit        string   `json:"unit,omitempty"`
}

// FrameJSON is the JSON representation of a rendered frame.
type FrameJSON struct {
	Width    int64              `json:"width"`
	Height   int64              `json:"height"`
	Commands []plot.DrawCommand `json:"commands"`
	Matches  []plot.Match       `json:"matches"`
}

func buildInner(snap Snapshot) StatusInner {
	v := snap.View
	signals := make([]SignalJSON, len(v.Signals))
	for i, s := range v.Signals {
		signals[i] = SignalJSON{Name: s.Name, Transitions: s.Transitions, End: s.End}
	}
	marks := make([]MarkJSON, len(v.Markers))
	for i, m := range v.Markers {
		marks[i] = MarkJSON{Label: m.Label, Condition: m.Spec.String(), Color: m.Color}
	}

	zoom := v.Zoom
	if zoom.Num == 0 || zoom.Den == 0 {
		zoom = plot.UnitZoom
	}

	inner := StatusInner{
		FrameID:         v.FrameID,
		Zoom:            fmt.Sprintf("%d/%d", zoom.Num, zoom.Den),
		PointOfInterest: v.PointOfInterest,
		Signals:         signals,
		Marks:           marks,
		UptimeSeconds:   int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:       snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:       snap.Now.UTC().Format(time.RFC3339),
		MQTT:            MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			ViewFile:    snap.Config.ViewFile,
			HTTPAddr:    snap.Config.HTTPAddr,
			Broker:      snap.Config.Broker,
			Lines:       snap.Config.Lines,
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Unit:        snap.Config.Unit,
		},
	}
	if !v.RenderedAt.IsZero() {
		inner.RenderedAt = v.RenderedAt.UTC().Format(time.RFC3339)
	}
	if snap.Capturing {
		inner.Capture = &CaptureJSON{
			Ready: snap.Baselined,
			Rises: snap.Counts.Rises,
			Falls: snap.Counts.Falls,
		}
	}
	return inner
}

func buildFrame(snap Snapshot) *FrameJSON {
	f := snap.View.Frame
	cmds := f.Commands
	if cmds == nil {
		cmds = []plot.DrawCommand{}
	}
	matches := f.Matches
	if matches == nil {
		matches = []plot.Match{}
	}
	return &FrameJSON{Width: f.Width, Height: f.Height, Commands: cmds, Matches: matches}
}

// FormatJSON returns the JSON status and frame for the web endpoint
// (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap), Frame: buildFrame(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
// The frame's draw commands are left out.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
