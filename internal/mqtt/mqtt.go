// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sweeney/plotview/internal/plot"
	"github.com/sweeney/plotview/internal/signal"
)

// TopicFrames is the MQTT topic for rendered frame summaries.
const TopicFrames = "plotview/frames"

// TopicCursor is the MQTT topic for point-of-interest moves.
const TopicCursor = "plotview/cursor"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "plotview/system"

// Publisher publishes view events to MQTT.
type Publisher interface {
	// PublishFrame announces a rendered frame.
	// Returns error if publishing fails (should not crash the process).
	PublishFrame(event FrameEvent) error

	// PublishCursor announces a point-of-interest move.
	PublishCursor(event CursorEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// NewFrameID returns a new lexically sortable frame identifier.
func NewFrameID() string {
	return ulid.Make().String()
}

// FrameEvent summarizes one render pass.
type FrameEvent struct {
	Timestamp time.Time
	FrameID   string
	Zoom      plot.Zoom
	Signals   []string
	Segments  int
	Matches   []plot.Match
}

// CursorEvent reports a point-of-interest move. Target is set when the move
// came from a pointer press.
type CursorEvent struct {
	Timestamp time.Time
	FrameID   string
	Time      signal.Time
	Target    *plot.Target
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// FramePayload is the MQTT message payload for a frame event.
type FramePayload struct {
	Frame FramePayloadInner `json:"frame"`
}

// FramePayloadInner contains the frame details.
type FramePayloadInner struct {
	ID        string       `json:"id"`
	Timestamp string       `json:"timestamp"`
	Zoom      string       `json:"zoom"`
	Signals   []string     `json:"signals"`
	Segments  int          `json:"segments"`
	Matches   []plot.Match `json:"matches"`
}

// FormatFramePayload creates the JSON payload for a frame event.
func FormatFramePayload(event FrameEvent) ([]byte, error) {
	signals := event.Signals
	if signals == nil {
		signals = []string{}
	}
	matches := event.Matches
	if matches == nil {
		matches = []plot.Match{}
	}
	return json.Marshal(FramePayload{
		Frame: FramePayloadInner{
			ID:        event.FrameID,
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Zoom:      fmt.Sprintf("%d/%d", event.Zoom.Num, event.Zoom.Den),
			Signals:   signals,
			Segments:  event.Segments,
			Matches:   matches,
		},
	})
}

// CursorPayload is the MQTT message payload for a cursor event.
type CursorPayload struct {
	Cursor CursorPayloadInner `json:"cursor"`
}

// CursorPayloadInner contains the cursor details.
type CursorPayloadInner struct {
	Timestamp string       `json:"timestamp"`
	Frame     string       `json:"frame,omitempty"`
	Time      signal.Time  `json:"time"`
	Target    *plot.Target `json:"target,omitempty"`
}

// FormatCursorPayload creates the JSON payload for a cursor event.
func FormatCursorPayload(event CursorEvent) ([]byte, error) {
	return json.Marshal(CursorPayload{
		Cursor: CursorPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Frame:     event.FrameID,
			Time:      event.Time,
			Target:    event.Target,
		},
	})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
