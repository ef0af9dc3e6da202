// Package capture turns polled binary samples into signal timelines.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package capture

import (
	"time"

	"github.com/sweeney/plotview/internal/signal"
)

// Input is a single sample of every channel's logical level.
type Input struct {
	Levels []bool // one entry per channel, in channel order
	Time   time.Time
}

// Event reports a debounced level change recorded on a channel.
type Event struct {
	Timestamp time.Time   // when the new level was first observed
	Channel   string
	Level     bool        // level after the transition
	At        signal.Time // transition time on the channel's timeline
}

// ChannelState tracks debounce state and the recorded timeline of one channel.
type ChannelState struct {
	Name string
	// Current stable (debounced) level
	Stable bool
	// Whether a different level is waiting out the debounce period
	HasPending   bool
	Pending      bool
	PendingSince time.Time
	// Whether we have established a baseline
	Baselined bool
	// Recorded transitions, strictly increasing
	Transitions []signal.Time
}

// Counts tracks recorded transitions since startup.
type Counts struct {
	Rises int
	Falls int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
