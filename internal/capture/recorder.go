package capture

import (
	"time"

	"github.com/sweeney/plotview/internal/signal"
)

// Recorder debounces per-channel samples and records each stable level
// change as a transition on that channel's timeline.
//
// Timelines start at the recorder's start time and count in units of unit.
// Every timeline begins at level true; a channel whose baseline level is
// false gets a transition at its baseline observation time.
type Recorder struct {
	debounceDuration time.Duration
	unit             time.Duration
	channels         []ChannelState
	baselined        bool
	startTime        time.Time
	counts           Counts
	lastHeartbeat    time.Time
}

// NewRecorder creates a recorder for the named channels.
// The startTime is time 0 on every recorded timeline and the base for
// heartbeat uptime.
func NewRecorder(names []string, debounceDuration, unit time.Duration, startTime time.Time) *Recorder {
	if unit <= 0 {
		unit = time.Microsecond
	}
	channels := make([]ChannelState, len(names))
	for i, name := range names {
		channels[i].Name = name
	}
	return &Recorder{
		debounceDuration: debounceDuration,
		unit:             unit,
		channels:         channels,
		startTime:        startTime,
		lastHeartbeat:    startTime,
	}
}

// Process takes a new input sample and returns the transitions it completed.
// Events are only returned after every channel has a baseline.
// Samples with fewer levels than channels leave the missing channels alone.
func (r *Recorder) Process(input Input) []Event {
	var events []Event
	for i := range r.channels {
		if i >= len(input.Levels) {
			break
		}
		if ev := r.processChannel(&r.channels[i], input.Levels[i], input.Time); ev != nil {
			events = append(events, *ev)
		}
	}

	if !r.baselined {
		for i := range r.channels {
			if !r.channels[i].Baselined {
				return nil // No events until baseline established
			}
		}
		r.baselined = true
		return nil
	}

	for _, e := range events {
		if e.Level {
			r.counts.Rises++
		} else {
			r.counts.Falls++
		}
	}
	return events
}

// processChannel handles debounce logic for a single channel.
// Returns the recorded event if a transition completed, nil otherwise.
func (r *Recorder) processChannel(ch *ChannelState, level bool, now time.Time) *Event {
	// First time seeing this channel
	if !ch.Baselined {
		if !ch.HasPending || ch.Pending != level {
			// Start observing, or level changed during baseline: restart
			ch.HasPending = true
			ch.Pending = level
			ch.PendingSince = now
			return nil
		}
		if now.Sub(ch.PendingSince) >= r.debounceDuration {
			ch.Stable = level
			ch.Baselined = true
			ch.HasPending = false
			if !level {
				r.record(ch, ch.PendingSince)
			}
		}
		return nil
	}

	// Already baselined - detect transitions
	if level == ch.Stable {
		// No change from stable level, clear any pending
		ch.HasPending = false
		return nil
	}

	if !ch.HasPending {
		ch.HasPending = true
		ch.Pending = level
		ch.PendingSince = now
		return nil
	}

	if now.Sub(ch.PendingSince) >= r.debounceDuration {
		ch.Stable = level
		ch.HasPending = false
		at := r.record(ch, ch.PendingSince)
		return &Event{
			Timestamp: ch.PendingSince,
			Channel:   ch.Name,
			Level:     level,
			At:        at,
		}
	}
	return nil
}

// record appends the transition observed at ts, nudging it forward if the
// unit is too coarse to keep the timeline strictly increasing.
func (r *Recorder) record(ch *ChannelState, ts time.Time) signal.Time {
	var at signal.Time
	if d := ts.Sub(r.startTime); d > 0 {
		at = signal.Time(d / r.unit)
	}
	if n := len(ch.Transitions); n > 0 && at <= ch.Transitions[n-1] {
		at = ch.Transitions[n-1] + 1
	}
	ch.Transitions = append(ch.Transitions, at)
	return at
}

// IsBaselined returns whether every channel has a baseline.
func (r *Recorder) IsBaselined() bool {
	return r.baselined
}

// Names returns channel names in channel order.
func (r *Recorder) Names() []string {
	names := make([]string, len(r.channels))
	for i := range r.channels {
		names[i] = r.channels[i].Name
	}
	return names
}

// Signal returns a snapshot of channel i's recorded timeline.
func (r *Recorder) Signal(i int) *signal.Signal {
	return signal.New(r.channels[i].Transitions...)
}

// CurrentLevels returns the stable level of every channel.
func (r *Recorder) CurrentLevels() []bool {
	out := make([]bool, len(r.channels))
	for i := range r.channels {
		out[i] = r.channels[i].Stable
	}
	return out
}

// CountsSnapshot returns transition counts since startup.
func (r *Recorder) CountsSnapshot() Counts {
	return r.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet baselined, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (r *Recorder) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if !r.baselined {
		return nil
	}
	if now.Sub(r.lastHeartbeat) < interval {
		return nil
	}
	r.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(r.startTime),
		Counts:    r.counts,
	}
}
