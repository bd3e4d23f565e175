// Package logic contains the pure press-classification logic.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injected as clock.Ticks or time.Time parameters.
package logic

import (
	"time"

	"github.com/sweeney/press-switch/internal/clock"
)

// State represents the logical state of an output.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// StateOf converts a logical level to a State.
func StateOf(on bool) State {
	if on {
		return StateOn
	}
	return StateOff
}

// EventType is the classification of a completed press.
type EventType string

const (
	EventBounce     EventType = "BOUNCE"
	EventShortPress EventType = "SHORT_PRESS"
	EventLongPress  EventType = "LONG_PRESS"
)

// Thresholds partitions hold durations into
// [0, Debounce], (Debounce, LongPress] and (LongPress, ∞).
type Thresholds struct {
	Debounce  time.Duration
	LongPress time.Duration
}

// DefaultThresholds are tuned for a SonOff Basic style tactile button.
var DefaultThresholds = Thresholds{
	Debounce:  20 * time.Millisecond,
	LongPress: 600 * time.Millisecond,
}

// Event is a classified press.
type Event struct {
	Type EventType
	// Hold is how long the button was held, in whole milliseconds.
	Hold time.Duration
	// At is the counter value of the release edge.
	At clock.Ticks
	// Timestamp is the wall time of the release, stamped by the caller.
	Timestamp time.Time
	// Relay and Indicator are the logical output levels after the event was handled.
	Relay     State
	Indicator State
	// ToggleErr is set when a ShortPress could not drive the outputs.
	ToggleErr error
}

// Counts tracks the number of each event type since startup.
type Counts struct {
	Bounce     int
	ShortPress int
	LongPress  int
	// Dropped counts events the report queue had no room for.
	Dropped int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
