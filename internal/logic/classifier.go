package logic

import (
	"time"

	"github.com/sweeney/press-switch/internal/clock"
)

// Toggler flips the controlled outputs on a short press.
type Toggler interface {
	Toggle() error
}

// OutputState reports the current logical output levels.
type OutputState interface {
	State() (relay, indicator bool)
}

// Classifier turns button edges into classified presses.
//
// OnEdge must not be called concurrently with itself; the GPIO layer
// serializes edge delivery per line. The classifier takes no locks.
type Classifier struct {
	thresholds Thresholds
	clock      clock.Clock
	toggler    Toggler

	pending      bool
	pendingStart clock.Ticks
}

// NewClassifier creates a Classifier. toggler is invoked on every short
// press; it may be nil when no outputs are attached.
func NewClassifier(thresholds Thresholds, clk clock.Clock, toggler Toggler) *Classifier {
	return &Classifier{
		thresholds: thresholds,
		clock:      clk,
		toggler:    toggler,
	}
}

// OnEdge handles one edge of the button line. pressed is the level read when
// the edge was serviced, not the edge direction. It returns the classified
// press when a release resolves a pending press.
func (c *Classifier) OnEdge(pressed bool, now clock.Ticks) (Event, bool) {
	if !c.pending {
		if pressed {
			c.pending = true
			c.pendingStart = now
		}
		// Release with nothing pending is a spurious edge.
		return Event{}, false
	}

	if pressed {
		// Bounce while held.
		return Event{}, false
	}

	hold := c.clock.Diff(now, c.pendingStart)
	c.pending = false

	event := Event{
		Type: c.Classify(hold),
		Hold: hold,
		At:   now,
	}

	if event.Type == EventShortPress && c.toggler != nil {
		event.ToggleErr = c.toggler.Toggle()
	}
	if s, ok := c.toggler.(OutputState); ok {
		relay, indicator := s.State()
		event.Relay = StateOf(relay)
		event.Indicator = StateOf(indicator)
	}

	return event, true
}

// Classify maps a hold duration onto exactly one event type.
func (c *Classifier) Classify(hold time.Duration) EventType {
	switch {
	case hold > c.thresholds.LongPress:
		return EventLongPress
	case hold > c.thresholds.Debounce:
		return EventShortPress
	default:
		return EventBounce
	}
}

// Pending reports whether a press is in progress and when it started.
func (c *Classifier) Pending() (clock.Ticks, bool) {
	return c.pendingStart, c.pending
}

// Thresholds returns the configured thresholds.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}
