// Package gpio provides the button input with hardware abstraction.
// The real implementation uses Linux GPIO character device edge events.
// The fake implementation allows testing without hardware.
package gpio

import "time"

// EdgeHandler is called for every edge of the button line.
// pressed is the logical level read when the edge was serviced; ts is the
// monotonic time of the edge. Calls are never concurrent for one button.
type EdgeHandler func(pressed bool, ts time.Duration)

// Button is a momentary push button that reports edges to an EdgeHandler.
type Button interface {
	// Pressed reads the current logical level of the button.
	Pressed() (bool, error)

	// Close stops edge delivery and releases GPIO resources.
	Close() error
}

// Default pin assignments (BCM numbering).
const (
	DefaultChip         = "gpiochip0"
	DefaultPinButton    = 17
	DefaultPinRelay     = 27
	DefaultPinIndicator = 22
)
