// Package output drives the relay and indicator outputs.
// Drivers expose logical on/off; any wiring inversion (an active-low LED on a
// normally-closed circuit) is configured in the driver, never in callers.
package output

import (
	"errors"
	"fmt"
	"sync"
)

// Output is a single digital output in logical terms.
type Output interface {
	// Set drives the output to the given logical level. The logical level is
	// tracked even when the hardware write fails.
	Set(on bool) error

	// On returns the last logical level set.
	On() bool

	// Close releases the output.
	Close() error
}

// Pair is the relay and indicator driven together by a short press.
// It is safe for concurrent use.
type Pair struct {
	mu        sync.Mutex
	relay     Output
	indicator Output
}

// NewPair creates a Pair from the given outputs.
func NewPair(relay, indicator Output) *Pair {
	return &Pair{relay: relay, indicator: indicator}
}

// Toggle moves the relay to the indicator's current level, then inverts the
// indicator. The relay therefore always lags the indicator by one toggle.
func (p *Pair) Toggle() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	old := p.indicator.On()

	var errs []error
	if err := p.relay.Set(old); err != nil {
		errs = append(errs, fmt.Errorf("set relay: %w", err))
	}
	if err := p.indicator.Set(!old); err != nil {
		errs = append(errs, fmt.Errorf("set indicator: %w", err))
	}
	return joinErrors("toggle", errs)
}

// State returns the logical levels of the relay and indicator.
func (p *Pair) State() (relay, indicator bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.relay.On(), p.indicator.On()
}

// Off drives both outputs logically off.
func (p *Pair) Off() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if err := p.relay.Set(false); err != nil {
		errs = append(errs, fmt.Errorf("set relay: %w", err))
	}
	if err := p.indicator.Set(false); err != nil {
		errs = append(errs, fmt.Errorf("set indicator: %w", err))
	}
	return joinErrors("off", errs)
}

// Close releases both outputs.
func (p *Pair) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if err := p.relay.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close relay: %w", err))
	}
	if err := p.indicator.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close indicator: %w", err))
	}
	return joinErrors("close", errs)
}

func joinErrors(op string, errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}
}
