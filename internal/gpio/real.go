//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"
)

// RealButton watches a button on the Linux GPIO character device.
//
// The button closes to ground when pressed, so the line is requested with a
// pull-up and as active-low: logical 1 means pressed.
type RealButton struct {
	line    atomic.Pointer[gpiocdev.Line]
	handler EdgeHandler
}

// NewRealButton requests offset on chip and delivers both edges to handler.
// gpiocdev runs the handler on a single watcher goroutine for the line.
func NewRealButton(chip string, offset int, handler EdgeHandler) (*RealButton, error) {
	b := &RealButton{handler: handler}

	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput,
		gpiocdev.AsActiveLow,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(b.handleEvent))
	if err != nil {
		return nil, fmt.Errorf("request button pin %d: %w", offset, err)
	}
	b.line.Store(line)

	return b, nil
}

// handleEvent re-reads the line rather than trusting the edge type, so
// further bounces between the edge and its servicing are reconciled.
func (b *RealButton) handleEvent(evt gpiocdev.LineEvent) {
	pressed := evt.Type == gpiocdev.LineEventRisingEdge
	if line := b.line.Load(); line != nil {
		if v, err := line.Value(); err == nil {
			pressed = v == 1
		}
	}
	if b.handler != nil {
		b.handler(pressed, evt.Timestamp)
	}
}

// Pressed reads the current logical level.
func (b *RealButton) Pressed() (bool, error) {
	line := b.line.Load()
	if line == nil {
		return false, fmt.Errorf("button closed")
	}
	v, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin %d: %w", line.Offset(), err)
	}
	return v == 1, nil
}

// Close releases the line.
// Reconfigures it to input with pull-down (matching Pi boot defaults) before
// closing to ensure clean state for system shutdown/reboot.
func (b *RealButton) Close() error {
	line := b.line.Swap(nil)
	if line == nil {
		return nil
	}

	var errs []error
	if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure button pin: %w", err))
	}
	if err := line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close button pin: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
