//go:build linux

package output

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// RPIOBank owns the memory-mapped BCM283x GPIO registers used by RPIOOutput.
// Only one bank should be open at a time.
type RPIOBank struct {
	open int
}

// OpenRPIO maps the GPIO registers (/dev/gpiomem).
func OpenRPIO() (*RPIOBank, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open rpio: %w", err)
	}
	return &RPIOBank{}, nil
}

// Output configures a BCM pin as an output, initially logically off.
func (b *RPIOBank) Output(pin int, activeLow bool) *RPIOOutput {
	o := &RPIOOutput{bank: b, pin: rpio.Pin(pin), activeLow: activeLow}
	o.pin.Output()
	o.write(false)
	b.open++
	return o
}

func (b *RPIOBank) release() error {
	b.open--
	if b.open > 0 {
		return nil
	}
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("close rpio: %w", err)
	}
	return nil
}

// RPIOOutput drives a pin through direct register access. Writes cannot fail.
type RPIOOutput struct {
	bank      *RPIOBank
	pin       rpio.Pin
	activeLow bool
	on        bool
}

// Set drives the pin to the logical level.
func (o *RPIOOutput) Set(on bool) error {
	o.write(on)
	return nil
}

func (o *RPIOOutput) write(on bool) {
	o.on = on
	if on != o.activeLow {
		o.pin.High()
	} else {
		o.pin.Low()
	}
}

// On returns the last logical level set.
func (o *RPIOOutput) On() bool {
	return o.on
}

// Close returns the pin to input with pull-down and unmaps the registers once
// every output of the bank is closed.
func (o *RPIOOutput) Close() error {
	o.pin.Input()
	o.pin.PullDown()
	return o.bank.release()
}
