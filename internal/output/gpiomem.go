//go:build linux

package output

import (
	"fmt"

	"github.com/warthog618/gpio"
)

// MemBank owns the /dev/gpiomem mapping used by MemOutput. It serves the
// same boards as RPIOBank through a different register driver.
type MemBank struct {
	open int
}

// OpenGPIOMem maps the GPIO registers.
func OpenGPIOMem() (*MemBank, error) {
	if err := gpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpiomem: %w", err)
	}
	return &MemBank{}, nil
}

// Output configures a BCM pin as an output, initially logically off.
func (b *MemBank) Output(pin int, activeLow bool) *MemOutput {
	o := &MemOutput{bank: b, pin: gpio.NewPin(pin), activeLow: activeLow}
	o.pin.Output()
	o.write(false)
	b.open++
	return o
}

func (b *MemBank) release() error {
	b.open--
	if b.open > 0 {
		return nil
	}
	if err := gpio.Close(); err != nil {
		return fmt.Errorf("close gpiomem: %w", err)
	}
	return nil
}

// MemOutput drives a pin through the mapped registers.
type MemOutput struct {
	bank      *MemBank
	pin       *gpio.Pin
	activeLow bool
	on        bool
}

// Set drives the pin to the logical level.
func (o *MemOutput) Set(on bool) error {
	o.write(on)
	return nil
}

func (o *MemOutput) write(on bool) {
	o.on = on
	if on != o.activeLow {
		o.pin.High()
	} else {
		o.pin.Low()
	}
}

// On returns the last logical level set.
func (o *MemOutput) On() bool {
	return o.on
}

// Close parks the pin as a pulled-down input and unmaps the registers after
// the bank's last output.
func (o *MemOutput) Close() error {
	o.pin.Input()
	o.pin.PullDown()
	return o.bank.release()
}
