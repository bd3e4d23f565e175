//go:build linux

package output

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// LineOutput drives an output through the Linux GPIO character device.
type LineOutput struct {
	line *gpiocdev.Line
	on   bool
}

// NewLineOutput requests offset on chip as an output, initially logically off.
// With activeLow set, logical on drives the pin low.
func NewLineOutput(chip string, offset int, activeLow bool) (*LineOutput, error) {
	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	line, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", offset, err)
	}
	return &LineOutput{line: line}, nil
}

// Set drives the line to the logical level.
func (o *LineOutput) Set(on bool) error {
	o.on = on
	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("write pin %d: %w", o.line.Offset(), err)
	}
	return nil
}

// On returns the last logical level set.
func (o *LineOutput) On() bool {
	return o.on
}

// Close releases the line.
// Reconfigures it as an input with pull-down (matching Pi boot defaults) first,
// so the relay is not left energized by a floating pin after exit.
func (o *LineOutput) Close() error {
	var errs []error
	if err := o.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", o.line.Offset(), err))
	}
	if err := o.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pin %d: %w", o.line.Offset(), err))
	}
	return joinErrors("close", errs)
}
