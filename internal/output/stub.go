//go:build !linux

package output

import "errors"

// LineOutput is not available on non-Linux platforms.
type LineOutput struct{}

// NewLineOutput returns an error on non-Linux platforms.
func NewLineOutput(chip string, offset int, activeLow bool) (*LineOutput, error) {
	return nil, errors.New("output: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (o *LineOutput) Set(on bool) error {
	return errors.New("output: not supported")
}

// On always reports off on non-Linux platforms.
func (o *LineOutput) On() bool {
	return false
}

// Close is not implemented on non-Linux platforms.
func (o *LineOutput) Close() error {
	return nil
}

// RPIOBank is not available on non-Linux platforms.
type RPIOBank struct{}

// OpenRPIO returns an error on non-Linux platforms.
func OpenRPIO() (*RPIOBank, error) {
	return nil, errors.New("output: rpio not supported on this platform (requires Linux)")
}

// Output is not implemented on non-Linux platforms.
func (b *RPIOBank) Output(pin int, activeLow bool) *RPIOOutput {
	return &RPIOOutput{}
}

// RPIOOutput is not available on non-Linux platforms.
type RPIOOutput struct{}

// Set is not implemented on non-Linux platforms.
func (o *RPIOOutput) Set(on bool) error {
	return errors.New("output: rpio not supported")
}

// On always reports off on non-Linux platforms.
func (o *RPIOOutput) On() bool {
	return false
}

// Close is not implemented on non-Linux platforms.
func (o *RPIOOutput) Close() error {
	return nil
}

// MemBank is not available on non-Linux platforms.
type MemBank struct{}

// OpenGPIOMem returns an error on non-Linux platforms.
func OpenGPIOMem() (*MemBank, error) {
	return nil, errors.New("output: gpiomem not supported on this platform (requires Linux)")
}

// Output is not implemented on non-Linux platforms.
func (b *MemBank) Output(pin int, activeLow bool) *MemOutput {
	return &MemOutput{}
}

// MemOutput is not available on non-Linux platforms.
type MemOutput struct{}

// Set is not implemented on non-Linux platforms.
func (o *MemOutput) Set(on bool) error {
	return errors.New("output: gpiomem not supported")
}

// On always reports off on non-Linux platforms.
func (o *MemOutput) On() bool {
	return false
}

// Close is not implemented on non-Linux platforms.
func (o *MemOutput) Close() error {
	return nil
}
