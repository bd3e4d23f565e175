package output

// FakeOutput is a test double that records logical writes.
type FakeOutput struct {
	// Level is the current logical level.
	Level bool

	// Writes records every level passed to Set, in order.
	Writes []bool

	// SetError, if set, will be returned by Set. Level is still updated.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeOutput creates a FakeOutput starting at the given level.
func NewFakeOutput(level bool) *FakeOutput {
	return &FakeOutput{Level: level}
}

// Set records the write and updates Level.
func (f *FakeOutput) Set(on bool) error {
	f.Level = on
	f.Writes = append(f.Writes, on)
	return f.SetError
}

// On returns Level.
func (f *FakeOutput) On() bool {
	return f.Level
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.Closed = true
	return nil
}
