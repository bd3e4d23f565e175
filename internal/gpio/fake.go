package gpio

import (
	"errors"
	"sync"
	"time"
)

// FakeButton is a test double that delivers scripted edges to its handler.
// Edges are serialized, matching the real watcher goroutine.
type FakeButton struct {
	mu      sync.Mutex
	handler EdgeHandler

	// Level is the current logical level (true = pressed).
	Level bool

	// Edges counts delivered edges.
	Edges int

	// Closed tracks if Close was called.
	Closed bool

	// ReadError, if set, will be returned by Pressed.
	ReadError error
}

// NewFakeButton creates a released FakeButton delivering edges to handler.
func NewFakeButton(handler EdgeHandler) *FakeButton {
	return &FakeButton{handler: handler}
}

// Edge sets the level and delivers an edge at ts.
// Edges after Close are dropped.
func (f *FakeButton) Edge(pressed bool, ts time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Closed {
		return
	}
	f.Level = pressed
	f.Edges++
	if f.handler != nil {
		f.handler(pressed, ts)
	}
}

// Press delivers a clean press at start and release after hold.
func (f *FakeButton) Press(start, hold time.Duration) {
	f.Edge(true, start)
	f.Edge(false, start+hold)
}

// Chatter delivers alternating edges spaced by step, starting with pressed,
// and leaves the button at the given final level.
func (f *FakeButton) Chatter(start, step time.Duration, n int, final bool) time.Duration {
	ts := start
	level := true
	for i := 0; i < n; i++ {
		f.Edge(level, ts)
		level = !level
		ts += step
	}
	f.Edge(final, ts)
	return ts
}

// Pressed returns Level.
func (f *FakeButton) Pressed() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ReadError != nil {
		return false, f.ReadError
	}
	if f.Closed {
		return false, errors.New("button closed")
	}
	return f.Level, nil
}

// Close stops edge delivery.
func (f *FakeButton) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
