// Package report carries classified presses from the edge handler to the
// run loop. The handler side never blocks: when the queue is full the event
// is dropped and counted.
package report

import (
	"sync/atomic"
	"time"

	"github.com/sweeney/press-switch/internal/clock"
	"github.com/sweeney/press-switch/internal/gpio"
	"github.com/sweeney/press-switch/internal/logic"
)

// DefaultQueueSize is enough for a burst of bounce reports from a noisy contact.
const DefaultQueueSize = 64

// Reporter is a bounded single-producer queue of press events.
type Reporter struct {
	ch      chan logic.Event
	dropped atomic.Int64
}

// New creates a Reporter holding up to size pending events.
func New(size int) *Reporter {
	if size < 1 {
		size = 1
	}
	return &Reporter{ch: make(chan logic.Event, size)}
}

// Report queues e without blocking.
func (r *Reporter) Report(e logic.Event) {
	select {
	case r.ch <- e:
	default:
		r.dropped.Add(1)
	}
}

// Events returns the queue for the consuming goroutine.
func (r *Reporter) Events() <-chan logic.Event {
	return r.ch
}

// Dropped returns how many events were discarded because the queue was full.
func (r *Reporter) Dropped() int {
	return int(r.dropped.Load())
}

// EdgeHandler binds a classifier to button edges. Edge timestamps are
// converted to wrapping ticks with clk, and every classified press is stamped
// with wall time and queued on r.
func EdgeHandler(c *logic.Classifier, clk clock.Clock, r *Reporter, now func() time.Time) gpio.EdgeHandler {
	return func(pressed bool, ts time.Duration) {
		e, ok := c.OnEdge(pressed, clk.FromDuration(ts))
		if !ok {
			return
		}
		e.Timestamp = now()
		r.Report(e)
	}
}
