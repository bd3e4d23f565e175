// Package clock provides a wrapping millisecond counter and wraparound-safe
// duration arithmetic. It has no notion of wall time.
package clock

import "time"

// Ticks is a millisecond counter value in the range [0, Modulus).
type Ticks uint32

// DefaultModulus is the wrap period in milliseconds (2^30, about 12.4 days).
const DefaultModulus uint64 = 1 << 30

// MaxModulus is the largest period a Ticks value can represent.
const MaxModulus uint64 = 1 << 32

// Clock describes a counter that wraps to zero every Modulus milliseconds.
// The zero value uses DefaultModulus.
type Clock struct {
	Modulus uint64
}

// New returns a Clock wrapping at modulus milliseconds.
// A modulus above MaxModulus is clamped to MaxModulus; 0 selects
// DefaultModulus.
func New(modulus uint64) Clock {
	if modulus > MaxModulus {
		modulus = MaxModulus
	}
	return Clock{Modulus: modulus}
}

func (c Clock) period() uint64 {
	if c.Modulus == 0 {
		return DefaultModulus
	}
	return c.Modulus
}

// Diff returns how far now is ahead of start, assuming at most one wrap
// happened in between: (now - start) mod M.
func (c Clock) Diff(now, start Ticks) time.Duration {
	m := c.period()
	d := (uint64(now)%m + m - uint64(start)%m) % m
	return time.Duration(d) * time.Millisecond
}

// Add returns t advanced by d, wrapped into range. Sub-millisecond parts of d
// are dropped.
func (c Clock) Add(t Ticks, d time.Duration) Ticks {
	m := c.period()
	ms := uint64(d/time.Millisecond) % m
	return Ticks((uint64(t)%m + ms) % m)
}

// FromDuration converts a monotonic offset (e.g. time since boot, as carried
// by kernel GPIO events) into a counter value.
func (c Clock) FromDuration(d time.Duration) Ticks {
	if d < 0 {
		d = 0
	}
	return Ticks(uint64(d/time.Millisecond) % c.period())
}

// Monotonic returns a function that reads the process monotonic clock as
// Ticks, counting from the moment Monotonic was called.
func (c Clock) Monotonic() func() Ticks {
	start := time.Now()
	return func() Ticks {
		return c.FromDuration(time.Since(start))
	}
}
