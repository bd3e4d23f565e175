package logic

import "time"

// Stats accumulates press counts and schedules heartbeats.
// It is owned by the run loop goroutine, not the edge handler.
type Stats struct {
	startTime     time.Time
	lastHeartbeat time.Time
	counts        Counts
	last          *Event
}

// NewStats creates a Stats. The startTime is used for calculating uptime in
// heartbeat events.
func NewStats(startTime time.Time) *Stats {
	return &Stats{
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Record counts a classified press.
func (s *Stats) Record(e Event) {
	switch e.Type {
	case EventBounce:
		s.counts.Bounce++
	case EventShortPress:
		s.counts.ShortPress++
	case EventLongPress:
		s.counts.LongPress++
	}
	last := e
	s.last = &last
}

// SetDropped records the total number of events the report queue discarded.
func (s *Stats) SetDropped(n int) {
	s.counts.Dropped = n
}

// Counts returns a copy of the current counts.
func (s *Stats) Counts() Counts {
	return s.counts
}

// Last returns the most recently recorded event, or nil.
func (s *Stats) Last() *Event {
	if s.last == nil {
		return nil
	}
	e := *s.last
	return &e
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed or
// if interval is <= 0 (disabled).
func (s *Stats) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(s.lastHeartbeat) < interval {
		return nil
	}

	s.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(s.startTime),
		Counts:    s.counts,
	}
}
