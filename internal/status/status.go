// Package status provides a thread-safe status tracker for the press-switch daemon.
// It is read by the HTTP handlers and by lifecycle MQTT events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/press-switch/internal/logic"
)

// NetworkInfo contains network state as written by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	DebounceMs   int64
	LongPressMs  int64
	ClockModulus uint64
	HeartbeatMs  int64
	Broker       string
	HTTPAddr     string
	ButtonPin    int
	RelayPin     int
	IndicatorPin int
	OutputDriver string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Relay         logic.State
	Indicator     logic.State
	Counts        logic.Counts
	Last          *logic.Event
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// SetOutputs sets the logical output levels.
func (t *Tracker) SetOutputs(relay, indicator bool) {
	t.mu.Lock()
	t.snap.Relay = logic.StateOf(relay)
	t.snap.Indicator = logic.StateOf(indicator)
	t.mu.Unlock()
}

// Update sets press counts and the most recent press.
// Called from the run loop after every reported press.
func (t *Tracker) Update(counts logic.Counts, last *logic.Event) {
	t.mu.Lock()
	t.snap.Counts = counts
	t.snap.Last = last
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	if s.Last != nil {
		last := *s.Last
		s.Last = &last
	}
	s.Now = time.Now()
	return s
}
