package logic

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/press-switch/internal/clock"
	"github.com/sweeney/press-switch/internal/output"
)

// setupClassifier returns a classifier with default thresholds wired to a
// fake relay/indicator pair, both starting off.
func setupClassifier(t *testing.T) (*Classifier, *output.FakeOutput, *output.FakeOutput) {
	t.Helper()
	relay := output.NewFakeOutput(false)
	indicator := output.NewFakeOutput(false)
	c := NewClassifier(DefaultThresholds, clock.New(clock.DefaultModulus), output.NewPair(relay, indicator))
	return c, relay, indicator
}

// press drives a full press/release cycle starting at start.
func press(t *testing.T, c *Classifier, start clock.Ticks, hold time.Duration) Event {
	t.Helper()
	if _, ok := c.OnEdge(true, start); ok {
		t.Fatal("press edge should not emit an event")
	}
	e, ok := c.OnEdge(false, c.clock.Add(start, hold))
	if !ok {
		t.Fatal("release edge should emit an event")
	}
	return e
}

func TestNewClassifier(t *testing.T) {
	c, _, _ := setupClassifier(t)
	if c == nil {
		t.Fatal("NewClassifier returned nil")
	}
	if got := c.Thresholds(); got != DefaultThresholds {
		t.Errorf("expected default thresholds, got %+v", got)
	}
	if _, pending := c.Pending(); pending {
		t.Error("new classifier should be idle")
	}
}

func TestClassifyPartition(t *testing.T) {
	c, _, _ := setupClassifier(t)

	tests := []struct {
		hold time.Duration
		want EventType
	}{
		{0, EventBounce},
		{1 * time.Millisecond, EventBounce},
		{10 * time.Millisecond, EventBounce},
		{20 * time.Millisecond, EventBounce},
		{21 * time.Millisecond, EventShortPress},
		{150 * time.Millisecond, EventShortPress},
		{600 * time.Millisecond, EventShortPress},
		{601 * time.Millisecond, EventLongPress},
		{900 * time.Millisecond, EventLongPress},
		{time.Hour, EventLongPress},
	}

	for _, tt := range tests {
		if got := c.Classify(tt.hold); got != tt.want {
			t.Errorf("Classify(%v): expected %s, got %s", tt.hold, tt.want, got)
		}
	}
}

func TestClassifyExactlyOneBranch(t *testing.T) {
	c, _, _ := setupClassifier(t)
	seen := map[EventType]int{}
	for ms := 0; ms <= 1000; ms++ {
		seen[c.Classify(time.Duration(ms)*time.Millisecond)]++
	}
	if seen[EventBounce] != 21 {
		t.Errorf("expected 21 bounce durations (0..20ms), got %d", seen[EventBounce])
	}
	if seen[EventShortPress] != 580 {
		t.Errorf("expected 580 short durations (21..600ms), got %d", seen[EventShortPress])
	}
	if seen[EventLongPress] != 400 {
		t.Errorf("expected 400 long durations (601..1000ms), got %d", seen[EventLongPress])
	}
}

func TestReleaseWhileIdleIsNoop(t *testing.T) {
	c, relay, indicator := setupClassifier(t)

	for i := 0; i < 3; i++ {
		if _, ok := c.OnEdge(false, clock.Ticks(100*i)); ok {
			t.Errorf("iteration %d: release while idle should not emit", i)
		}
	}
	if _, pending := c.Pending(); pending {
		t.Error("release while idle should not start a press")
	}
	if len(relay.Writes) != 0 || len(indicator.Writes) != 0 {
		t.Error("release while idle should not touch outputs")
	}
}

func TestPressWhileHeldIsNoop(t *testing.T) {
	c, _, _ := setupClassifier(t)

	c.OnEdge(true, 1000)
	for _, now := range []clock.Ticks{1002, 1005, 1100} {
		if _, ok := c.OnEdge(true, now); ok {
			t.Errorf("press at %d while held should not emit", now)
		}
	}

	start, pending := c.Pending()
	if !pending {
		t.Fatal("expected press still pending")
	}
	if start != 1000 {
		t.Errorf("pending start should stay at first edge (1000), got %d", start)
	}

	// Hold is measured from the first press edge, not the bounces.
	e, ok := c.OnEdge(false, 1150)
	if !ok {
		t.Fatal("expected event on release")
	}
	if e.Hold != 150*time.Millisecond {
		t.Errorf("expected hold 150ms, got %v", e.Hold)
	}
}

func TestScenarioBounce(t *testing.T) {
	c, relay, indicator := setupClassifier(t)

	e := press(t, c, 5000, 10*time.Millisecond)
	if e.Type != EventBounce {
		t.Errorf("expected BOUNCE, got %s", e.Type)
	}
	if e.Hold != 10*time.Millisecond {
		t.Errorf("expected hold 10ms, got %v", e.Hold)
	}
	if relay.Level || indicator.Level {
		t.Errorf("outputs should be unchanged, got relay=%v indicator=%v", relay.Level, indicator.Level)
	}
	if len(relay.Writes) != 0 || len(indicator.Writes) != 0 {
		t.Error("bounce should not write outputs")
	}
	if e.Relay != StateOff || e.Indicator != StateOff {
		t.Errorf("event should report outputs OFF/OFF, got %s/%s", e.Relay, e.Indicator)
	}
	if _, pending := c.Pending(); pending {
		t.Error("classifier should be idle after release")
	}
}

func TestScenarioShortPress(t *testing.T) {
	c, relay, indicator := setupClassifier(t)

	e := press(t, c, 5000, 150*time.Millisecond)
	if e.Type != EventShortPress {
		t.Errorf("expected SHORT_PRESS, got %s", e.Type)
	}
	if e.Hold != 150*time.Millisecond {
		t.Errorf("expected hold 150ms, got %v", e.Hold)
	}
	if relay.Level {
		t.Error("relay should take the old indicator level (off)")
	}
	if !indicator.Level {
		t.Error("indicator should flip on")
	}
	if e.Relay != StateOff || e.Indicator != StateOn {
		t.Errorf("event should report relay OFF indicator ON, got %s/%s", e.Relay, e.Indicator)
	}
	if e.ToggleErr != nil {
		t.Errorf("unexpected toggle error: %v", e.ToggleErr)
	}
	if e.At != 5150 {
		t.Errorf("expected event at 5150, got %d", e.At)
	}
}

func TestScenarioLongPress(t *testing.T) {
	c, relay, indicator := setupClassifier(t)

	e := press(t, c, 5000, 900*time.Millisecond)
	if e.Type != EventLongPress {
		t.Errorf("expected LONG_PRESS, got %s", e.Type)
	}
	if e.Hold != 900*time.Millisecond {
		t.Errorf("expected hold 900ms, got %v", e.Hold)
	}
	if len(relay.Writes) != 0 || len(indicator.Writes) != 0 {
		t.Error("long press should not write outputs")
	}
}

func TestScenarioTwoShortPresses(t *testing.T) {
	c, relay, indicator := setupClassifier(t)

	press(t, c, 5000, 150*time.Millisecond)
	press(t, c, 6000, 150*time.Millisecond)

	if indicator.Level {
		t.Error("indicator should be off after two short presses")
	}
	if !relay.Level {
		t.Error("relay should be on after two short presses")
	}
}

func TestPressAcrossClockWrap(t *testing.T) {
	tests := []struct {
		name    string
		modulus uint64
	}{
		{"small modulus", 1000},
		{"default modulus", clock.DefaultModulus},
		{"full 32-bit", clock.MaxModulus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(DefaultThresholds, clock.New(tt.modulus), nil)
			c.OnEdge(true, clock.Ticks(tt.modulus-5))
			e, ok := c.OnEdge(false, 3)
			if !ok {
				t.Fatal("expected event")
			}
			if e.Hold != 8*time.Millisecond {
				t.Errorf("expected hold 8ms across wrap, got %v", e.Hold)
			}
			if e.Type != EventBounce {
				t.Errorf("expected BOUNCE for 8ms hold, got %s", e.Type)
			}
		})
	}
}

func TestShortPressAcrossClockWrap(t *testing.T) {
	c, _, indicator := setupClassifier(t)

	e := press(t, c, clock.Ticks(clock.DefaultModulus-50), 150*time.Millisecond)
	if e.Type != EventShortPress {
		t.Errorf("expected SHORT_PRESS, got %s (hold %v)", e.Type, e.Hold)
	}
	if e.At != 100 {
		t.Errorf("expected release at wrapped tick 100, got %d", e.At)
	}
	if !indicator.Level {
		t.Error("indicator should flip on")
	}
}

func TestDuplicateReleaseIsIdempotent(t *testing.T) {
	c, relay, indicator := setupClassifier(t)

	press(t, c, 1000, 150*time.Millisecond)
	if _, ok := c.OnEdge(false, 1151); ok {
		t.Error("second release should not emit")
	}
	if len(relay.Writes) != 1 || len(indicator.Writes) != 1 {
		t.Errorf("expected a single toggle, got %d relay and %d indicator writes", len(relay.Writes), len(indicator.Writes))
	}
}

func TestBouncyPressSequence(t *testing.T) {
	c, _, indicator := setupClassifier(t)

	// Contact chatter on press and release around a 200ms hold.
	edges := []struct {
		pressed bool
		at      clock.Ticks
	}{
		{true, 1000},
		{false, 1002}, // bounce, resolves as BOUNCE
		{true, 1003},
		{true, 1004},
		{false, 1203}, // real release
		{false, 1205},
		{true, 1206}, // release bounce re-arms
		{false, 1207},
	}

	var events []Event
	for _, edge := range edges {
		if e, ok := c.OnEdge(edge.pressed, edge.at); ok {
			events = append(events, e)
		}
	}

	want := []EventType{EventBounce, EventShortPress, EventBounce}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(events), events)
	}
	for i := range want {
		if events[i].Type != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], events[i].Type)
		}
	}
	if events[1].Hold != 200*time.Millisecond {
		t.Errorf("expected short press hold 200ms, got %v", events[1].Hold)
	}
	if !indicator.Level {
		t.Error("exactly one toggle should have happened")
	}
}

func TestToggleErrorAttachedToEvent(t *testing.T) {
	relay := output.NewFakeOutput(false)
	relay.SetError = errors.New("relay stuck")
	indicator := output.NewFakeOutput(false)
	c := NewClassifier(DefaultThresholds, clock.Clock{}, output.NewPair(relay, indicator))

	c.OnEdge(true, 0)
	e, _ := c.OnEdge(false, 100)
	if e.Type != EventShortPress {
		t.Fatalf("expected SHORT_PRESS, got %s", e.Type)
	}
	if e.ToggleErr == nil {
		t.Error("expected toggle error on event")
	}
	if !indicator.Level {
		t.Error("indicator should still toggle")
	}
}

func TestNilToggler(t *testing.T) {
	c := NewClassifier(DefaultThresholds, clock.Clock{}, nil)
	c.OnEdge(true, 0)
	e, ok := c.OnEdge(false, 100)
	if !ok || e.Type != EventShortPress {
		t.Fatalf("expected SHORT_PRESS, got %+v (ok=%v)", e, ok)
	}
	if e.Relay != "" || e.Indicator != "" {
		t.Errorf("expected no output state without outputs, got %s/%s", e.Relay, e.Indicator)
	}
}

func TestCustomThresholds(t *testing.T) {
	c := NewClassifier(Thresholds{Debounce: 50 * time.Millisecond, LongPress: 2 * time.Second}, clock.Clock{}, nil)

	if got := c.Classify(40 * time.Millisecond); got != EventBounce {
		t.Errorf("40ms: expected BOUNCE, got %s", got)
	}
	if got := c.Classify(900 * time.Millisecond); got != EventShortPress {
		t.Errorf("900ms: expected SHORT_PRESS, got %s", got)
	}
	if got := c.Classify(2001 * time.Millisecond); got != EventLongPress {
		t.Errorf("2001ms: expected LONG_PRESS, got %s", got)
	}
}
