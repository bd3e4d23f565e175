package gpio

import (
	"errors"
	"testing"
	"time"
)

type edge struct {
	pressed bool
	ts      time.Duration
}

func recordEdges() (*[]edge, EdgeHandler) {
	var got []edge
	return &got, func(pressed bool, ts time.Duration) {
		got = append(got, edge{pressed, ts})
	}
}

func TestFakeButtonPress(t *testing.T) {
	got, h := recordEdges()
	f := NewFakeButton(h)

	f.Press(time.Second, 150*time.Millisecond)

	want := []edge{
		{true, time.Second},
		{false, time.Second + 150*time.Millisecond},
	}
	if len(*got) != len(want) {
		t.Fatalf("expected %d edges, got %d", len(want), len(*got))
	}
	for i := range want {
		if (*got)[i] != want[i] {
			t.Errorf("edge %d: expected %+v, got %+v", i, want[i], (*got)[i])
		}
	}
	if f.Edges != 2 {
		t.Errorf("expected Edges=2, got %d", f.Edges)
	}
}

func TestFakeButtonChatter(t *testing.T) {
	got, h := recordEdges()
	f := NewFakeButton(h)

	end := f.Chatter(0, time.Millisecond, 4, true)
	if end != 4*time.Millisecond {
		t.Errorf("expected chatter to end at 4ms, got %v", end)
	}

	levels := []bool{true, false, true, false, true}
	if len(*got) != len(levels) {
		t.Fatalf("expected %d edges, got %d", len(levels), len(*got))
	}
	for i, want := range levels {
		if (*got)[i].pressed != want {
			t.Errorf("edge %d: expected pressed=%v", i, want)
		}
	}
	if pressed, _ := f.Pressed(); !pressed {
		t.Error("expected button left pressed")
	}
}

func TestFakeButtonPressed(t *testing.T) {
	f := NewFakeButton(nil)

	pressed, err := f.Pressed()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pressed {
		t.Error("new button should be released")
	}

	f.Edge(true, 0)
	if pressed, _ := f.Pressed(); !pressed {
		t.Error("expected pressed after edge")
	}
}

func TestFakeButtonReadError(t *testing.T) {
	f := NewFakeButton(nil)
	f.ReadError = errors.New("simulated error")

	_, err := f.Pressed()
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeButtonClose(t *testing.T) {
	got, h := recordEdges()
	f := NewFakeButton(h)

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Edge(true, 0)
	if len(*got) != 0 {
		t.Error("edges after Close should be dropped")
	}
	if _, err := f.Pressed(); err == nil {
		t.Error("expected error reading a closed button")
	}
}
