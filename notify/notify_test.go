package notify

import (
	"testing"
	"time"
)

func TestShowAndVisibility(t *testing.T) {
	n := NewNotification()

	if n.IsVisible() {
		t.Error("visible before any message")
	}

	n.ShowDefault("state saved")
	if !n.IsVisible() {
		t.Error("not visible after Show")
	}
	if n.Message() != "state saved" {
		t.Errorf("message = %q, want state saved", n.Message())
	}
}

func TestClear(t *testing.T) {
	n := NewNotification()
	n.ShowShort("loaded")
	n.Clear()
	if n.IsVisible() {
		t.Error("visible after Clear")
	}
}

func TestExpiry(t *testing.T) {
	n := NewNotification()
	n.Show("blink", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if n.IsVisible() {
		t.Error("visible after duration elapsed")
	}
}

func TestSinkObservesMessages(t *testing.T) {
	n := NewNotification()

	var got []string
	n.SetSink(func(msg string) { got = append(got, msg) })

	n.ShowDefault("state saved")
	n.ShowShort("loaded")

	if len(got) != 2 || got[0] != "state saved" || got[1] != "loaded" {
		t.Errorf("sink saw %v", got)
	}
}
