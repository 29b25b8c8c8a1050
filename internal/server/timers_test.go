package server

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRoundTimerCountsDownAndTimesOut(t *testing.T) {
	notifier := newRecordingNotifier()
	ticker := newManualTicker()
	timer := startRoundTimer("room1", 3, notifier, ticker.factory, zerolog.Nop())

	for i := 0; i < 3; i++ {
		ticker.tick(t)
	}
	select {
	case <-timer.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("timer did not finish")
	}

	ticks := notifier.named(eventTick)
	if len(ticks) != 3 {
		t.Fatalf("expected 3 ticks, got %d", len(ticks))
	}
	for i, ev := range ticks {
		want := 2 - i
		if got := ev.Payload.(tickPayload).SecondsRemaining; got != want {
			t.Fatalf("tick %d: expected %d remaining, got %d", i, want, got)
		}
		if ev.Target != "room:room1" {
			t.Fatalf("tick %d sent to %s", i, ev.Target)
		}
	}
	if notifier.count(eventRoundTimeout) != 1 {
		t.Fatalf("expected one round_timeout")
	}
	if !ticker.isStopped() {
		t.Fatalf("expected ticker released after timeout")
	}
	timer.Stop()
}

func TestRoundTimerStopHaltsEvents(t *testing.T) {
	notifier := newRecordingNotifier()
	ticker := newManualTicker()
	timer := startRoundTimer("room1", 10, notifier, ticker.factory, zerolog.Nop())

	ticker.tick(t)
	notifier.waitFor(t, eventTick, 1, 2*time.Second)
	timer.Stop()
	timer.Stop()

	select {
	case ticker.ch <- time.Now():
		t.Fatalf("stopped timer accepted a tick")
	case <-time.After(50 * time.Millisecond):
	}
	if notifier.count(eventTick) != 1 || notifier.count(eventRoundTimeout) != 0 {
		t.Fatalf("unexpected events after stop: %d ticks, %d timeouts",
			notifier.count(eventTick), notifier.count(eventRoundTimeout))
	}
}

func TestRoundTimerDefaultsBudget(t *testing.T) {
	notifier := newRecordingNotifier()
	ticker := newManualTicker()
	timer := startRoundTimer("room1", 0, notifier, ticker.factory, zerolog.Nop())
	defer timer.Stop()

	ticker.tick(t)
	notifier.waitFor(t, eventTick, 1, 2*time.Second)
	ev, _ := notifier.last(eventTick)
	if got := ev.Payload.(tickPayload).SecondsRemaining; got != defaultDrawSeconds-1 {
		t.Fatalf("expected %d remaining, got %d", defaultDrawSeconds-1, got)
	}
}

func TestNilRoundTimerStop(t *testing.T) {
	var timer *RoundTimer
	timer.Stop()
}
