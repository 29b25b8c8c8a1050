package server

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultDrawSeconds = 60

// tickerFunc returns a tick channel and its stop function. Tests swap in a
// manually driven channel.
type tickerFunc func(d time.Duration) (<-chan time.Time, func())

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(d)
	return ticker.C, ticker.Stop
}

// RoundTimer counts the drawing budget down once per second. It only
// broadcasts; it never changes the room's phase.
type RoundTimer struct {
	cancel   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func startRoundTimer(roomID string, seconds int, notifier Notifier, newTicker tickerFunc, logger zerolog.Logger) *RoundTimer {
	if seconds <= 0 {
		seconds = defaultDrawSeconds
	}
	if newTicker == nil {
		newTicker = systemTicker
	}
	timer := &RoundTimer{
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
	}
	ticks, stop := newTicker(time.Second)
	go func() {
		defer close(timer.done)
		defer stop()
		remaining := seconds
		for {
			select {
			case <-timer.cancel:
				return
			case <-ticks:
			}
			select {
			case <-timer.cancel:
				return
			default:
			}
			remaining--
			notifier.Broadcast(roomID, eventTick, tickPayload{SecondsRemaining: remaining})
			if remaining <= 0 {
				notifier.Broadcast(roomID, eventRoundTimeout, struct{}{})
				logger.Info().Str("room_id", roomID).Int("seconds", seconds).Msg("round timer expired")
				return
			}
		}
	}()
	return timer
}

// Stop cancels the countdown and waits for its goroutine, so no tick is
// emitted after Stop returns. Safe on a nil or finished timer.
func (t *RoundTimer) Stop() {
	if t == nil {
		return
	}
	t.stopOnce.Do(func() {
		close(t.cancel)
	})
	<-t.done
}

func (t *RoundTimer) Done() <-chan struct{} {
	return t.done
}
