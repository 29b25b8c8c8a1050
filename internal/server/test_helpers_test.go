package server

import (
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordedEvent struct {
	Target  string
	Event   string
	Payload any
}

// recordingNotifier stands in for the websocket hub in core tests.
type recordingNotifier struct {
	mu      sync.Mutex
	groups  map[string]map[string]struct{}
	events  []recordedEvent
	changed chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		groups:  make(map[string]map[string]struct{}),
		changed: make(chan struct{}, 1024),
	}
}

func (n *recordingNotifier) Subscribe(roomID, connID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.groups[roomID] == nil {
		n.groups[roomID] = make(map[string]struct{})
	}
	n.groups[roomID][connID] = struct{}{}
}

func (n *recordingNotifier) Unsubscribe(roomID, connID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.groups[roomID], connID)
}

func (n *recordingNotifier) Send(connID, event string, payload any) {
	n.record(recordedEvent{Target: "conn:" + connID, Event: event, Payload: payload})
}

func (n *recordingNotifier) Broadcast(roomID, event string, payload any) {
	n.record(recordedEvent{Target: "room:" + roomID, Event: event, Payload: payload})
}

func (n *recordingNotifier) record(ev recordedEvent) {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
	select {
	case n.changed <- struct{}{}:
	default:
	}
}

func (n *recordingNotifier) named(event string) []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]recordedEvent, 0)
	for _, ev := range n.events {
		if ev.Event == event {
			out = append(out, ev)
		}
	}
	return out
}

func (n *recordingNotifier) last(event string) (recordedEvent, bool) {
	events := n.named(event)
	if len(events) == 0 {
		return recordedEvent{}, false
	}
	return events[len(events)-1], true
}

func (n *recordingNotifier) count(event string) int {
	return len(n.named(event))
}

func (n *recordingNotifier) waitFor(t *testing.T, event string, want int, within time.Duration) {
	t.Helper()
	deadline := time.After(within)
	for n.count(event) < want {
		select {
		case <-n.changed:
		case <-deadline:
			t.Fatalf("timed out waiting for %d %s events, saw %d", want, event, n.count(event))
		}
	}
}

// manualTicker hands the round timer a channel the test drives.
type manualTicker struct {
	mu      sync.Mutex
	ch      chan time.Time
	stopped bool
	created int
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) factory(time.Duration) (<-chan time.Time, func()) {
	m.mu.Lock()
	m.created++
	m.stopped = false
	m.mu.Unlock()
	return m.ch, func() {
		m.mu.Lock()
		m.stopped = true
		m.mu.Unlock()
	}
}

func (m *manualTicker) tick(t *testing.T) {
	t.Helper()
	select {
	case m.ch <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatalf("round timer did not accept a tick")
	}
}

func (m *manualTicker) isStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

func newTestRegistry(t *testing.T, opts ...RegistryOption) (*RoomRegistry, *recordingNotifier, *manualTicker) {
	t.Helper()
	notifier := newRecordingNotifier()
	ticker := newManualTicker()
	opts = append([]RegistryOption{withTicker(ticker.factory)}, opts...)
	registry := NewRoomRegistry(notifier, zerolog.Nop(), opts...)
	t.Cleanup(registry.Close)
	return registry, notifier, ticker
}

// seatPlayers creates a room hosted by ids[0] and joins the rest in order.
func seatPlayers(t *testing.T, registry *RoomRegistry, ids ...string) string {
	t.Helper()
	roomID, err := registry.CreateRoom(ids[0], "name-"+ids[0])
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	for _, id := range ids[1:] {
		if err := registry.JoinRoom(id, roomID, "name-"+id); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	return roomID
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}
