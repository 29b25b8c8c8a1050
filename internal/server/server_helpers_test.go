package server

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"telephone-draw/internal/config"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type wsEnvelope struct {
	Event   string          `json:"event"`
	Ack     *int64          `json:"ack"`
	OK      *bool           `json:"ok"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type wsTestClient struct {
	t       *testing.T
	conn    *websocket.Conn
	id      string
	nextAck int64
}

func startTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(config.Default(), zerolog.Nop())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return srv, ts
}

func doRequest(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

// dialWS connects and consumes the connected event.
func dialWS(t *testing.T, ts *httptest.Server) *wsTestClient {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	client := &wsTestClient{t: t, conn: conn}

	msg := client.read(5 * time.Second)
	if msg.Event != eventConnected {
		t.Fatalf("expected connected event first, got %s", msg.Event)
	}
	var payload connectedPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.ConnectionID == "" {
		t.Fatalf("bad connected payload %s: %v", msg.Data, err)
	}
	client.id = payload.ConnectionID
	return client
}

func (c *wsTestClient) read(timeout time.Duration) wsEnvelope {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	_, payload, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("read websocket message: %v", err)
	}
	var msg wsEnvelope
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.t.Fatalf("decode websocket message %s: %v", payload, err)
	}
	return msg
}

func (c *wsTestClient) emit(event string, data any) {
	c.t.Helper()
	if err := c.conn.WriteJSON(map[string]any{"event": event, "data": data}); err != nil {
		c.t.Fatalf("write %s: %v", event, err)
	}
}

// call sends an event with an ack id and waits for the matching ack,
// skipping pushes that arrive first.
func (c *wsTestClient) call(event string, data any) wsEnvelope {
	c.t.Helper()
	c.nextAck++
	ack := c.nextAck
	if err := c.conn.WriteJSON(map[string]any{"event": event, "ack": ack, "data": data}); err != nil {
		c.t.Fatalf("write %s: %v", event, err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			c.t.Fatalf("timed out waiting for ack of %s", event)
		}
		msg := c.read(remaining)
		if msg.Event == eventAck && msg.Ack != nil && *msg.Ack == ack {
			return msg
		}
	}
}

// waitFor reads until the named push arrives.
func (c *wsTestClient) waitFor(event string) wsEnvelope {
	c.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	seen := make([]string, 0)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			c.t.Fatalf("timed out waiting for %s; seen=%v", event, seen)
		}
		msg := c.read(remaining)
		if msg.Event == event {
			return msg
		}
		seen = append(seen, msg.Event)
	}
}

func (c *wsTestClient) expectNoMessage(timeout time.Duration) {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	if _, payload, err := c.conn.ReadMessage(); err == nil {
		c.t.Fatalf("expected no websocket message within %s, got %s", timeout, payload)
	} else {
		netErr, ok := err.(net.Error)
		if !ok || !netErr.Timeout() {
			c.t.Fatalf("expected websocket timeout, got %v", err)
		}
	}
}

func decodeData[T any](t *testing.T, msg wsEnvelope) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(msg.Data, &out); err != nil {
		t.Fatalf("decode %s data %s: %v", msg.Event, msg.Data, err)
	}
	return out
}

func requireOK(t *testing.T, msg wsEnvelope) {
	t.Helper()
	if msg.OK == nil || !*msg.OK {
		t.Fatalf("expected ok ack, got error %s: %s", msg.Error, msg.Message)
	}
}

func requireCode(t *testing.T, msg wsEnvelope, code string) {
	t.Helper()
	if msg.OK == nil || *msg.OK {
		t.Fatalf("expected failed ack with %s, got ok", code)
	}
	if msg.Error != code {
		t.Fatalf("expected error code %s, got %s (%s)", code, msg.Error, msg.Message)
	}
}
