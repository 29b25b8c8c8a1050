package server

import "encoding/json"

const (
	eventConnected     = "connected"
	eventAck           = "ack"
	eventRoomUpdate    = "room_update"
	eventGameStarted   = "game_started"
	eventGamePhase     = "game_phase"
	eventPhaseDrawing  = "phase_drawing"
	eventPhaseDescribe = "phase_describe"
	eventGameReveal    = "game_reveal"
	eventTick          = "tick"
	eventRoundTimeout  = "round_timeout"
	eventDrawing       = "drawing_event"
)

// Notifier is the transport seen by the room core: a per-connection send, a
// per-room broadcast, and room group membership.
type Notifier interface {
	Subscribe(roomID, connID string)
	Unsubscribe(roomID, connID string)
	Send(connID, event string, payload any)
	Broadcast(roomID, event string, payload any)
}

type outboundMessage struct {
	Event   string `json:"event"`
	Ack     *int64 `json:"ack,omitempty"`
	OK      *bool  `json:"ok,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type inboundMessage struct {
	Event string          `json:"event"`
	Ack   *int64          `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data"`
}

type gameStartedPayload struct {
	Settings Settings `json:"settings"`
}

type phaseDrawingPayload struct {
	Mapping  map[string]Target `json:"mapping"`
	Settings Settings          `json:"settings"`
}

type phaseDescribePayload struct {
	ToDescribe map[string][]json.RawMessage `json:"toDescribe"`
}

type tickPayload struct {
	SecondsRemaining int `json:"secondsRemaining"`
}

type drawingRelayPayload struct {
	From string          `json:"from"`
	Ev   json.RawMessage `json:"ev"`
}

type connectedPayload struct {
	ConnectionID string `json:"connectionId"`
}
