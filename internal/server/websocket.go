package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// wsHub tracks live connections and the room groups they are subscribed to.
// It implements Notifier; sends never block, a client whose queue is full
// is dropped.
type wsHub struct {
	mu      sync.Mutex
	clients map[string]*wsClient
	groups  map[string]map[string]struct{}
	log     zerolog.Logger
}

func newWSHub(logger zerolog.Logger) *wsHub {
	return &wsHub{
		clients: make(map[string]*wsClient),
		groups:  make(map[string]map[string]struct{}),
		log:     logger,
	}
}

func (h *wsHub) Register(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.id] = client
}

func (h *wsHub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(connID)
	for roomID, group := range h.groups {
		delete(group, connID)
		if len(group) == 0 {
			delete(h.groups, roomID)
		}
	}
}

func (h *wsHub) dropLocked(connID string) {
	client, ok := h.clients[connID]
	if !ok {
		return
	}
	delete(h.clients, connID)
	close(client.send)
	_ = client.conn.Close()
}

func (h *wsHub) Subscribe(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		group = make(map[string]struct{})
		h.groups[roomID] = group
	}
	group[connID] = struct{}{}
}

func (h *wsHub) Unsubscribe(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		return
	}
	delete(group, connID)
	if len(group) == 0 {
		delete(h.groups, roomID)
	}
}

func (h *wsHub) Send(connID, event string, payload any) {
	data, err := json.Marshal(outboundMessage{Event: event, Data: payload})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("encode message failed")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enqueueLocked(connID, data)
}

func (h *wsHub) Broadcast(roomID, event string, payload any) {
	data, err := json.Marshal(outboundMessage{Event: event, Data: payload})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("encode message failed")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for connID := range h.groups[roomID] {
		h.enqueueLocked(connID, data)
	}
}

// SendAck answers a client request. A nil err is a success.
func (h *wsHub) SendAck(connID string, ack int64, result any, err error) {
	ok := err == nil
	msg := outboundMessage{Event: eventAck, Ack: &ack, OK: &ok, Data: result}
	if err != nil {
		msg.Data = nil
		msg.Error = errorCode(err)
		msg.Message = err.Error()
	}
	data, marshalErr := json.Marshal(msg)
	if marshalErr != nil {
		h.log.Error().Err(marshalErr).Msg("encode ack failed")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enqueueLocked(connID, data)
}

func (h *wsHub) enqueueLocked(connID string, data []byte) {
	client, ok := h.clients[connID]
	if !ok {
		return
	}
	select {
	case client.send <- data:
	default:
		h.log.Warn().Str("conn_id", connID).Msg("ws send queue full, dropping client")
		h.dropLocked(connID)
	}
}

// CloseAll drops every connection. Hijacked sockets outlive http.Server
// shutdown, so the server closes them itself.
func (h *wsHub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for connID := range h.clients {
		h.dropLocked(connID)
	}
	h.groups = make(map[string]map[string]struct{})
}

func (h *wsHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (s *Server) handleWebsocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("ws upgrade failed")
		return
	}
	client := &wsClient{
		id:   newConnectionID(),
		conn: conn,
		send: make(chan []byte, s.cfg.WSSendBuffer),
	}
	s.log.Info().Str("conn_id", client.id).Str("remote", c.Request.RemoteAddr).Msg("ws connected")
	s.ws.Register(client)
	go s.writeWS(client)
	s.ws.Send(client.id, eventConnected, connectedPayload{ConnectionID: client.id})
	s.readWS(client)
}

func (s *Server) readWS(client *wsClient) {
	defer s.ws.Unregister(client.id)
	defer s.registry.HandleDisconnect(client.id)

	client.conn.SetReadLimit(s.cfg.WSMaxMessageBytes)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, payload, err := client.conn.ReadMessage()
		if err != nil {
			s.log.Info().Str("conn_id", client.id).Err(err).Msg("ws disconnected")
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.Debug().Str("conn_id", client.id).Err(err).Msg("ws message not json")
			continue
		}
		s.dispatch(client.id, msg)
	}
}

func (s *Server) writeWS(client *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	timeout := s.cfg.WSWriteTimeout()
	for {
		select {
		case data, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(timeout))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				_ = client.conn.Close()
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(timeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = client.conn.Close()
				return
			}
		}
	}
}

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}
