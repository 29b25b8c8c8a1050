package server

import (
	"encoding/json"
	"errors"
	"fmt"
)

type createRoomRequest struct {
	Name string `json:"name" binding:"displayname"`
}

type joinRoomRequest struct {
	RoomID string `json:"roomId" binding:"required"`
	Name   string `json:"name" binding:"displayname"`
}

type roomRequest struct {
	RoomID string `json:"roomId" binding:"required"`
}

type updateSettingsRequest struct {
	RoomID   string        `json:"roomId" binding:"required"`
	Settings SettingsPatch `json:"settings"`
}

type submitPromptRequest struct {
	RoomID string `json:"roomId" binding:"required"`
	Prompt string `json:"prompt" binding:"required"`
}

type drawingEventRequest struct {
	RoomID   string          `json:"roomId" binding:"required"`
	TargetID string          `json:"targetId" binding:"required"`
	Ev       json.RawMessage `json:"ev"`
	Event    json.RawMessage `json:"event"`
}

type submitDescriptionRequest struct {
	RoomID string `json:"roomId" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

var payloadMessages = bindMessages{
	"RoomID": {"required": "roomId is required"},
	"Name":   {"displayname": fmt.Sprintf("name must be %d characters or fewer", maxNameLength)},
	"Prompt": {"required": "prompt is required"},
	"Text":   {"required": "text is required"},
	"TargetID": {
		"required": "targetId is required",
	},
	"Rounds":      {"min": "rounds must be between 1 and 10", "max": "rounds must be between 1 and 10"},
	"DrawTimeSec": {"min": "drawTimeSec must be between 5 and 600", "max": "drawTimeSec must be between 5 and 600"},
}

type eventHandler func(s *Server, connID string, data json.RawMessage) (any, error)

var eventHandlers = map[string]eventHandler{
	"create_room": func(s *Server, connID string, data json.RawMessage) (any, error) {
		var req createRoomRequest
		if err := bindPayload(data, &req, payloadMessages); err != nil {
			return nil, err
		}
		roomID, err := s.registry.CreateRoom(connID, req.Name)
		if err != nil {
			return nil, err
		}
		return map[string]any{"roomId": roomID, "host": true}, nil
	},
	"join_room": func(s *Server, connID string, data json.RawMessage) (any, error) {
		var req joinRoomRequest
		if err := bindPayload(data, &req, payloadMessages); err != nil {
			return nil, err
		}
		if err := s.registry.JoinRoom(connID, req.RoomID, req.Name); err != nil {
			return nil, err
		}
		return map[string]any{"roomId": req.RoomID}, nil
	},
	"leave_room": func(s *Server, connID string, data json.RawMessage) (any, error) {
		s.registry.LeaveRoom(connID)
		return nil, nil
	},
	"update_settings": func(s *Server, connID string, data json.RawMessage) (any, error) {
		var req updateSettingsRequest
		if err := bindPayload(data, &req, payloadMessages); err != nil {
			return nil, err
		}
		settings, err := s.registry.UpdateSettings(connID, req.RoomID, req.Settings)
		if err != nil {
			return nil, err
		}
		return map[string]any{"settings": settings}, nil
	},
	"start_game": func(s *Server, connID string, data json.RawMessage) (any, error) {
		var req roomRequest
		if err := bindPayload(data, &req, payloadMessages); err != nil {
			return nil, err
		}
		return nil, s.registry.StartGame(connID, req.RoomID)
	},
	"submit_prompt": func(s *Server, connID string, data json.RawMessage) (any, error) {
		var req submitPromptRequest
		if err := bindPayload(data, &req, payloadMessages); err != nil {
			return nil, err
		}
		return nil, s.registry.SubmitPrompt(connID, req.RoomID, req.Prompt)
	},
	"drawing_event": func(s *Server, connID string, data json.RawMessage) (any, error) {
		var req drawingEventRequest
		if err := bindPayload(data, &req, payloadMessages); err != nil {
			return nil, err
		}
		ev := req.Ev
		if len(ev) == 0 {
			ev = req.Event
		}
		if len(ev) == 0 {
			return nil, fmt.Errorf("%w: ev is required", ErrInvalidPayload)
		}
		return nil, s.registry.DrawingEvent(connID, req.RoomID, req.TargetID, ev)
	},
	"finish_drawing": func(s *Server, connID string, data json.RawMessage) (any, error) {
		var req roomRequest
		if err := bindPayload(data, &req, payloadMessages); err != nil {
			return nil, err
		}
		return nil, s.registry.FinishDrawing(connID, req.RoomID)
	},
	"submit_description": func(s *Server, connID string, data json.RawMessage) (any, error) {
		var req submitDescriptionRequest
		if err := bindPayload(data, &req, payloadMessages); err != nil {
			return nil, err
		}
		return nil, s.registry.SubmitDescription(connID, req.RoomID, req.Text)
	},
	"request_reveal": func(s *Server, connID string, data json.RawMessage) (any, error) {
		var req roomRequest
		if err := bindPayload(data, &req, payloadMessages); err != nil {
			return nil, err
		}
		return s.registry.RequestReveal(req.RoomID)
	},
	"request_draw_for_describe": func(s *Server, connID string, data json.RawMessage) (any, error) {
		var req roomRequest
		if err := bindPayload(data, &req, payloadMessages); err != nil {
			return nil, err
		}
		events, err := s.registry.RequestDrawForDescribe(connID, req.RoomID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"events": events}, nil
	},
	"reset_game": func(s *Server, connID string, data json.RawMessage) (any, error) {
		var req roomRequest
		if err := bindPayload(data, &req, payloadMessages); err != nil {
			return nil, err
		}
		return nil, s.registry.ResetGame(connID, req.RoomID)
	},
}

// dispatch runs one client event and acknowledges it when the client asked
// for an ack. A failing or panicking handler only affects its own reply.
func (s *Server) dispatch(connID string, msg inboundMessage) {
	var (
		result any
		err    error
	)
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Str("conn_id", connID).Str("event", msg.Event).Interface("panic", rec).Msg("ws handler panicked")
				err = errors.New("internal error")
			}
		}()
		handler, ok := eventHandlers[msg.Event]
		if !ok {
			err = fmt.Errorf("%w: %q", ErrUnknownEvent, msg.Event)
			return
		}
		result, err = handler(s, connID, msg.Data)
	}()
	if err != nil {
		s.log.Debug().Str("conn_id", connID).Str("event", msg.Event).Str("code", errorCode(err)).Err(err).Msg("ws event rejected")
	}
	if msg.Ack != nil {
		s.ws.SendAck(connID, *msg.Ack, result, err)
	}
}
