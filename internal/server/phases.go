package server

import "encoding/json"

// phaseTransition is a completion barrier: once ready holds for every
// participant, advance moves the room on. Both run under room.mu, and
// advance always leaves the phase, so each barrier fires once per game.
type phaseTransition struct {
	ready   func(room *Room, participants []string) bool
	advance func(r *RoomRegistry, room *Room, participants []string)
}

var phaseTransitions = map[Phase]phaseTransition{
	phaseCollectPrompts: {
		ready: func(room *Room, participants []string) bool {
			for _, id := range participants {
				if promptOf(room, id) == "" {
					return false
				}
			}
			return true
		},
		advance: func(r *RoomRegistry, room *Room, participants []string) {
			game := &room.Game
			prompts := make(map[string]string, len(participants))
			for _, id := range participants {
				prompts[id] = promptOf(room, id)
			}
			rot := buildRotation(participants, prompts, room.playerNames())
			game.CurrentTargets = rot.targets
			game.ReceiverOf = rot.receiverOf
			game.RoundIndex = 0
			game.Phase = phaseDrawing

			room.timer.Stop()
			room.timer = startRoundTimer(room.ID, room.Settings.DrawTimeSec, r.notifier, r.ticker, r.log)
			r.notifier.Broadcast(room.ID, eventPhaseDrawing, phaseDrawingPayload{
				Mapping:  rot.targets,
				Settings: room.Settings,
			})
		},
	},
	phaseDrawing: {
		ready: func(room *Room, participants []string) bool {
			for _, id := range participants {
				if _, ok := room.Game.Done[id]; !ok {
					return false
				}
			}
			return true
		},
		advance: func(r *RoomRegistry, room *Room, participants []string) {
			game := &room.Game
			game.ToDescribe = make(map[string][]json.RawMessage, len(participants))
			for _, id := range participants {
				events := game.SavedDrawings[id]
				if events == nil {
					events = []json.RawMessage{}
				}
				game.ToDescribe[id] = events
			}
			game.Done = make(map[string]struct{})
			game.Phase = phaseDescribe
			r.notifier.Broadcast(room.ID, eventPhaseDescribe, phaseDescribePayload{ToDescribe: game.ToDescribe})
		},
	},
	phaseDescribe: {
		ready: func(room *Room, participants []string) bool {
			for _, id := range participants {
				if _, ok := room.Game.Descriptions[id]; !ok {
					return false
				}
			}
			return true
		},
		advance: func(r *RoomRegistry, room *Room, participants []string) {
			room.Game.Reveal = composeReveal(&room.Game)
			room.Game.Phase = phaseReveal
			r.notifier.Broadcast(room.ID, eventGameReveal, room.Game.Reveal)
		},
	},
}

func newSession() GameSession {
	return GameSession{Phase: phaseIdle}
}

func inProgress(phase Phase) bool {
	_, ok := phaseTransitions[phase]
	return ok
}

func promptOf(room *Room, playerID string) string {
	entries := room.Game.Sequences[playerID]
	if len(entries) == 0 {
		return ""
	}
	return entries[0].Data
}

// evaluateBarrier advances the room when every participant has finished the
// current phase. An empty participant set never satisfies a barrier.
func (r *RoomRegistry) evaluateBarrier(room *Room) bool {
	transition, ok := phaseTransitions[room.Game.Phase]
	if !ok {
		return false
	}
	participants := room.participants()
	if len(participants) == 0 || !transition.ready(room, participants) {
		return false
	}
	from := room.Game.Phase
	transition.advance(r, room, participants)
	r.log.Info().Str("room_id", room.ID).Str("from", string(from)).Str("to", string(room.Game.Phase)).Int("participants", len(participants)).Msg("phase advanced")
	return true
}

// afterDeparture re-checks the barrier against the smaller player set, and
// abandons a game that no seated player is left to finish.
func (r *RoomRegistry) afterDeparture(room *Room) {
	if !inProgress(room.Game.Phase) {
		return
	}
	if len(room.participants()) == 0 {
		room.timer.Stop()
		room.timer = nil
		room.Game = newSession()
		r.log.Info().Str("room_id", room.ID).Msg("game abandoned")
		r.notifier.Broadcast(room.ID, eventGamePhase, buildSessionSnapshot(room))
		return
	}
	r.evaluateBarrier(room)
}

func (r *RoomRegistry) StartGame(connID, roomID string) error {
	room, err := r.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if !room.isHost(connID) {
		return ErrNotHost
	}
	if room.Game.Started {
		return ErrAlreadyStarted
	}
	game := GameSession{
		Started:       true,
		Phase:         phaseCollectPrompts,
		SlotOrder:     make([]string, 0, len(room.Players)),
		Sequences:     make(map[string][]SequenceEntry, len(room.Players)),
		SlotNames:     make(map[string]string, len(room.Players)),
		Seated:        make(map[string]struct{}, len(room.Players)),
		SavedDrawings: make(map[string][]json.RawMessage),
		Done:          make(map[string]struct{}),
		Descriptions:  make(map[string]string),
	}
	for _, player := range room.Players {
		game.SlotOrder = append(game.SlotOrder, player.ID)
		game.SlotNames[player.ID] = player.Name
		game.Seated[player.ID] = struct{}{}
		game.Sequences[player.ID] = []SequenceEntry{{Type: entryTypePrompt, From: player.ID}}
	}
	room.timer.Stop()
	room.timer = nil
	room.Game = game

	r.log.Info().Str("room_id", room.ID).Int("players", len(room.Players)).Msg("game started")
	r.notifier.Broadcast(room.ID, eventGameStarted, gameStartedPayload{Settings: room.Settings})
	r.notifier.Broadcast(room.ID, eventGamePhase, buildSessionSnapshot(room))
	return nil
}

// SubmitPrompt stores the text exactly as sent. Resubmitting before the
// barrier fires replaces the earlier prompt.
func (r *RoomRegistry) SubmitPrompt(connID, roomID, prompt string) error {
	room, err := r.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if room.Game.Phase != phaseCollectPrompts {
		return ErrWrongPhase
	}
	if !room.hasSlot(connID) {
		return ErrNoSlot
	}
	room.Game.Sequences[connID][0].Data = prompt
	r.evaluateBarrier(room)
	return nil
}

// DrawingEvent relays ev to the target connection and, during the drawing
// phase, appends persisting kinds to the target's drawing log. A target that
// has already left is not an error; the relay goes nowhere.
func (r *RoomRegistry) DrawingEvent(connID, roomID, targetID string, ev json.RawMessage) error {
	room, err := r.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if !room.hasPlayer(connID) {
		return ErrNoSlot
	}
	if room.hasPlayer(targetID) {
		r.notifier.Send(targetID, eventDrawing, drawingRelayPayload{From: connID, Ev: ev})
	}
	if room.Game.Phase != phaseDrawing {
		return nil
	}
	if _, persist := persistedDrawingKinds[drawingEventKind(ev)]; persist {
		room.Game.SavedDrawings[targetID] = append(room.Game.SavedDrawings[targetID], ev)
	}
	return nil
}

func (r *RoomRegistry) FinishDrawing(connID, roomID string) error {
	room, err := r.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if room.Game.Phase != phaseDrawing {
		return ErrWrongPhase
	}
	if !room.hasSlot(connID) {
		return ErrNoSlot
	}
	room.Game.Done[connID] = struct{}{}
	r.evaluateBarrier(room)
	return nil
}

func (r *RoomRegistry) SubmitDescription(connID, roomID, text string) error {
	room, err := r.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if room.Game.Phase != phaseDescribe {
		return ErrWrongPhase
	}
	if !room.hasSlot(connID) {
		return ErrNoSlot
	}
	room.Game.Descriptions[connID] = text
	r.evaluateBarrier(room)
	return nil
}

// UpdateSettings merges the non-nil fields of patch. A running timer keeps
// the budget it started with.
func (r *RoomRegistry) UpdateSettings(connID, roomID string, patch SettingsPatch) (Settings, error) {
	room, err := r.lockRoom(roomID)
	if err != nil {
		return Settings{}, err
	}
	defer room.mu.Unlock()

	if !room.isHost(connID) {
		return Settings{}, ErrNotHost
	}
	if patch.Rounds != nil {
		room.Settings.Rounds = *patch.Rounds
	}
	if patch.DrawTimeSec != nil {
		room.Settings.DrawTimeSec = *patch.DrawTimeSec
	}
	r.broadcastRoom(room)
	return room.Settings, nil
}

// RequestReveal returns the finished reveal to any caller who knows the room.
func (r *RoomRegistry) RequestReveal(roomID string) (*Reveal, error) {
	room, err := r.lockRoom(roomID)
	if err != nil {
		return nil, err
	}
	defer room.mu.Unlock()

	if room.Game.Phase != phaseReveal || room.Game.Reveal == nil {
		return nil, ErrWrongPhase
	}
	return room.Game.Reveal, nil
}

// RequestDrawForDescribe returns the drawing log the caller must describe.
func (r *RoomRegistry) RequestDrawForDescribe(connID, roomID string) ([]json.RawMessage, error) {
	room, err := r.lockRoom(roomID)
	if err != nil {
		return nil, err
	}
	defer room.mu.Unlock()

	if room.Game.Phase != phaseDescribe {
		return nil, ErrWrongPhase
	}
	events, ok := room.Game.ToDescribe[connID]
	if !ok || !room.hasPlayer(connID) {
		return nil, ErrNoSlot
	}
	return events, nil
}

// ResetGame returns a finished room to idle so the host can start again.
func (r *RoomRegistry) ResetGame(connID, roomID string) error {
	room, err := r.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if !room.isHost(connID) {
		return ErrNotHost
	}
	if room.Game.Phase != phaseReveal {
		return ErrWrongPhase
	}
	room.timer.Stop()
	room.timer = nil
	room.Game = newSession()
	r.log.Info().Str("room_id", room.ID).Msg("game reset")
	r.notifier.Broadcast(room.ID, eventGamePhase, buildSessionSnapshot(room))
	r.broadcastRoom(room)
	return nil
}

func drawingEventKind(ev json.RawMessage) string {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(ev, &head); err != nil {
		return ""
	}
	return head.Type
}
