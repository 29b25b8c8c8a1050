package server

type roomSnapshot struct {
	ID       string          `json:"id"`
	HostID   string          `json:"hostId"`
	Players  []Player        `json:"players"`
	Settings Settings        `json:"settings"`
	Game     sessionSnapshot `json:"game"`
}

// sessionSnapshot is the public view of a GameSession. Prompt text stays
// private until the reveal.
type sessionSnapshot struct {
	Started        bool     `json:"started"`
	Phase          Phase    `json:"phase"`
	RoundIndex     int      `json:"roundIndex"`
	Slots          []string `json:"slots"`
	Submitted      []string `json:"submitted"`
	Pending        []string `json:"pending"`
	RequiredCount  int      `json:"requiredCount"`
	SubmittedCount int      `json:"submittedCount"`
}

func buildRoomSnapshot(room *Room) roomSnapshot {
	return roomSnapshot{
		ID:       room.ID,
		HostID:   room.HostID,
		Players:  append([]Player{}, room.Players...),
		Settings: room.Settings,
		Game:     buildSessionSnapshot(room),
	}
}

func buildSessionSnapshot(room *Room) sessionSnapshot {
	game := &room.Game
	snap := sessionSnapshot{
		Started:    game.Started,
		Phase:      game.Phase,
		RoundIndex: game.RoundIndex,
		Slots:      append([]string{}, game.SlotOrder...),
		Submitted:  []string{},
		Pending:    []string{},
	}
	if !inProgress(game.Phase) {
		return snap
	}
	for _, id := range room.participants() {
		if hasSubmitted(room, id) {
			snap.Submitted = append(snap.Submitted, id)
		} else {
			snap.Pending = append(snap.Pending, id)
		}
	}
	snap.RequiredCount = len(snap.Submitted) + len(snap.Pending)
	snap.SubmittedCount = len(snap.Submitted)
	return snap
}

func hasSubmitted(room *Room, playerID string) bool {
	switch room.Game.Phase {
	case phaseCollectPrompts:
		return promptOf(room, playerID) != ""
	case phaseDrawing:
		_, ok := room.Game.Done[playerID]
		return ok
	case phaseDescribe:
		_, ok := room.Game.Descriptions[playerID]
		return ok
	default:
		return false
	}
}
