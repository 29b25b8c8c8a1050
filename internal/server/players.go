package server

// Player bookkeeping for a Room. Callers hold room.mu.

// addPlayer appends in join order. A hostless room makes the newcomer host.
func (room *Room) addPlayer(player Player) {
	room.Players = append(room.Players, player)
	if room.HostID == "" {
		room.HostID = player.ID
	}
}

// removePlayer reports whether the player was present. A departing host is
// replaced by the earliest-joined remaining player, or by nobody.
func (room *Room) removePlayer(playerID string) bool {
	index := room.playerIndex(playerID)
	if index < 0 {
		return false
	}
	room.Players = append(room.Players[:index], room.Players[index+1:]...)
	if room.HostID == playerID {
		room.HostID = ""
		if len(room.Players) > 0 {
			room.HostID = room.Players[0].ID
		}
	}
	return true
}

func (room *Room) renamePlayer(playerID, name string) {
	if index := room.playerIndex(playerID); index >= 0 {
		room.Players[index].Name = name
	}
}

func (room *Room) playerIndex(playerID string) int {
	for i := range room.Players {
		if room.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

func (room *Room) hasPlayer(playerID string) bool {
	return room.playerIndex(playerID) >= 0
}

func (room *Room) isHost(playerID string) bool {
	return room.HostID != "" && room.HostID == playerID
}

func (room *Room) playerNames() map[string]string {
	names := make(map[string]string, len(room.Players))
	for _, player := range room.Players {
		names[player.ID] = player.Name
	}
	return names
}

// hasSlot reports whether the player is present and still seated. A seat is
// lost for the rest of the game on leaving; rejoining does not restore it.
func (room *Room) hasSlot(playerID string) bool {
	if !room.hasPlayer(playerID) {
		return false
	}
	_, ok := room.Game.Seated[playerID]
	return ok
}

// unseat drops the player's seat. Their prompt stays in Sequences for the
// reveal.
func (room *Room) unseat(playerID string) {
	delete(room.Game.Seated, playerID)
}

// participants are the current players still seated, in join order. Every
// completion barrier is evaluated against this set.
func (room *Room) participants() []string {
	ids := make([]string, 0, len(room.Players))
	for _, player := range room.Players {
		if _, ok := room.Game.Seated[player.ID]; ok {
			ids = append(ids, player.ID)
		}
	}
	return ids
}
