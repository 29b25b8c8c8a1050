package server

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// RoomRegistry owns every live room and the connection-to-room index.
// Lock order is registry.mu before room.mu; game operations drop
// registry.mu before taking the room lock.
type RoomRegistry struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	members  map[string]string
	notifier Notifier
	defaults Settings
	ticker   tickerFunc
	log      zerolog.Logger
	newID    func() string
}

type RegistryOption func(*RoomRegistry)

func WithDefaultSettings(settings Settings) RegistryOption {
	return func(r *RoomRegistry) {
		r.defaults = settings
	}
}

func withTicker(ticker tickerFunc) RegistryOption {
	return func(r *RoomRegistry) {
		r.ticker = ticker
	}
}

func withRoomIDs(newID func() string) RegistryOption {
	return func(r *RoomRegistry) {
		r.newID = newID
	}
}

func NewRoomRegistry(notifier Notifier, logger zerolog.Logger, opts ...RegistryOption) *RoomRegistry {
	r := &RoomRegistry{
		rooms:    make(map[string]*Room),
		members:  make(map[string]string),
		notifier: notifier,
		defaults: Settings{Rounds: 3, DrawTimeSec: defaultDrawSeconds},
		ticker:   systemTicker,
		log:      logger,
		newID:    newRoomID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateRoom makes a fresh room with the caller as sole player and host.
func (r *RoomRegistry) CreateRoom(connID, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(connID, "switch_room")
	id := r.newID()
	for {
		if _, exists := r.rooms[id]; !exists {
			break
		}
		id = r.newID()
	}
	room := &Room{
		ID:       id,
		Settings: r.defaults,
		Game:     newSession(),
	}
	room.addPlayer(Player{ID: connID, Name: displayName(name)})
	r.rooms[id] = room
	r.members[connID] = id
	r.notifier.Subscribe(id, connID)

	room.mu.Lock()
	defer room.mu.Unlock()
	r.log.Info().Str("room_id", id).Str("conn_id", connID).Msg("room created")
	r.broadcastRoom(room)
	return id, nil
}

func (r *RoomRegistry) JoinRoom(connID, roomID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if current, ok := r.members[connID]; ok {
		if current == roomID {
			room.mu.Lock()
			defer room.mu.Unlock()
			room.renamePlayer(connID, displayName(name))
			r.broadcastRoom(room)
			return nil
		}
		r.leaveLocked(connID, "switch_room")
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	room.addPlayer(Player{ID: connID, Name: displayName(name)})
	r.members[connID] = roomID
	r.notifier.Subscribe(roomID, connID)
	r.log.Info().Str("room_id", roomID).Str("conn_id", connID).Int("players", len(room.Players)).Msg("player joined")
	r.broadcastRoom(room)
	return nil
}

// LeaveRoom is idempotent.
func (r *RoomRegistry) LeaveRoom(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(connID, "leave")
}

// HandleDisconnect has the same effect as LeaveRoom.
func (r *RoomRegistry) HandleDisconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(connID, "disconnect")
}

func (r *RoomRegistry) leaveLocked(connID, reason string) {
	roomID, ok := r.members[connID]
	if !ok {
		return
	}
	delete(r.members, connID)
	r.notifier.Unsubscribe(roomID, connID)
	room, ok := r.rooms[roomID]
	if !ok {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if !room.removePlayer(connID) {
		return
	}
	room.unseat(connID)
	r.log.Info().Str("room_id", roomID).Str("conn_id", connID).Str("reason", reason).Int("players", len(room.Players)).Msg("player left")
	if len(room.Players) == 0 {
		r.destroyLocked(room)
		return
	}
	r.broadcastRoom(room)
	r.afterDeparture(room)
}

// destroyLocked removes an empty room and stops its timer before returning.
// Caller holds registry.mu and room.mu.
func (r *RoomRegistry) destroyLocked(room *Room) {
	room.closed = true
	room.timer.Stop()
	room.timer = nil
	delete(r.rooms, room.ID)
	r.log.Info().Str("room_id", room.ID).Msg("room destroyed")
}

// Close stops every room's timer and forgets all rooms.
func (r *RoomRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		room.mu.Lock()
		r.destroyLocked(room)
		room.mu.Unlock()
	}
	clear(r.members)
}

// lockRoom returns the live room with room.mu held.
func (r *RoomRegistry) lockRoom(roomID string) (*Room, error) {
	r.mu.Lock()
	room, ok := r.rooms[roomID]
	r.mu.Unlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (r *RoomRegistry) Snapshot(roomID string) (roomSnapshot, bool) {
	room, err := r.lockRoom(roomID)
	if err != nil {
		return roomSnapshot{}, false
	}
	defer room.mu.Unlock()
	return buildRoomSnapshot(room), true
}

func (r *RoomRegistry) RoomOf(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roomID, ok := r.members[connID]
	return roomID, ok
}

func (r *RoomRegistry) Summaries() []RoomSummary {
	r.mu.Lock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.Unlock()

	list := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		room.mu.Lock()
		if !room.closed {
			list = append(list, RoomSummary{
				ID:      room.ID,
				Phase:   room.Game.Phase,
				Players: len(room.Players),
			})
		}
		room.mu.Unlock()
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

func (r *RoomRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

func (r *RoomRegistry) broadcastRoom(room *Room) {
	r.notifier.Broadcast(room.ID, eventRoomUpdate, buildRoomSnapshot(room))
}

func displayName(name string) string {
	if name = normalizeText(name); name == "" {
		return defaultPlayerName
	}
	return name
}
