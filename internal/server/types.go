package server

import (
	"encoding/json"
	"sync"
)

type Phase string

const (
	phaseIdle           Phase = "idle"
	phaseCollectPrompts Phase = "collect_prompts"
	phaseDrawing        Phase = "drawing"
	phaseDescribe       Phase = "describe"
	phaseReveal         Phase = "reveal"
)

const defaultPlayerName = "Player"

const entryTypePrompt = "prompt"

// Persisting drawing event kinds. Everything else is relayed only.
var persistedDrawingKinds = map[string]struct{}{
	"stroke_end": {},
	"fill":       {},
	"bucket":     {},
	"clear":      {},
}

type Settings struct {
	Rounds      int `json:"rounds"`
	DrawTimeSec int `json:"drawTimeSec"`
}

type SettingsPatch struct {
	Rounds      *int `json:"rounds" binding:"omitempty,min=1,max=10"`
	DrawTimeSec *int `json:"drawTimeSec" binding:"omitempty,min=5,max=600"`
}

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RoomSummary struct {
	ID      string
	Phase   Phase
	Players int
}

// Room is owned by the RoomRegistry. Every field below mu is guarded by it.
type Room struct {
	mu       sync.Mutex
	ID       string
	HostID   string
	Players  []Player
	Settings Settings
	Game     GameSession
	timer    *RoundTimer
	closed   bool
}

type SequenceEntry struct {
	Type string `json:"type"`
	From string `json:"from"`
	Data string `json:"data"`
}

type Target struct {
	Prompt   string `json:"prompt"`
	FromID   string `json:"fromId"`
	FromName string `json:"fromName"`
}

type GameSession struct {
	Started        bool
	Phase          Phase
	RoundIndex     int
	SlotOrder      []string
	SlotNames      map[string]string
	Seated         map[string]struct{}
	Sequences      map[string][]SequenceEntry
	CurrentTargets map[string]Target
	ReceiverOf     map[string]string
	SavedDrawings  map[string][]json.RawMessage
	Done           map[string]struct{}
	Descriptions   map[string]string
	ToDescribe     map[string][]json.RawMessage
	Reveal         *Reveal
}

type RevealEntry struct {
	AuthorName      string            `json:"authorName"`
	Prompt          string            `json:"prompt"`
	DrawingOwner    string            `json:"drawingOwner"`
	DrawingEvents   []json.RawMessage `json:"drawingEvents"`
	DescriptionText string            `json:"descriptionText"`
}

type Reveal struct {
	Entries map[string]RevealEntry `json:"reveal"`
	Order   []string               `json:"order"`
}
