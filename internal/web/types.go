package web

type RoomSummary struct {
	ID      string `json:"id"`
	Phase   string `json:"phase"`
	Players int    `json:"players"`
}
