package server

import "encoding/json"

// composeReveal rebuilds every chain from the rotation's id index, so two
// byte-identical prompts still resolve to their own drawing owners.
func composeReveal(game *GameSession) *Reveal {
	reveal := &Reveal{
		Entries: make(map[string]RevealEntry, len(game.SlotOrder)),
		Order:   append([]string(nil), game.SlotOrder...),
	}
	for _, author := range game.SlotOrder {
		entry := RevealEntry{
			AuthorName:    game.SlotNames[author],
			DrawingEvents: []json.RawMessage{},
		}
		if entries := game.Sequences[author]; len(entries) > 0 {
			entry.Prompt = entries[0].Data
		}
		if owner, ok := game.ReceiverOf[author]; ok {
			entry.DrawingOwner = owner
			if events := game.SavedDrawings[owner]; len(events) > 0 {
				entry.DrawingEvents = append(entry.DrawingEvents, events...)
			}
			entry.DescriptionText = game.Descriptions[owner]
		}
		reveal.Entries[author] = entry
	}
	return reveal
}
