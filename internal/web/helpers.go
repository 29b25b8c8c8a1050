package web

import (
	"strconv"

	"github.com/a-h/templ"
)

func itoa(value int) string {
	return strconv.Itoa(value)
}

func roomRows(rooms []RoomSummary) string {
	if len(rooms) == 0 {
		return `<li class="empty">No open rooms yet.</li>`
	}
	out := ""
	for _, room := range rooms {
		out += `<li><code>` + templ.EscapeString(room.ID) + `</code> ` +
			templ.EscapeString(room.Phase) + ` &middot; ` + itoa(room.Players) + ` player(s)</li>`
	}
	return out
}
