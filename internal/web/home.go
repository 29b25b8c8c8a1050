package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Home renders the lobby page. The script speaks the /ws event protocol
// directly: every request is {event, ack, data} and replies arrive as acks.
func Home(rooms []RoomSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Telephone Draw</title>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <h1>Telephone Draw</h1>
        <p>Write a prompt, draw someone else's, describe a drawing, then see how far it drifted.</p>
      </header>

      <section class="panel">
        <h2>Open rooms</h2>
        <ul id="rooms">`+roomRows(rooms)+`</ul>
      </section>

      <section class="panel">
        <form id="roomForm">
          <input name="name" placeholder="Display name" autocomplete="name"/>
          <input name="room" placeholder="Room code" autocomplete="off"/>
          <button type="button" id="create">Create room</button>
          <button type="submit">Join room</button>
          <button type="button" id="start">Start game</button>
        </form>
        <form id="textForm">
          <input name="text" placeholder="Prompt or description" autocomplete="off"/>
          <button type="submit">Submit</button>
          <button type="button" id="finish">Finish drawing</button>
        </form>
        <pre id="log"></pre>
      </section>
    </main>

    <script>
      const log = document.getElementById("log");
      const roomForm = document.getElementById("roomForm");
      const textForm = document.getElementById("textForm");
      const socket = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
      const pending = new Map();
      let nextAck = 1;
      let roomId = "";
      let phase = "idle";

      function write(line) {
        log.textContent = line + "\n" + log.textContent;
      }

      function request(event, data) {
        const ack = nextAck++;
        socket.send(JSON.stringify({ event, ack, data }));
        return new Promise((resolve) => pending.set(ack, resolve));
      }

      socket.addEventListener("message", (msg) => {
        const payload = JSON.parse(msg.data);
        if (payload.event === "ack") {
          const resolve = pending.get(payload.ack);
          pending.delete(payload.ack);
          if (!payload.ok) write("error: " + payload.error + " (" + payload.message + ")");
          if (resolve) resolve(payload);
          return;
        }
        if (payload.event === "game_phase") phase = payload.data.phase;
        if (payload.event === "phase_drawing") phase = "drawing";
        if (payload.event === "phase_describe") phase = "describe";
        if (payload.event === "game_reveal") phase = "reveal";
        write(payload.event + " " + JSON.stringify(payload.data || {}));
      });

      document.getElementById("create").addEventListener("click", async () => {
        const res = await request("create_room", { name: roomForm.elements.name.value });
        if (res.ok) {
          roomId = res.data.roomId;
          roomForm.elements.room.value = roomId;
        }
      });

      roomForm.addEventListener("submit", async (event) => {
        event.preventDefault();
        const res = await request("join_room", { roomId: roomForm.elements.room.value.trim(), name: roomForm.elements.name.value });
        if (res.ok) roomId = res.data.roomId;
      });

      document.getElementById("start").addEventListener("click", () => request("start_game", { roomId }));
      document.getElementById("finish").addEventListener("click", () => request("finish_drawing", { roomId }));

      textForm.addEventListener("submit", (event) => {
        event.preventDefault();
        const text = textForm.elements.text.value;
        if (phase === "collect_prompts") request("submit_prompt", { roomId, prompt: text });
        if (phase === "describe") request("submit_description", { roomId, text });
        textForm.elements.text.value = "";
      });
    </script>
  </body>
</html>
`)
		return err
	})
}
