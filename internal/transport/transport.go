// Package transport owns the *websocket.Conn lifecycle: upgrade and the
// per-connection read loop (serialized writes live on core.Player's
// SafeWriteJSON, not here). Grounded on the
// teacher's internal/game/websocket.go HandleWebSocket/handleMessages,
// generalized away from the teacher's room-global dispatch switch into
// a Router-agnostic read loop that hands decoded envelopes to a single
// injected Dispatch function.
package transport

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Envelope mirrors core.Message but with a raw payload, decoded once
// per frame before being routed by type.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Session is the per-connection handle passed to Dispatch; it is also
// the opaque key the Player Registry indexes players by.
type Session struct {
	Conn *websocket.Conn
}

// Serve upgrades the request and runs the read loop until the
// connection closes or errors, calling onConnect once with the new
// session, dispatch for every decoded frame, and onDisconnect exactly
// once on the way out — mirroring the teacher's defer-based cleanup.
func Serve(w http.ResponseWriter, r *http.Request, onConnect func(*Session), dispatch func(*Session, Envelope), onDisconnect func(*Session)) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[transport.Serve] upgrade failed: %v", err)
		return
	}

	session := &Session{Conn: conn}
	onConnect(session)

	defer func() {
		conn.Close()
		onDisconnect(session)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[transport.Serve] read error, closing: %v", err)
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("[transport.Serve] malformed frame dropped: %v", err)
			continue
		}
		dispatch(session, env)
	}
}
