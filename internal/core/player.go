package core

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Player is a connected transport session bound to an identity. A player
// belongs to at most one room at a time.
type Player struct {
	Id       string          `json:"id"`
	Conn     *websocket.Conn `json:"-"`
	Name     string          `json:"name"`
	RoomCode string          `json:"roomCode,omitempty"`
	Score    int             `json:"score"`

	JoinedAt       time.Time `json:"joinedAt"`
	TotalGuesses   int       `json:"-"`
	CorrectGuesses int       `json:"-"`
	TimesDrawn     int       `json:"-"`

	writeMu sync.Mutex
}

// SafeWriteJSON serializes concurrent writers to a single websocket
// connection. gorilla/websocket forbids concurrent writes on one Conn;
// every broadcast goroutine that may target this player funnels through
// this method instead of touching Conn directly.
func (p *Player) SafeWriteJSON(v any) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.Conn.WriteJSON(v)
}

// PublicPlayer is the client-safe view of a Player: no connection, no
// write mutex, nothing that could leak transport internals into a
// broadcast payload. The ambient JoinedAt/TotalGuesses/CorrectGuesses/
// TimesDrawn counters are carried over from the teacher's Player struct
// and surfaced here so room_updated/room_created broadcasts expose them
// alongside score.
type PublicPlayer struct {
	Id             string    `json:"id"`
	Name           string    `json:"name"`
	IsOwner        bool      `json:"isOwner"`
	Score          int       `json:"score"`
	JoinedAt       time.Time `json:"joinedAt"`
	TotalGuesses   int       `json:"totalGuesses"`
	CorrectGuesses int       `json:"correctGuesses"`
	TimesDrawn     int       `json:"timesDrawn"`
}
