// Package roomreg implements the Room Registry component: room
// lifecycle, membership, and settings mutation, grounded on the
// teacher's internal/game room.go (AddPlayer/removePlayer/CleanupRoom)
// but generalized away from package-level globals into a registry value
// owned by the server, per the spec's design notes on avoiding ambient
// mutable state.
package roomreg

import (
	"log"
	"math/rand"
	"strings"
	"sync"

	"github.com/kestrelgames/sketchguess/internal/core"
	"github.com/kestrelgames/sketchguess/internal/playerreg"
)

const (
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength      = 6
	maxCodeAttempts = 100
)

// Registry owns every live room, keyed by its 6-char code.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*core.Room
	players *playerreg.Registry
}

func New(players *playerreg.Registry) *Registry {
	return &Registry{
		rooms:   make(map[string]*core.Room),
		players: players,
	}
}

func generateCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

func (r *Registry) mintCode() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := generateCode()
		if _, exists := r.rooms[code]; !exists {
			return code, nil
		}
	}
	return "", core.New(core.ErrIDExhausted)
}

// Create mints a room owned by owner with the given (unnormalized)
// settings, retrying code collisions up to 100 times.
func (r *Registry) Create(owner *core.Player, raw core.Settings) (*core.Room, error) {
	settings := core.NormalizeSettings(raw)

	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.mintCode()
	if err != nil {
		log.Printf("[roomreg.Create] code space exhausted after %d attempts", maxCodeAttempts)
		return nil, err
	}

	room := &core.Room{
		Code:      code,
		OwnerId:   owner.Id,
		PlayerIds: []string{owner.Id},
		Players:   map[string]*core.Player{owner.Id: owner},
		Settings:  settings,
		Status:    core.StatusWaiting,
	}
	r.rooms[code] = room
	r.players.SetRoom(owner, code)
	log.Printf("[roomreg.Create] room=%s owner=%s", code, owner.Id)
	return room, nil
}

// Get looks up a room by code, case-insensitively.
func (r *Registry) Get(code string) (*core.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[strings.ToUpper(code)]
	return room, ok
}

// Join adds a player to an existing waiting room.
func (r *Registry) Join(p *core.Player, code string) (*core.Room, error) {
	code = strings.ToUpper(code)

	r.mu.RLock()
	room, ok := r.rooms[code]
	r.mu.RUnlock()
	if !ok {
		return nil, core.New(core.ErrNotFound)
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Status != core.StatusWaiting {
		return nil, core.New(core.ErrNotWaiting)
	}
	if _, dup := room.Players[p.Id]; dup {
		return nil, core.New(core.ErrDuplicate)
	}
	if p.RoomCode != "" {
		return nil, core.New(core.ErrAlreadyIn)
	}
	if len(room.PlayerIds) >= room.Settings.MaxPlayers {
		return nil, core.New(core.ErrFull)
	}

	room.PlayerIds = append(room.PlayerIds, p.Id)
	room.Players[p.Id] = p
	r.players.SetRoom(p, room.Code)
	log.Printf("[roomreg.Join] room=%s player=%s", room.Code, p.Id)
	return room, nil
}

// Leave removes a player from their room. Returns the room (nil if it
// was destroyed), whether it was destroyed, and the player's index into
// the pre-removal PlayerIds slice (-1 if the room was already gone). A
// caller that cares about in-progress drawer rotation (the Event
// Router) uses that index to adjust game state itself — this package
// stays oblivious to game state entirely, avoiding a dependency on the
// game engine package.
func (r *Registry) Leave(p *core.Player) (room *core.Room, destroyed bool, departedIndex int) {
	code := p.RoomCode
	if code == "" {
		return nil, false, -1
	}

	r.mu.RLock()
	room, ok := r.rooms[code]
	r.mu.RUnlock()
	if !ok {
		r.players.SetRoom(p, "")
		return nil, false, -1
	}

	room.Mu.Lock()
	departedIndex = -1
	for i, id := range room.PlayerIds {
		if id == p.Id {
			departedIndex = i
			break
		}
	}
	if departedIndex >= 0 {
		room.PlayerIds = append(room.PlayerIds[:departedIndex], room.PlayerIds[departedIndex+1:]...)
	}
	delete(room.Players, p.Id)
	r.players.SetRoom(p, "")

	empty := len(room.PlayerIds) == 0
	if !empty && room.OwnerId == p.Id {
		room.OwnerId = room.PlayerIds[0]
	}
	room.Mu.Unlock()

	if empty {
		r.mu.Lock()
		delete(r.rooms, code)
		r.mu.Unlock()
		log.Printf("[roomreg.Leave] room=%s emptied, removed", code)
		return nil, true, departedIndex
	}

	log.Printf("[roomreg.Leave] room=%s player=%s left", code, p.Id)
	return room, false, departedIndex
}

// UpdateSettings applies new settings to a waiting room. Owner-only.
func (r *Registry) UpdateSettings(p *core.Player, room *core.Room, raw core.Settings) error {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.OwnerId != p.Id {
		return core.New(core.ErrNotOwner)
	}
	if room.Status != core.StatusWaiting {
		return core.New(core.ErrNotWaiting)
	}

	next := core.NormalizeSettings(raw)
	if next.MaxPlayers < len(room.PlayerIds) {
		return core.New(core.ErrTooSmall)
	}

	room.Settings = next
	return nil
}

// Joinable returns the code of a room that can accept one more player
// right now, or "" if none exists.
func (r *Registry) Joinable() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for code, room := range r.rooms {
		room.Mu.RLock()
		ok := room.Status == core.StatusWaiting && len(room.PlayerIds) < room.Settings.MaxPlayers
		room.Mu.RUnlock()
		if ok {
			return code
		}
	}
	return ""
}

// Count returns the number of live rooms. Diagnostics only.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
