// Package playerreg implements the Player Registry component: it maps a
// transport-session handle to a player identity and keeps a second index
// by id, mirroring the teacher's dual-map pattern in internal/game's room
// bookkeeping but generalized to a process-wide, room-agnostic store.
package playerreg

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kestrelgames/sketchguess/internal/core"
)

const (
	defaultNamePrefix = "Player"
	maxNameLen        = 20
)

// Registry owns every connected player, indexed both by the opaque
// transport handle (the *transport.Session, used as a map key via pointer
// identity) and by player id. All operations are O(1).
type Registry struct {
	mu          sync.RWMutex
	bySession   map[any]*core.Player
	byId        map[string]*core.Player
}

func New() *Registry {
	return &Registry{
		bySession: make(map[any]*core.Player),
		byId:      make(map[string]*core.Player),
	}
}

// Create mints a new player bound to the given session handle. The
// default name is "Player" followed by a zero-padded 3-digit random
// suffix, e.g. "Player042".
func (r *Registry) Create(session any) *core.Player {
	p := &core.Player{
		Id:       uuid.NewString(),
		Name:     fmt.Sprintf("%s%03d", defaultNamePrefix, rand.Intn(1000)),
		JoinedAt: time.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySession[session] = p
	r.byId[p.Id] = p
	return p
}

// SetName validates and applies a new display name. Trimmed, required
// non-empty, at most 20 characters after trimming.
func (r *Registry) SetName(p *core.Player, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len(trimmed) > maxNameLen {
		return core.New(core.ErrInvalidName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p.Name = trimmed
	return nil
}

// SetRoom updates the room association on a player. Internal-only: the
// Room Registry is the sole caller, on join/leave/create.
func (r *Registry) SetRoom(p *core.Player, roomCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.RoomCode = roomCode
}

// Remove deletes a player from both indices. A no-op if the player is not
// present — disconnect races with room cleanup are expected, not errors.
func (r *Registry) Remove(session any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.bySession[session]
	if !ok {
		return
	}
	delete(r.bySession, session)
	delete(r.byId, p.Id)
}

// BySession looks up a player by transport handle.
func (r *Registry) BySession(session any) (*core.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.bySession[session]
	return p, ok
}

// ById looks up a player by id.
func (r *Registry) ById(id string) (*core.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byId[id]
	return p, ok
}

// Count returns the number of registered players. Used only for
// diagnostics/health.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byId)
}
