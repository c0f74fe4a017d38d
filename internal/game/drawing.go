package game

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/kestrelgames/sketchguess/internal/core"
)

// Drawing Relay component: validates stroke events against current
// drawer/phase, throttles and batches draw_move, and fans out to
// non-drawer members. Stateless w.r.t. canvas content — grounded on the
// teacher's internal/game/draw.go HandlePixelDrawEnhanced, generalized
// from the teacher's pixel-grid model to the spec's opaque stroke
// payload and its explicit throttle/batch contract.
const (
	MoveInterval = time.Second / 30
	BatchWindow  = 50 * time.Millisecond
)

type roomRelayState struct {
	mu       sync.Mutex
	lastEmit time.Time
	pending  []json.RawMessage
	timer    *time.Timer
}

// Relay coordinates drawing fan-out for every room. onFlush is called
// with the ordered batch of moves to broadcast (excluding the drawer);
// it must not block on I/O under the relay's lock for long, matching
// the teacher's "broadcast in a goroutine" convention.
type Relay struct {
	mu      sync.Mutex
	rooms   map[string]*roomRelayState
	onFlush func(roomCode string, batch []json.RawMessage)
}

func NewRelay(onFlush func(roomCode string, batch []json.RawMessage)) *Relay {
	return &Relay{
		rooms:   make(map[string]*roomRelayState),
		onFlush: onFlush,
	}
}

func (r *Relay) state(roomCode string) *roomRelayState {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.rooms[roomCode]
	if !ok {
		st = &roomRelayState{}
		r.rooms[roomCode] = st
	}
	return st
}

// ValidateDrawer checks that playerId may currently draw in room.
// Callers must hold room.Mu (read lock is sufficient).
func ValidateDrawer(room *core.Room, playerId string) error {
	if room.Game == nil || room.Game.Phase != core.PhaseDrawing {
		return core.New(core.ErrWrongPhase)
	}
	if room.Game.DrawerId != playerId {
		return core.New(core.ErrNotDrawer)
	}
	return nil
}

// HandleMove buffers or immediately flushes a draw_move payload per the
// throttle/batch contract, returning the batch to broadcast now (nil if
// the move was buffered for later).
func (r *Relay) HandleMove(roomCode string, payload json.RawMessage) []json.RawMessage {
	st := r.state(roomCode)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.pending = append(st.pending, payload)
	now := time.Now()

	if now.Sub(st.lastEmit) >= MoveInterval {
		return r.flushLocked(st, now)
	}

	if len(st.pending) == 1 {
		st.timer = time.AfterFunc(BatchWindow, func() {
			st.mu.Lock()
			batch := r.flushLocked(st, time.Now())
			st.mu.Unlock()
			if len(batch) > 0 {
				r.onFlush(roomCode, batch)
			}
		})
	}
	return nil
}

// flushLocked drains pending and returns it; caller holds st.mu.
func (r *Relay) flushLocked(st *roomRelayState, now time.Time) []json.RawMessage {
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	if len(st.pending) == 0 {
		return nil
	}
	batch := st.pending
	st.pending = nil
	st.lastEmit = now
	return batch
}

// FlushAndEmit drains any pending batch and returns it together with the
// standalone event that follows it (draw_start, draw_end, clear_canvas
// never batch with draw_move); the caller broadcasts the batch first.
func (r *Relay) FlushAndEmit(roomCode string, payload json.RawMessage) (flushedBatch []json.RawMessage, standalone json.RawMessage) {
	st := r.state(roomCode)
	st.mu.Lock()
	batch := r.flushLocked(st, time.Now())
	st.lastEmit = time.Now()
	st.mu.Unlock()
	return batch, payload
}

// Reset discards pending batches and throttling state for a room,
// called on round_end per the spec's round-reset contract.
func (r *Relay) Reset(roomCode string) {
	r.mu.Lock()
	st, ok := r.rooms[roomCode]
	delete(r.rooms, roomCode)
	r.mu.Unlock()
	if !ok {
		return
	}
	st.mu.Lock()
	if st.timer != nil {
		st.timer.Stop()
	}
	dropped := len(st.pending)
	st.mu.Unlock()
	if dropped > 0 {
		log.Printf("[drawing.Relay.Reset] room=%s dropped %d buffered moves", roomCode, dropped)
	}
}
