// Package game implements the Game Engine, Word Engine glue, Guess
// Engine, Score Engine, Drawing Relay and Event Router described by the
// room lifecycle — the per-room phase state machine coupled to rotation,
// guessing and scoring. Grounded on the teacher's internal/game/game-flow.go
// (StartWaitingPhase/StartWordSelection/StartDrawingPhase/StartRevealingPhase/
// NextRound/EndGame) but rewritten around the four-phase state machine
// (word_select/drawing/round_end/game_end) and its exact contracts.
//
// Every exported function in this file requires the caller to already
// hold room.Mu (a write lock, except where noted) — these are the
// "engine calls" the concurrency model describes as non-blocking and
// free of I/O; callers (the Router, or a Timer Service callback after
// re-acquiring the lock) are responsible for all locking and for any
// broadcast that follows.
package game

import (
	"github.com/kestrelgames/sketchguess/internal/core"
)

// StartGame transitions a waiting room into its first round. Requires
// the caller be the owner and at least two members.
func StartGame(room *core.Room, playerId string) error {
	if room.Status != core.StatusWaiting {
		return core.New(core.ErrNotWaiting)
	}
	if room.OwnerId != playerId {
		return core.New(core.ErrNotOwner)
	}
	if len(room.PlayerIds) < core.MinPlayers {
		return core.New(core.ErrTooFewPlayers)
	}

	for _, p := range room.Players {
		p.Score = 0
	}

	room.Game = &core.GameState{
		Phase:           core.PhaseWordSelect,
		CurrentRound:    1,
		TotalRounds:     room.Settings.Rounds,
		DrawerIndex:     0,
		DrawerId:        room.PlayerIds[0],
		StartedAt:       nowMillis(),
		GuessedPlayers:  make(map[string]struct{}),
		ScoredThisRound: make(map[string]int64),
	}
	room.Status = core.StatusInGame
	return nil
}

// StartRound resets per-round guess/score bookkeeping and returns the
// game to word_select, keeping the current round number and drawer.
func StartRound(room *core.Room) {
	g := room.Game
	g.Phase = core.PhaseWordSelect
	g.GuessedPlayers = make(map[string]struct{})
	g.ScoredThisRound = make(map[string]int64)
	g.SelectedWord = ""
	g.MaskedWord = ""
}

// EndRound moves the game to round_end and reports whether this was the
// last drawer of the last round (game over) or rotation should continue.
func EndRound(room *core.Room) (gameEnded bool) {
	g := room.Game
	g.Phase = core.PhaseRoundEnd
	isLastDrawer := g.DrawerIndex == len(room.PlayerIds)-1
	isLastRound := g.CurrentRound >= g.TotalRounds
	return isLastDrawer && isLastRound
}

// ProgressToNextDrawer advances the drawer index, wrapping into the next
// round when it passes the last player, then starts the next round.
func ProgressToNextDrawer(room *core.Room) (roundIncremented bool) {
	g := room.Game
	g.DrawerIndex++
	if g.DrawerIndex >= len(room.PlayerIds) {
		g.DrawerIndex = 0
		g.CurrentRound++
		roundIncremented = true
	}
	g.DrawerId = room.PlayerIds[g.DrawerIndex]
	StartRound(room)
	return roundIncremented
}

// EndGame finalizes the game, returning the number of rounds played.
func EndGame(room *core.Room) (roundsPlayed int) {
	g := room.Game
	g.Phase = core.PhaseGameEnd
	room.Status = core.StatusFinished
	return g.CurrentRound
}

// ResetGame clears game state and returns the room to waiting, for
// post-game replay via play_again.
func ResetGame(room *core.Room) {
	room.Game = nil
	room.Status = core.StatusWaiting
	for _, p := range room.Players {
		p.Score = 0
	}
}

// HandleDeparture adjusts drawer rotation when a player leaves mid-game,
// implementing the resolved open question on rotation collapse: the
// departing player's slot is removed from the rotation outright rather
// than left as a dead index. If the departed player was ahead of the
// current drawer in turn order, the drawer index shifts down to keep
// pointing at the same player; if the departed player *was* the current
// drawer, the index (now referring to the next player after the splice,
// or wrapping to 0 if the drawer was last) simply stays as the new
// drawer. Ends the game outright if too few players remain. Caller must
// hold room.Mu and must have already removed departedId from
// room.PlayerIds/room.Players at departedIndex before calling this.
func HandleDeparture(room *core.Room, departedId string, departedIndex int) (gameEnded bool) {
	g := room.Game
	delete(g.GuessedPlayers, departedId)
	delete(g.ScoredThisRound, departedId)

	if len(room.PlayerIds) < core.MinPlayers {
		EndGame(room)
		return true
	}

	switch {
	case departedIndex < g.DrawerIndex:
		g.DrawerIndex--
	case departedIndex == g.DrawerIndex && g.DrawerIndex >= len(room.PlayerIds):
		g.DrawerIndex = 0
	}
	g.DrawerId = room.PlayerIds[g.DrawerIndex]
	return false
}

// TransitionPhase is the internal guard the Word Engine uses to move
// phases directly (word_select -> drawing on selection); it rejects any
// phase name outside the four recognized phases.
func TransitionPhase(room *core.Room, phase core.Phase) error {
	switch phase {
	case core.PhaseWordSelect, core.PhaseDrawing, core.PhaseRoundEnd, core.PhaseGameEnd:
		room.Game.Phase = phase
		return nil
	default:
		return core.New(core.ErrInvalidPayload)
	}
}
