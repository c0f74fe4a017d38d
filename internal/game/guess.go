package game

import (
	"strings"

	"github.com/kestrelgames/sketchguess/internal/core"
)

const (
	MinGuessLen = 1
	MaxGuessLen = 50
)

// NormalizeGuess trims and lowercases a raw guess string.
func NormalizeGuess(guess string) string {
	return strings.ToLower(strings.TrimSpace(guess))
}

// ValidateGuess adjudicates a guess against the room's selected word.
// Grounded on the teacher's HandleGuessEnhanced, stripped of its
// difficulty/position/speed-bonus plumbing — correctness here is strict
// equality against the normalized word, nothing more.
func ValidateGuess(room *core.Room, playerId, guess string) (correct bool, err error) {
	g := room.Game
	if g.Phase != core.PhaseDrawing {
		return false, core.New(core.ErrWrongPhase)
	}
	if playerId == g.DrawerId {
		return false, core.New(core.ErrDrawerCannotGuess)
	}
	if _, already := g.GuessedPlayers[playerId]; already {
		return false, core.New(core.ErrAlreadyGuessed)
	}
	if g.SelectedWord == "" {
		return false, core.New(core.ErrNoWord)
	}

	normalized := NormalizeGuess(guess)
	if len(normalized) < MinGuessLen {
		return false, core.New(core.ErrTooShort)
	}
	if len(normalized) > MaxGuessLen {
		return false, core.New(core.ErrTooLong)
	}

	if p, ok := room.Players[playerId]; ok {
		p.TotalGuesses++
	}

	if normalized != g.SelectedWord {
		return false, nil
	}

	g.GuessedPlayers[playerId] = struct{}{}
	return true, nil
}

// AllGuessersGuessed reports whether every non-drawer member of the
// room has guessed correctly this round.
func AllGuessersGuessed(room *core.Room) bool {
	g := room.Game
	return len(g.GuessedPlayers) >= len(room.PlayerIds)-1
}
