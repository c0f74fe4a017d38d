package game

import (
	"strings"

	"github.com/kestrelgames/sketchguess/internal/core"
	"github.com/kestrelgames/sketchguess/internal/wordbank"
)

// GenerateOptions builds the three-word option list a drawer chooses
// from, sampled from the room's pool (builtin plus its custom words).
func GenerateOptions(room *core.Room) []string {
	pool := wordbank.Pool(room.Settings.CustomWords)
	return wordbank.GenerateOptions(pool)
}

// SelectWord records the drawer's choice and moves the room into
// drawing. Requires phase = word_select and playerId = drawerId.
func SelectWord(room *core.Room, playerId, word string) error {
	g := room.Game
	if g.Phase != core.PhaseWordSelect {
		return core.New(core.ErrWrongPhase)
	}
	if playerId != g.DrawerId {
		return core.New(core.ErrNotDrawer)
	}

	normalized := strings.ToLower(strings.TrimSpace(word))
	g.SelectedWord = normalized
	g.MaskedWord = wordbank.Mask(normalized)
	g.RoundStartTime = nowMillis()
	return TransitionPhase(room, core.PhaseDrawing)
}

// AutoSelectWord is SelectWord's Timer-Service-driven counterpart: it
// picks the first of a freshly generated option list when word
// selection expires with no client choice.
func AutoSelectWord(room *core.Room) string {
	options := GenerateOptions(room)
	var word string
	if len(options) > 0 {
		word = options[0]
	}

	g := room.Game
	g.SelectedWord = word
	g.MaskedWord = wordbank.Mask(word)
	g.RoundStartTime = nowMillis()
	g.Phase = core.PhaseDrawing
	return word
}

// ClearWordSelection nulls the selected/masked word, used when a round
// resets without a game-state reset (e.g. returning to word_select).
func ClearWordSelection(room *core.Room) {
	g := room.Game
	g.SelectedWord = ""
	g.MaskedWord = ""
}
