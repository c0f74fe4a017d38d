package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelgames/sketchguess/internal/core"
	"github.com/kestrelgames/sketchguess/internal/wordbank"
)

func newDrawingReadyRoom(t *testing.T) *core.Room {
	t.Helper()
	room := newTestRoom("p1", "p2")
	assert.NoError(t, StartGame(room, "p1"))
	return room
}

func TestSelectWordRequiresWordSelectPhaseAndDrawer(t *testing.T) {
	room := newDrawingReadyRoom(t)

	assert.ErrorContains(t, SelectWord(room, "p2", "cat"), string(core.ErrNotDrawer))

	assert.NoError(t, SelectWord(room, "p1", " CAT "))
	assert.Equal(t, "cat", room.Game.SelectedWord)
	assert.Equal(t, wordbank.Mask("cat"), room.Game.MaskedWord)
	assert.Equal(t, core.PhaseDrawing, room.Game.Phase)
	assert.NotZero(t, room.Game.RoundStartTime)

	assert.ErrorContains(t, SelectWord(room, "p1", "dog"), string(core.ErrWrongPhase))
}

func TestAutoSelectWordPicksFromOptionsAndAdvancesPhase(t *testing.T) {
	room := newDrawingReadyRoom(t)
	word := AutoSelectWord(room)

	assert.NotEmpty(t, word)
	assert.Equal(t, word, room.Game.SelectedWord)
	assert.Equal(t, core.PhaseDrawing, room.Game.Phase)
}

func TestClearWordSelectionNullsSelection(t *testing.T) {
	room := newDrawingReadyRoom(t)
	assert.NoError(t, SelectWord(room, "p1", "cat"))

	ClearWordSelection(room)
	assert.Equal(t, "", room.Game.SelectedWord)
	assert.Equal(t, "", room.Game.MaskedWord)
}

func TestGenerateOptionsIncludesCustomWords(t *testing.T) {
	room := newDrawingReadyRoom(t)
	room.Settings.CustomWords = []string{"zzzquetzal"}

	found := false
	for i := 0; i < 200 && !found; i++ {
		for _, w := range GenerateOptions(room) {
			if w == "zzzquetzal" {
				found = true
			}
		}
	}
	assert.True(t, found, "a word present in the pool exactly once should eventually be sampled")
}
