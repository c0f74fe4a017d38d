package roomreg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelgames/sketchguess/internal/core"
	"github.com/kestrelgames/sketchguess/internal/playerreg"
)

func newTestRegistry() (*Registry, *playerreg.Registry) {
	players := playerreg.New()
	return New(players), players
}

func TestCreateThenJoin(t *testing.T) {
	rooms, players := newTestRegistry()
	owner := players.Create(new(int))

	room, err := rooms.Create(owner, core.DefaultSettings())
	assert.NoError(t, err)
	assert.Equal(t, owner.Id, room.OwnerId)
	assert.Len(t, room.Code, codeLength)

	guest := players.Create(new(int))
	joined, err := rooms.Join(guest, room.Code)
	assert.NoError(t, err)
	assert.Equal(t, room.Code, joined.Code)
	assert.Equal(t, room.Code, guest.RoomCode)
	assert.Len(t, joined.PlayerIds, 2)
}

func TestJoinRejectsFullDuplicateAndMissingRooms(t *testing.T) {
	rooms, players := newTestRegistry()
	owner := players.Create(new(int))
	settings := core.DefaultSettings()
	settings.MaxPlayers = core.MinPlayers
	room, _ := rooms.Create(owner, settings)

	_, err := rooms.Join(owner, room.Code)
	assert.ErrorContains(t, err, string(core.ErrDuplicate))

	_, err = rooms.Join(players.Create(new(int)), "ZZZZZZ")
	assert.ErrorContains(t, err, string(core.ErrNotFound))

	guest := players.Create(new(int))
	_, err = rooms.Join(guest, room.Code)
	assert.NoError(t, err)

	overflow := players.Create(new(int))
	_, err = rooms.Join(overflow, room.Code)
	assert.ErrorContains(t, err, string(core.ErrFull))
}

func TestLeaveReassignsOwnerAndReportsIndex(t *testing.T) {
	rooms, players := newTestRegistry()
	owner := players.Create(new(int))
	room, _ := rooms.Create(owner, core.DefaultSettings())
	guest := players.Create(new(int))
	rooms.Join(guest, room.Code)

	left, destroyed, idx := rooms.Leave(owner)
	assert.False(t, destroyed)
	assert.Equal(t, 0, idx)
	assert.Equal(t, guest.Id, left.OwnerId)
	assert.Equal(t, "", owner.RoomCode)
}

func TestLeaveDestroysEmptyRoom(t *testing.T) {
	rooms, players := newTestRegistry()
	owner := players.Create(new(int))
	room, _ := rooms.Create(owner, core.DefaultSettings())

	left, destroyed, idx := rooms.Leave(owner)
	assert.Nil(t, left)
	assert.True(t, destroyed)
	assert.Equal(t, 0, idx)

	_, ok := rooms.Get(room.Code)
	assert.False(t, ok)
}

func TestUpdateSettingsOwnerOnlyAndWaitingOnly(t *testing.T) {
	rooms, players := newTestRegistry()
	owner := players.Create(new(int))
	room, _ := rooms.Create(owner, core.DefaultSettings())
	guest := players.Create(new(int))
	rooms.Join(guest, room.Code)

	err := rooms.UpdateSettings(guest, room, core.Settings{MaxPlayers: 5, DrawTime: 60, Rounds: 2})
	assert.ErrorContains(t, err, string(core.ErrNotOwner))

	err = rooms.UpdateSettings(owner, room, core.Settings{MaxPlayers: 5, DrawTime: 60, Rounds: 2})
	assert.NoError(t, err)
	assert.Equal(t, 5, room.Settings.MaxPlayers)

	third := players.Create(new(int))
	_, err = rooms.Join(third, room.Code)
	assert.NoError(t, err)

	err = rooms.UpdateSettings(owner, room, core.Settings{MaxPlayers: 1, DrawTime: 60, Rounds: 2})
	assert.ErrorContains(t, err, string(core.ErrTooSmall))
}

func TestJoinable(t *testing.T) {
	rooms, players := newTestRegistry()
	assert.Equal(t, "", rooms.Joinable())

	owner := players.Create(new(int))
	room, _ := rooms.Create(owner, core.DefaultSettings())
	assert.Equal(t, room.Code, rooms.Joinable())
}
