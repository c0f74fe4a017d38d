package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAwardGuesserScalesWithElapsedTimeAndFloors(t *testing.T) {
	room := newTestRoom("p1", "p2")
	assert.NoError(t, StartGame(room, "p1"))
	assert.NoError(t, SelectWord(room, "p1", "cat"))
	room.Settings.DrawTime = 60
	room.Game.RoundStartTime = 1_000_000

	immediate := AwardGuesser(room, "p2", 1_000_000)
	assert.Equal(t, 200, immediate)

	room2 := newTestRoom("p1", "p2")
	assert.NoError(t, StartGame(room2, "p1"))
	assert.NoError(t, SelectWord(room2, "p1", "cat"))
	room2.Settings.DrawTime = 60
	room2.Game.RoundStartTime = 1_000_000
	late := AwardGuesser(room2, "p2", 1_000_000+60_000)
	assert.Equal(t, 100, late, "landing exactly at drawTime's end still pays the 100-point base")

	room3 := newTestRoom("p1", "p2")
	assert.NoError(t, StartGame(room3, "p1"))
	assert.NoError(t, SelectWord(room3, "p1", "cat"))
	room3.Settings.DrawTime = 60
	room3.Game.RoundStartTime = 1_000_000
	overtime := AwardGuesser(room3, "p2", 1_000_000+120_000)
	assert.Equal(t, 100, overtime, "elapsed past drawTime clamps the ratio to 1, same as landing exactly at the end")
}

func TestAwardGuesserIsIdempotentPerRound(t *testing.T) {
	room := newTestRoom("p1", "p2")
	assert.NoError(t, StartGame(room, "p1"))
	assert.NoError(t, SelectWord(room, "p1", "cat"))
	room.Settings.DrawTime = 60
	room.Game.RoundStartTime = 1_000_000

	first := AwardGuesser(room, "p2", 1_000_000+10_000)
	scoreAfterFirst := room.Players["p2"].Score

	second := AwardGuesser(room, "p2", 1_000_000+50_000)
	assert.Equal(t, first, second)
	assert.Equal(t, scoreAfterFirst, room.Players["p2"].Score, "a repeat award must not add points twice")
	assert.Equal(t, 1, room.Players["p2"].CorrectGuesses)
}

func TestAwardDrawerPaysFiftyPerGuesser(t *testing.T) {
	room := newTestRoom("p1", "p2", "p3")
	assert.NoError(t, StartGame(room, "p1"))
	assert.NoError(t, SelectWord(room, "p1", "cat"))

	ValidateGuess(room, "p2", "cat")
	ValidateGuess(room, "p3", "cat")

	award := AwardDrawer(room)
	assert.Equal(t, 100, award)
	assert.Equal(t, 100, room.Players["p1"].Score)
	assert.Equal(t, 1, room.Players["p1"].TimesDrawn)
}

func TestLeaderboardSortsByScoreDescendingStableOnTies(t *testing.T) {
	room := newTestRoom("p1", "p2", "p3")
	room.Players["p1"].Score = 50
	room.Players["p2"].Score = 100
	room.Players["p3"].Score = 100

	entries := Leaderboard(room)
	assert.Equal(t, "p2", entries[0].PlayerId)
	assert.Equal(t, "p3", entries[1].PlayerId, "ties keep PlayerIds insertion order")
	assert.Equal(t, "p1", entries[2].PlayerId)
}
