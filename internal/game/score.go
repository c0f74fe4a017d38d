package game

import (
	"math"
	"sort"
	"time"

	"github.com/kestrelgames/sketchguess/internal/core"
)

// MinGuesserScore is the floor applied to every correct-guess award
// regardless of how late into drawTime it lands.
const MinGuesserScore = 10

// AwardGuesser computes and applies the time-weighted score for a
// correct guess landing at wall-clock nowMs, per the spec's exact
// formula (replacing the teacher's difficulty/position/speed-bonus
// CalculateGuessPoints entirely — this is the one place the teacher's
// algorithm is not the right HOW to keep). Idempotent per round: a
// second award for the same player returns the score already recorded
// in ScoredThisRound without re-awarding it.
func AwardGuesser(room *core.Room, playerId string, nowMs int64) int {
	g := room.Game
	if existing, already := g.ScoredThisRound[playerId]; already {
		return int(existing)
	}

	elapsedSeconds := float64(nowMs-g.RoundStartTime) / 1000
	ratio := elapsedSeconds / float64(room.Settings.DrawTime)
	ratio = math.Max(0, math.Min(1, ratio))

	score := int(math.Floor(100 + 100*(1-ratio)))
	if score < MinGuesserScore {
		score = MinGuesserScore
	}

	if p, ok := room.Players[playerId]; ok {
		p.Score += score
		p.CorrectGuesses++
	}
	g.ScoredThisRound[playerId] = int64(score)
	return score
}

// AwardDrawer computes and applies the end-of-round drawer bonus: 50
// points per player who guessed correctly this round. Awarded once per
// round by convention of the Event Router calling it exactly once from
// finishRound.
func AwardDrawer(room *core.Room) int {
	g := room.Game
	award := 50 * len(g.GuessedPlayers)
	if p, ok := room.Players[g.DrawerId]; ok {
		p.Score += award
		p.TimesDrawn++
	}
	return award
}

// LeaderboardEntry is one row of the sorted leaderboard. The
// JoinedAt/TotalGuesses/CorrectGuesses/TimesDrawn fields are the same
// ambient Player counters carried over from the teacher's Player
// struct; they ride along here so round_ended/game_ended broadcasts and
// the History Store's persisted summary expose them, not just Score.
type LeaderboardEntry struct {
	PlayerId       string    `json:"playerId"`
	Name           string    `json:"name"`
	Score          int       `json:"score"`
	JoinedAt       time.Time `json:"joinedAt"`
	TotalGuesses   int       `json:"totalGuesses"`
	CorrectGuesses int       `json:"correctGuesses"`
	TimesDrawn     int       `json:"timesDrawn"`
}

// Leaderboard returns every room member sorted by score descending,
// ties broken by player insertion order (PlayerIds order is stable
// under sort.SliceStable).
func Leaderboard(room *core.Room) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(room.PlayerIds))
	for _, id := range room.PlayerIds {
		p, ok := room.Players[id]
		if !ok {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			PlayerId:       p.Id,
			Name:           p.Name,
			Score:          p.Score,
			JoinedAt:       p.JoinedAt,
			TotalGuesses:   p.TotalGuesses,
			CorrectGuesses: p.CorrectGuesses,
			TimesDrawn:     p.TimesDrawn,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}
