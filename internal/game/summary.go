package game

import "time"

// GameSummary is handed to the Event Router's OnGameEnded callback once
// per finished game; the server wires this into the History Store
// without this package importing it, keeping the dependency one-way.
type GameSummary struct {
	RoomCode     string
	RoundsPlayed int
	Leaderboard  []LeaderboardEntry
	StartedAt    time.Time
	EndedAt      time.Time
}
