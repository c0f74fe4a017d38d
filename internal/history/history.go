// Package history implements the best-effort, write-only History Store:
// a record of finished games backed by github.com/jackc/pgx/v5. It is
// never consulted by the authoritative room/game path — losing it on
// crash does not violate the no-persistence non-goal. Grounded on the
// teacher's db.Health()-style "always something behind the interface"
// pattern implied by its pgx/testcontainers dependencies.
package history

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kestrelgames/sketchguess/internal/game"
)

// Summary is one finished game, recorded once from EndGame.
type Summary struct {
	RoomCode     string                 `json:"roomCode"`
	RoundsPlayed int                    `json:"roundsPlayed"`
	Leaderboard  []game.LeaderboardEntry `json:"leaderboard"`
	StartedAt    time.Time              `json:"startedAt"`
	EndedAt      time.Time              `json:"endedAt"`
}

// Recorder is the interface cmd/server's Router.OnGameEnded hook calls
// once per finished game. The server always has something behind it: either a real PostgresRecorder
// or the NoopRecorder when DATABASE_URL is unset.
type Recorder interface {
	Record(ctx context.Context, summary Summary)
	Health(ctx context.Context) map[string]string
	Close()
}

// NoopRecorder discards every summary; used when no DSN is configured.
type NoopRecorder struct{}

func (NoopRecorder) Record(ctx context.Context, summary Summary) {}

func (NoopRecorder) Health(ctx context.Context) map[string]string {
	return map[string]string{"status": "disabled", "message": "no DATABASE_URL configured"}
}

func (NoopRecorder) Close() {}

// PostgresRecorder appends finished-game summaries to a Postgres table.
// Every write runs on a detached goroutine, on its own short-timeout
// context, and never holds a room's mutex — a failure here is logged
// and swallowed, never surfaced to a client.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgresRecorder connects to dsn and ensures the history table
// exists, following the teacher's internal/server db bootstrap idiom
// (pgxpool.New + a startup ping) reconstructed here since the retrieval
// pack's own db.go was not included.
func NewPostgresRecorder(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	const schema = `
CREATE TABLE IF NOT EXISTS game_history (
	id           BIGSERIAL PRIMARY KEY,
	room_code    TEXT NOT NULL,
	rounds_played INT NOT NULL,
	leaderboard  JSONB NOT NULL,
	started_at   TIMESTAMPTZ NOT NULL,
	ended_at     TIMESTAMPTZ NOT NULL
)`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresRecorder{pool: pool}, nil
}

func (r *PostgresRecorder) Record(ctx context.Context, summary Summary) {
	go func() {
		writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		leaderboard, err := json.Marshal(summary.Leaderboard)
		if err != nil {
			log.Printf("[history.Record] room=%s marshal failed: %v", summary.RoomCode, err)
			return
		}

		_, err = r.pool.Exec(writeCtx,
			`INSERT INTO game_history (room_code, rounds_played, leaderboard, started_at, ended_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			summary.RoomCode, summary.RoundsPlayed, leaderboard, summary.StartedAt, summary.EndedAt,
		)
		if err != nil {
			log.Printf("[history.Record] room=%s insert failed: %v", summary.RoomCode, err)
		}
	}()
}

func (r *PostgresRecorder) Health(ctx context.Context) map[string]string {
	if err := r.pool.Ping(ctx); err != nil {
		return map[string]string{"status": "down", "error": err.Error()}
	}
	stat := r.pool.Stat()
	return map[string]string{
		"status":               "up",
		"open_connections":     strconv.Itoa(int(stat.TotalConns())),
		"idle_connections":     strconv.Itoa(int(stat.IdleConns())),
		"acquired_connections": strconv.Itoa(int(stat.AcquiredConns())),
	}
}

func (r *PostgresRecorder) Close() {
	r.pool.Close()
}
