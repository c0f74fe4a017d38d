package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcwait "github.com/testcontainers/testcontainers-go/wait"
)

func TestNoopRecorderDiscardsAndReportsDisabled(t *testing.T) {
	var r NoopRecorder

	r.Record(context.Background(), Summary{RoomCode: "ABC123"})
	health := r.Health(context.Background())
	assert.Equal(t, "disabled", health["status"])
	r.Close()
}

// TestPostgresRecorderRoundTrip spins up a real Postgres via
// testcontainers-go, the same module the teacher's go.mod carries for
// its own integration suite. Skipped under -short since it needs a
// working Docker daemon.
func TestPostgresRecorderRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers-backed test in -short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("sketchguess"),
		postgres.WithUsername("sketchguess"),
		postgres.WithPassword("sketchguess"),
		testcontainers.WithWaitStrategy(
			tcwait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminating postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("container connection string: %v", err)
	}

	recorder, err := NewPostgresRecorder(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPostgresRecorder: %v", err)
	}
	defer recorder.Close()

	health := recorder.Health(ctx)
	assert.Equal(t, "up", health["status"])

	started := time.Now().Add(-5 * time.Minute)
	ended := time.Now()
	recorder.Record(ctx, Summary{
		RoomCode:     "ABC123",
		RoundsPlayed: 3,
		Leaderboard:  nil,
		StartedAt:    started,
		EndedAt:      ended,
	})

	assert.Eventually(t, func() bool {
		var count int
		row := recorder.pool.QueryRow(ctx, `SELECT count(*) FROM game_history WHERE room_code = $1`, "ABC123")
		if err := row.Scan(&count); err != nil {
			return false
		}
		return count == 1
	}, 5*time.Second, 100*time.Millisecond, "recorded summary should show up in game_history")
}
