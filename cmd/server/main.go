// Command server runs the sketchguess game server: it wires the Player
// and Room Registries, the Timer Service, the Event Router and Drawing
// Relay, the optional History Store, and the HTTP/websocket shell
// together, then serves until SIGINT/SIGTERM. Grounded on the teacher's
// implied cmd/api entrypoint (reconstructed here since the retrieval
// pack's own cmd/ and internal/server/server.go were not included) —
// the graceful-shutdown shape follows the standard net/http + signal.NotifyContext
// idiom the teacher's testcontainers/pgx dependencies imply a real
// service needs.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kestrelgames/sketchguess/internal/config"
	"github.com/kestrelgames/sketchguess/internal/game"
	"github.com/kestrelgames/sketchguess/internal/history"
	"github.com/kestrelgames/sketchguess/internal/httpapi"
	"github.com/kestrelgames/sketchguess/internal/playerreg"
	"github.com/kestrelgames/sketchguess/internal/roomreg"
	"github.com/kestrelgames/sketchguess/internal/timer"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recorder := newRecorder(ctx, cfg)
	defer recorder.Close()

	players := playerreg.New()
	rooms := roomreg.New(players)
	timers := timer.New()

	router := game.NewRouter(players, rooms, timers)
	router.OnGameEnded = func(summary game.GameSummary) {
		entries := make([]game.LeaderboardEntry, len(summary.Leaderboard))
		copy(entries, summary.Leaderboard)
		recorder.Record(ctx, history.Summary{
			RoomCode:     summary.RoomCode,
			RoundsPlayed: summary.RoundsPlayed,
			Leaderboard:  entries,
			StartedAt:    summary.StartedAt,
			EndedAt:      summary.EndedAt,
		})
	}

	mux := httpapi.NewRouter(httpapi.Deps{
		Players: players,
		Rooms:   rooms,
		Router:  router,
		History: recorder,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		log.Printf("[main] listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[main] shutdown signal received")

	timers.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[main] graceful shutdown error: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
		log.Printf("[main] shutdown complete")
	case <-time.After(cfg.ShutdownTimeout):
		log.Printf("[main] shutdown timed out after %s, forcing exit", cfg.ShutdownTimeout)
	}
}

// newRecorder returns a PostgresRecorder when DATABASE_URL is set and
// reachable, otherwise a NoopRecorder — the server always has something
// behind history.Recorder, matching the teacher's db.Health() pattern of
// never leaving the interface nil.
func newRecorder(ctx context.Context, cfg config.Config) history.Recorder {
	if cfg.DatabaseURL == "" {
		log.Printf("[main] DATABASE_URL not set, history store disabled")
		return history.NoopRecorder{}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	recorder, err := history.NewPostgresRecorder(connectCtx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("[main] history store connect failed, falling back to noop: %v", err)
		return history.NoopRecorder{}
	}
	return recorder
}
