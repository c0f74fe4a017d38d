package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelgames/sketchguess/internal/core"
	"github.com/kestrelgames/sketchguess/internal/game"
	"github.com/kestrelgames/sketchguess/internal/history"
	"github.com/kestrelgames/sketchguess/internal/playerreg"
	"github.com/kestrelgames/sketchguess/internal/roomreg"
	"github.com/kestrelgames/sketchguess/internal/timer"
)

func newTestDeps() Deps {
	players := playerreg.New()
	rooms := roomreg.New(players)
	router := game.NewRouter(players, rooms, timer.New())
	return Deps{Players: players, Rooms: rooms, Router: router, History: history.NoopRecorder{}}
}

func TestHealthHandlerReportsCountsAndHistoryStatus(t *testing.T) {
	deps := newTestDeps()
	owner := deps.Players.Create(new(int))
	_, err := deps.Rooms.Create(owner, core.DefaultSettings())
	assert.NoError(t, err)

	mux := NewRouter(deps)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["players"])
	assert.Equal(t, float64(1), body["rooms"])
	assert.Equal(t, "disabled", body["history"].(map[string]any)["status"])
}

func TestRoomsAvailableHandlerReflectsJoinability(t *testing.T) {
	deps := newTestDeps()
	mux := NewRouter(deps)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms-available", nil))
	var empty map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &empty))
	assert.Equal(t, false, empty["available"])

	owner := deps.Players.Create(new(int))
	room, err := deps.Rooms.Create(owner, core.DefaultSettings())
	assert.NoError(t, err)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms-available", nil))
	var available map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &available))
	assert.Equal(t, true, available["available"])
	assert.Equal(t, room.Code, available["roomCode"])
}

func TestCorsMiddlewareShortCircuitsOptions(t *testing.T) {
	deps := newTestDeps()
	mux := NewRouter(deps)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
