// Package httpapi registers the server's HTTP surface with
// github.com/gorilla/mux: the websocket upgrade route, a couple of
// small JSON endpoints, and the CORS/recovery middleware every other
// route runs behind. Grounded on the teacher's internal/server/routes.go
// (corsMiddleware, healthHandler calling db.Health(), GetRoomToJoin),
// reconstructed as a router-building function instead of a package-level
// *mux.Router so cmd/server owns the *http.Server lifecycle.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"

	"github.com/kestrelgames/sketchguess/internal/game"
	"github.com/kestrelgames/sketchguess/internal/history"
	"github.com/kestrelgames/sketchguess/internal/playerreg"
	"github.com/kestrelgames/sketchguess/internal/roomreg"
	"github.com/kestrelgames/sketchguess/internal/transport"
)

// Deps bundles everything the HTTP layer needs to answer a request.
type Deps struct {
	Players *playerreg.Registry
	Rooms   *roomreg.Registry
	Router  *game.Router
	History history.Recorder
}

// NewRouter builds the complete mux.Router, CORS and recovery middleware
// included.
func NewRouter(deps Deps) *mux.Router {
	r := mux.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(corsMiddleware)

	r.HandleFunc("/", helloHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/health", healthHandler(deps)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/rooms-available", roomsAvailableHandler(deps)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/ws/{roomCode}", wsHandler(deps)).Methods(http.MethodGet)

	return r
}

func helloHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "sketchguess game server"})
}

// healthHandler reports liveness plus the History Store's own health, in
// the shape of the teacher's healthHandler calling s.db.Health().
func healthHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{
			"status":  "ok",
			"players": deps.Players.Count(),
			"rooms":   deps.Rooms.Count(),
		}
		if deps.History != nil {
			status["history"] = deps.History.Health(r.Context())
		}
		writeJSON(w, http.StatusOK, status)
	}
}

// roomsAvailableHandler mirrors the teacher's GetRoomToJoin: the code of
// one room that can accept a new player right now, if any.
func roomsAvailableHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := deps.Rooms.Joinable()
		if code == "" {
			writeJSON(w, http.StatusOK, map[string]any{"available": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"available": true, "roomCode": code})
	}
}

// wsHandler upgrades the connection and hands the read loop to
// transport.Serve, wired to the Event Router. {roomCode} in the path is
// informational only — room membership is negotiated over the socket
// via join_room/create_room, matching the spec's inbound event contract
// rather than binding a room at connect time.
func wsHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transport.Serve(w, r, deps.Router.OnConnect, deps.Router.Dispatch, deps.Router.OnDisconnect)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[httpapi] response encode failed: %v", err)
	}
}

// corsMiddleware mirrors the teacher's hand-rolled CORS handler: wide
// open origin, GET/POST, OPTIONS short-circuited.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoveryMiddleware keeps a panicking handler from taking the whole
// process down with it — gorilla/mux does not recover by default, per
// §7's note that this is added explicitly alongside corsMiddleware.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[httpapi] panic handling %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				w.WriteHeader(http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
