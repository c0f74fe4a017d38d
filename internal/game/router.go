// Event Router: demultiplexes inbound transport.Envelope frames to the
// Player Registry, Room Registry, Game/Word/Guess/Score Engine and the
// Drawing Relay, then composes the matching outbound broadcasts. This
// file owns the one piece of the pack the distilled spec deliberately
// left as an interface boundary — grounded on the shape of the
// teacher's internal/game/websocket.go dispatch switch, but rebuilt
// around explicit dependency injection (the Timer Service receives
// callback closures here rather than reaching back into package
// globals) instead of the teacher's room-global Rooms map.
package game

import (
	"encoding/json"
	"log"
	"time"

	"github.com/kestrelgames/sketchguess/internal/core"
	"github.com/kestrelgames/sketchguess/internal/playerreg"
	"github.com/kestrelgames/sketchguess/internal/roomreg"
	"github.com/kestrelgames/sketchguess/internal/timer"
	"github.com/kestrelgames/sketchguess/internal/transport"
)

const wordSelectionTimeoutSeconds = 15

// Router is the Event Router component. OnGameEnded is optional; when
// set, it is called once per finished game (normal end-of-rounds or a
// departure that drops a room below the player minimum) so the server
// can feed the History Store without this package importing it.
type Router struct {
	Players     *playerreg.Registry
	Rooms       *roomreg.Registry
	Timers      *timer.Service
	Relay       *Relay
	OnGameEnded func(GameSummary)
}

// NewRouter wires a Router and its Drawing Relay together; the Relay's
// flush callback routes back through the Router so it can resolve the
// room's current drawer at flush time.
func NewRouter(players *playerreg.Registry, rooms *roomreg.Registry, timers *timer.Service) *Router {
	r := &Router{Players: players, Rooms: rooms, Timers: timers}
	r.Relay = NewRelay(r.broadcastDrawingBatch)
	return r
}

// --- inbound payload shapes (§6) ---

type setPlayerNamePayload struct {
	Name string `json:"name"`
}

type createRoomPayload struct {
	Settings *core.Settings `json:"settings"`
}

type joinRoomPayload struct {
	RoomId string `json:"roomId"`
}

type updateSettingsPayload struct {
	Settings core.Settings `json:"settings"`
}

type selectWordPayload struct {
	Word string `json:"word"`
}

type guessPayload struct {
	Guess string `json:"guess"`
}

// --- connection lifecycle ---

// OnConnect mints a player for a freshly upgraded session and greets it.
func (r *Router) OnConnect(session *transport.Session) {
	p := r.Players.Create(session)
	p.Conn = session.Conn
	r.sendTo(p, core.OutConnected, map[string]string{"playerId": p.Id, "name": p.Name})
}

// OnDisconnect runs the same room-departure path as an explicit
// leave_room, then forgets the player entirely.
func (r *Router) OnDisconnect(session *transport.Session) {
	p, ok := r.Players.BySession(session)
	if !ok {
		return
	}
	r.leaveCurrentRoom(p)
	r.Players.Remove(session)
}

// Dispatch routes one decoded frame to its handler. A payload that fails
// to decode is answered with an invalid_payload error to its sender; an
// event type this function does not recognize is logged and dropped.
func (r *Router) Dispatch(session *transport.Session, env transport.Envelope) {
	p, ok := r.Players.BySession(session)
	if !ok {
		log.Printf("[router.Dispatch] event=%s from unregistered session dropped", env.Type)
		return
	}

	switch env.Type {
	case core.EventSetPlayerName:
		r.handleSetPlayerName(p, env.Data)
	case core.EventCreateRoom:
		r.handleCreateRoom(p, env.Data)
	case core.EventJoinRoom:
		r.handleJoinRoom(p, env.Data)
	case core.EventLeaveRoom:
		r.handleLeaveRoomEvent(p)
	case core.EventUpdateRoomSettings:
		r.handleUpdateRoomSettings(p, env.Data)
	case core.EventStartGame:
		r.handleStartGame(p)
	case core.EventSelectWord:
		r.handleSelectWord(p, env.Data)
	case core.EventDrawStart, core.EventDrawMove, core.EventDrawEnd:
		r.handleDrawEvent(p, env.Type, env.Data)
	case core.EventClearCanvas:
		r.handleClearCanvas(p, env.Data)
	case core.EventGuess:
		r.handleGuess(p, env.Data)
	case core.EventPlayAgain:
		r.handlePlayAgain(p)
	default:
		log.Printf("[router.Dispatch] unknown event %q dropped", env.Type)
	}
}

// --- send/broadcast primitives ---

func (r *Router) sendTo(p *core.Player, eventType string, data any) {
	if err := p.SafeWriteJSON(core.Message[any]{Type: eventType, Data: data}); err != nil {
		log.Printf("[router] write to player=%s event=%s failed: %v", p.Id, eventType, err)
	}
}

func (r *Router) sendGameError(p *core.Player, kind core.Kind) {
	r.sendTo(p, core.OutGameError, core.ErrorData{Error: string(kind)})
}

func snapshotPlayers(room *core.Room) []*core.Player {
	players := make([]*core.Player, 0, len(room.PlayerIds))
	for _, id := range room.PlayerIds {
		if p, ok := room.Players[id]; ok {
			players = append(players, p)
		}
	}
	return players
}

// broadcastRoom snapshots membership under a read lock, then writes
// outside the lock — the teacher's SafeBroadcastToRoom pattern.
func (r *Router) broadcastRoom(room *core.Room, eventType string, data any) {
	room.Mu.RLock()
	players := snapshotPlayers(room)
	room.Mu.RUnlock()
	for _, p := range players {
		r.sendTo(p, eventType, data)
	}
}

func (r *Router) broadcastExcept(room *core.Room, exceptId, eventType string, data any) {
	room.Mu.RLock()
	players := snapshotPlayers(room)
	room.Mu.RUnlock()
	for _, p := range players {
		if p.Id == exceptId {
			continue
		}
		r.sendTo(p, eventType, data)
	}
}

// broadcastDrawingBatch is the Drawing Relay's onFlush callback: it
// resolves the room's current drawer and fans a batch of draw_move
// frames out to everyone else.
func (r *Router) broadcastDrawingBatch(roomCode string, batch []json.RawMessage) {
	room, ok := r.Rooms.Get(roomCode)
	if !ok {
		return
	}
	room.Mu.RLock()
	drawerId := ""
	if room.Game != nil {
		drawerId = room.Game.DrawerId
	}
	players := snapshotPlayers(room)
	room.Mu.RUnlock()

	for _, msg := range batch {
		for _, p := range players {
			if p.Id == drawerId {
				continue
			}
			r.sendTo(p, core.EventDrawMove, msg)
		}
	}
}

func (r *Router) emitDrawingStarted(players []*core.Player, drawerId, word, maskedWord string) {
	for _, p := range players {
		if p.Id == drawerId {
			r.sendTo(p, core.OutDrawingStarted, map[string]any{"word": word})
		} else {
			r.sendTo(p, core.OutDrawingStarted, map[string]any{"maskedWord": maskedWord})
		}
	}
}

func (r *Router) roomOf(p *core.Player) (*core.Room, bool) {
	if p.RoomCode == "" {
		return nil, false
	}
	return r.Rooms.Get(p.RoomCode)
}

// --- room membership handlers ---

func (r *Router) handleSetPlayerName(p *core.Player, raw json.RawMessage) {
	var payload setPlayerNamePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		r.sendTo(p, core.OutRoomError, core.ErrorData{Error: string(core.ErrInvalidPayload)})
		return
	}
	if err := r.Players.SetName(p, payload.Name); err != nil {
		kind, _ := core.AsKind(err)
		r.sendTo(p, core.OutRoomError, core.ErrorData{Error: string(kind)})
		return
	}

	r.sendTo(p, core.OutPlayerUpdated, core.PublicPlayer{Id: p.Id, Name: p.Name})
	if room, ok := r.roomOf(p); ok {
		room.Mu.RLock()
		view := room.View()
		room.Mu.RUnlock()
		r.broadcastRoom(room, core.OutRoomUpdated, view)
	}
}

func (r *Router) handleCreateRoom(p *core.Player, raw json.RawMessage) {
	var payload createRoomPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			r.sendTo(p, core.OutRoomError, core.ErrorData{Error: string(core.ErrInvalidPayload)})
			return
		}
	}

	settings := core.DefaultSettings()
	if payload.Settings != nil {
		settings = *payload.Settings
	}

	room, err := r.Rooms.Create(p, settings)
	if err != nil {
		kind, _ := core.AsKind(err)
		r.sendTo(p, core.OutRoomError, core.ErrorData{Error: string(kind)})
		return
	}

	room.Mu.RLock()
	view := room.View()
	room.Mu.RUnlock()
	r.sendTo(p, core.OutRoomCreated, view)
}

func (r *Router) handleJoinRoom(p *core.Player, raw json.RawMessage) {
	var payload joinRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		r.sendTo(p, core.OutRoomError, core.ErrorData{Error: string(core.ErrInvalidPayload)})
		return
	}

	room, err := r.Rooms.Join(p, payload.RoomId)
	if err != nil {
		kind, _ := core.AsKind(err)
		r.sendTo(p, core.OutRoomError, core.ErrorData{Error: string(kind)})
		return
	}

	room.Mu.RLock()
	view := room.View()
	room.Mu.RUnlock()
	r.sendTo(p, core.OutRoomJoined, view)
	r.broadcastRoom(room, core.OutRoomUpdated, view)
}

func (r *Router) handleLeaveRoomEvent(p *core.Player) {
	if p.RoomCode == "" {
		r.sendTo(p, core.OutRoomError, core.ErrorData{Error: string(core.ErrNotFound)})
		return
	}
	r.leaveCurrentRoom(p)
	r.sendTo(p, core.OutRoomLeft, nil)
}

// leaveCurrentRoom is shared by the explicit leave_room event and a
// dropped connection (OnDisconnect). If the departure happens mid-game,
// it adjusts drawer rotation (or ends the game outright if too few
// players remain) via HandleDeparture, implementing the resolved open
// question on rotation collapse (§9).
func (r *Router) leaveCurrentRoom(p *core.Player) {
	code := p.RoomCode
	if code == "" {
		return
	}
	departedId := p.Id

	room, destroyed, departedIndex := r.Rooms.Leave(p)
	if destroyed {
		r.Timers.Forget(code)
		r.Relay.Reset(code)
		return
	}
	if room == nil {
		return
	}

	room.Mu.Lock()
	gameEnded := false
	if room.Status == core.StatusInGame && room.Game != nil && departedIndex >= 0 {
		gameEnded = HandleDeparture(room, departedId, departedIndex)
	}
	view := room.View()
	room.Mu.Unlock()

	if gameEnded {
		r.finalizeGameEnd(room)
		return
	}
	r.broadcastRoom(room, core.OutRoomUpdated, view)
}

func (r *Router) handleUpdateRoomSettings(p *core.Player, raw json.RawMessage) {
	var payload updateSettingsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		r.sendTo(p, core.OutRoomSettingsError, core.ErrorData{Error: string(core.ErrInvalidPayload)})
		return
	}

	room, ok := r.roomOf(p)
	if !ok {
		r.sendTo(p, core.OutRoomSettingsError, core.ErrorData{Error: string(core.ErrNotFound)})
		return
	}

	if err := r.Rooms.UpdateSettings(p, room, payload.Settings); err != nil {
		kind, _ := core.AsKind(err)
		r.sendTo(p, core.OutRoomSettingsError, core.ErrorData{Error: string(kind)})
		return
	}

	room.Mu.RLock()
	view := room.View()
	room.Mu.RUnlock()
	r.broadcastRoom(room, core.OutRoomSettingsUpdated, view)
}

// --- game flow handlers ---

func (r *Router) handleStartGame(p *core.Player) {
	room, ok := r.roomOf(p)
	if !ok {
		r.sendGameError(p, core.ErrNotFound)
		return
	}

	room.Mu.Lock()
	err := StartGame(room, p.Id)
	view := room.View()
	room.Mu.Unlock()

	if err != nil {
		kind, _ := core.AsKind(err)
		r.sendGameError(p, kind)
		return
	}

	r.broadcastRoom(room, core.OutGameStarted, view)
	r.startWordSelectionPhase(room)
}

// startWordSelectionPhase broadcasts round_started, directs word_options
// to the drawer, and arms the word-selection countdown. Shared by
// handleStartGame (round 1) and beginNextRound (every later round).
func (r *Router) startWordSelectionPhase(room *core.Room) {
	room.Mu.Lock()
	drawerId := room.Game.DrawerId
	currentRound := room.Game.CurrentRound
	totalRounds := room.Game.TotalRounds
	options := GenerateOptions(room)
	drawer, drawerOk := room.Players[drawerId]
	roomCode := room.Code
	room.Mu.Unlock()

	r.broadcastRoom(room, core.OutRoundStarted, map[string]any{
		"currentRound": currentRound,
		"totalRounds":  totalRounds,
		"drawerId":     drawerId,
	})
	if drawerOk {
		r.sendTo(drawer, core.OutWordOptions, map[string]any{
			"options": options,
			"timeout": wordSelectionTimeoutSeconds,
		})
	}

	r.Timers.Start(roomCode, timer.KindWordSelection, timer.WordSelectionDuration,
		func(remaining int) {
			r.broadcastRoom(room, core.OutTimerTick, map[string]any{"remaining": remaining, "type": "word_selection"})
		},
		func() { r.expireWordSelection(roomCode) },
	)
}

func (r *Router) handleSelectWord(p *core.Player, raw json.RawMessage) {
	var payload selectWordPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		r.sendGameError(p, core.ErrInvalidPayload)
		return
	}

	room, ok := r.roomOf(p)
	if !ok {
		r.sendGameError(p, core.ErrNotFound)
		return
	}

	room.Mu.Lock()
	err := SelectWord(room, p.Id, payload.Word)
	var maskedWord, drawerId, word string
	var drawTime int
	var players []*core.Player
	if err == nil {
		maskedWord = room.Game.MaskedWord
		drawerId = room.Game.DrawerId
		word = room.Game.SelectedWord
		drawTime = room.Settings.DrawTime
		players = snapshotPlayers(room)
	}
	room.Mu.Unlock()

	if err != nil {
		kind, _ := core.AsKind(err)
		r.sendGameError(p, kind)
		return
	}

	r.broadcastRoom(room, core.OutWordSelected, map[string]any{"maskedWord": maskedWord, "autoSelected": false})
	r.emitDrawingStarted(players, drawerId, word, maskedWord)
	r.startDrawingTimer(room, drawTime)
}

// expireWordSelection is the Timer Service's onExpiry for a
// word_selection countdown: the drawer never chose, so the Word Engine
// auto-selects for them and the round proceeds exactly as if they had.
func (r *Router) expireWordSelection(roomCode string) {
	room, ok := r.Rooms.Get(roomCode)
	if !ok {
		return
	}

	room.Mu.Lock()
	if room.Game == nil || room.Game.Phase != core.PhaseWordSelect {
		room.Mu.Unlock()
		return
	}
	word := AutoSelectWord(room)
	maskedWord := room.Game.MaskedWord
	drawerId := room.Game.DrawerId
	drawTime := room.Settings.DrawTime
	players := snapshotPlayers(room)
	room.Mu.Unlock()

	r.broadcastRoom(room, core.OutWordSelected, map[string]any{"maskedWord": maskedWord, "autoSelected": true})
	r.emitDrawingStarted(players, drawerId, word, maskedWord)
	r.startDrawingTimer(room, drawTime)
}

func (r *Router) startDrawingTimer(room *core.Room, drawTimeSeconds int) {
	roomCode := room.Code
	r.Timers.Start(roomCode, timer.KindDrawing, time.Duration(drawTimeSeconds)*time.Second,
		func(remaining int) {
			r.broadcastRoom(room, core.OutTimerTick, map[string]any{"remaining": remaining, "type": "drawing"})
		},
		func() { r.finishRound(roomCode) },
	)
}

// --- drawing relay handlers ---

func (r *Router) handleDrawEvent(p *core.Player, eventType string, raw json.RawMessage) {
	room, ok := r.roomOf(p)
	if !ok {
		return
	}

	room.Mu.RLock()
	err := ValidateDrawer(room, p.Id)
	roomCode := room.Code
	room.Mu.RUnlock()
	if err != nil {
		// a spectator's stray stroke event is silently dropped, matching
		// the malformed-payload handling in §7 rather than surfaced as an
		// error to a client that isn't even the drawer.
		return
	}

	if eventType == core.EventDrawMove {
		if batch := r.Relay.HandleMove(roomCode, raw); batch != nil {
			r.broadcastDrawingBatch(roomCode, batch)
		}
		return
	}

	batch, standalone := r.Relay.FlushAndEmit(roomCode, raw)
	if batch != nil {
		r.broadcastDrawingBatch(roomCode, batch)
	}
	r.broadcastStandaloneDrawEvent(roomCode, eventType, standalone)
}

func (r *Router) handleClearCanvas(p *core.Player, raw json.RawMessage) {
	room, ok := r.roomOf(p)
	if !ok {
		return
	}

	room.Mu.RLock()
	err := ValidateDrawer(room, p.Id)
	roomCode := room.Code
	room.Mu.RUnlock()
	if err != nil {
		return
	}

	batch, standalone := r.Relay.FlushAndEmit(roomCode, raw)
	if batch != nil {
		r.broadcastDrawingBatch(roomCode, batch)
	}
	r.broadcastStandaloneDrawEvent(roomCode, core.EventClearCanvas, standalone)
}

func (r *Router) broadcastStandaloneDrawEvent(roomCode, eventType string, payload json.RawMessage) {
	room, ok := r.Rooms.Get(roomCode)
	if !ok {
		return
	}
	drawerId := ""
	room.Mu.RLock()
	if room.Game != nil {
		drawerId = room.Game.DrawerId
	}
	room.Mu.RUnlock()
	r.broadcastExcept(room, drawerId, eventType, payload)
}

// --- guessing & scoring ---

func (r *Router) handleGuess(p *core.Player, raw json.RawMessage) {
	var payload guessPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		r.sendGameError(p, core.ErrInvalidPayload)
		return
	}

	room, ok := r.roomOf(p)
	if !ok {
		r.sendGameError(p, core.ErrNotFound)
		return
	}

	room.Mu.Lock()
	correct, err := ValidateGuess(room, p.Id, payload.Guess)
	var score int
	var leaderboard []LeaderboardEntry
	allGuessed := false
	if err == nil && correct {
		score = AwardGuesser(room, p.Id, nowMillis())
		leaderboard = Leaderboard(room)
		allGuessed = AllGuessersGuessed(room)
	}
	roomCode := room.Code
	room.Mu.Unlock()

	if err != nil {
		kind, _ := core.AsKind(err)
		// these are UI races (drawer tried to guess, double-submit, guess
		// after the round already ended) rather than anything worth
		// surfacing as a game_error banner to the client.
		switch kind {
		case core.ErrDrawerCannotGuess, core.ErrAlreadyGuessed, core.ErrWrongPhase, core.ErrNoWord:
			return
		}
		r.sendGameError(p, kind)
		return
	}

	if !correct {
		r.broadcastRoom(room, core.OutChatMessage, map[string]any{
			"playerId": p.Id, "name": p.Name, "text": payload.Guess, "correct": false,
		})
		return
	}

	// A correct guess never echoes the guessed word back into chat —
	// that would spoil it for anyone reading scrollback after the fact.
	r.broadcastRoom(room, core.OutChatMessage, map[string]any{
		"playerId": p.Id, "name": p.Name, "text": p.Name + " guessed the word!", "correct": true,
	})
	r.broadcastRoom(room, core.OutCorrectGuess, map[string]any{"playerId": p.Id, "name": p.Name, "score": score})
	r.broadcastRoom(room, core.OutLeaderboardUpdate, leaderboard)

	if allGuessed {
		r.finishRound(roomCode)
	}
}

// finishRound ends the drawing phase — whether by timer expiry or by
// every guesser having guessed correctly — awards the drawer, and
// either finalizes the game or schedules the next drawer.
func (r *Router) finishRound(roomCode string) {
	room, ok := r.Rooms.Get(roomCode)
	if !ok {
		return
	}

	room.Mu.Lock()
	if room.Game == nil || room.Game.Phase != core.PhaseDrawing {
		room.Mu.Unlock()
		return
	}
	word := room.Game.SelectedWord
	drawerAward := AwardDrawer(room)
	gameEnded := EndRound(room)
	if gameEnded {
		EndGame(room)
	}
	leaderboard := Leaderboard(room)
	room.Mu.Unlock()

	r.Timers.Stop(roomCode)
	r.Relay.Reset(roomCode)

	r.broadcastRoom(room, core.OutRoundEnded, map[string]any{
		"word":        word,
		"drawerAward": drawerAward,
		"leaderboard": leaderboard,
	})

	if gameEnded {
		r.finalizeGameEnd(room)
		return
	}

	r.Timers.Start(roomCode, timer.KindInterRound, timer.InterRoundDuration,
		func(remaining int) {},
		func() { r.beginNextRound(roomCode) },
	)
}

func (r *Router) beginNextRound(roomCode string) {
	room, ok := r.Rooms.Get(roomCode)
	if !ok {
		return
	}

	room.Mu.Lock()
	if room.Game == nil {
		room.Mu.Unlock()
		return
	}
	ProgressToNextDrawer(room)
	room.Mu.Unlock()

	r.startWordSelectionPhase(room)
}

// finalizeGameEnd broadcasts game_ended and notifies OnGameEnded. Called
// whether the game ended by playing out its rounds (finishRound) or by
// a departure dropping the room below the player minimum
// (leaveCurrentRoom) — both paths leave room.Game in phase=game_end,
// status=finished before calling this.
func (r *Router) finalizeGameEnd(room *core.Room) {
	room.Mu.RLock()
	roundsPlayed := 0
	var startedAt int64
	if room.Game != nil {
		roundsPlayed = room.Game.CurrentRound
		startedAt = room.Game.StartedAt
	}
	leaderboard := Leaderboard(room)
	roomCode := room.Code
	room.Mu.RUnlock()

	r.Timers.Forget(roomCode)
	r.Relay.Reset(roomCode)

	r.broadcastRoom(room, core.OutGameEnded, map[string]any{
		"leaderboard":  leaderboard,
		"roundsPlayed": roundsPlayed,
	})

	if r.OnGameEnded != nil {
		r.OnGameEnded(GameSummary{
			RoomCode:     roomCode,
			RoundsPlayed: roundsPlayed,
			Leaderboard:  leaderboard,
			StartedAt:    time.UnixMilli(startedAt),
			EndedAt:      time.UnixMilli(nowMillis()),
		})
	}
}

func (r *Router) handlePlayAgain(p *core.Player) {
	room, ok := r.roomOf(p)
	if !ok {
		r.sendGameError(p, core.ErrNotFound)
		return
	}

	room.Mu.Lock()
	var err error
	switch {
	case room.OwnerId != p.Id:
		err = core.New(core.ErrNotOwner)
	case room.Status != core.StatusFinished:
		err = core.New(core.ErrNotWaiting)
	default:
		ResetGame(room)
	}
	view := room.View()
	roomCode := room.Code
	room.Mu.Unlock()

	if err != nil {
		kind, _ := core.AsKind(err)
		r.sendGameError(p, kind)
		return
	}

	r.Timers.Forget(roomCode)
	r.Relay.Reset(roomCode)
	r.broadcastRoom(room, core.OutGameReset, view)
}
