package core

import "sync"

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusInGame   RoomStatus = "in_game"
	StatusFinished RoomStatus = "finished"
)

type Phase string

const (
	PhaseWordSelect Phase = "word_select"
	PhaseDrawing    Phase = "drawing"
	PhaseRoundEnd   Phase = "round_end"
	PhaseGameEnd    Phase = "game_end"
)

// GameState holds everything that exists only while a room is in_game or
// finished. SelectedWord is read by the word/guess engines in this
// package tree only; no outbound serializer defined anywhere in the repo
// is allowed to carry it — GameStateView below has no such field, by
// construction.
type GameState struct {
	Phase          Phase
	CurrentRound   int
	TotalRounds    int
	DrawerIndex    int
	DrawerId       string
	StartedAt      int64 // unix millis, set once by startGame
	RoundStartTime int64 // unix millis
	SelectedWord   string
	MaskedWord     string
	GuessedPlayers map[string]struct{}
	// ScoredThisRound records the wall-clock ms at which a player was
	// first awarded points this round, so a duplicate correct guess
	// never scores twice (§4.8).
	ScoredThisRound map[string]int64
}

// Room is the authoritative state of one game room. Mu serializes every
// mutation and read of a room's fields; the Event Router and the Room
// Registry are the only callers that touch a Room's Mu directly.
type Room struct {
	Code     string
	OwnerId  string
	PlayerIds []string
	Players  map[string]*Player
	Settings Settings
	Status   RoomStatus
	Game     *GameState

	Mu sync.RWMutex
}

// PublicSettings mirrors Settings for serialization (customWords always
// serializes as an array, never null).
type PublicSettings struct {
	MaxPlayers  int      `json:"maxPlayers"`
	DrawTime    int      `json:"drawTime"`
	Rounds      int      `json:"rounds"`
	Hints       bool     `json:"hints"`
	CustomWords []string `json:"customWords"`
}

func toPublicSettings(s Settings) PublicSettings {
	words := s.CustomWords
	if words == nil {
		words = []string{}
	}
	return PublicSettings{
		MaxPlayers:  s.MaxPlayers,
		DrawTime:    s.DrawTime,
		Rounds:      s.Rounds,
		Hints:       s.Hints,
		CustomWords: words,
	}
}

// RoomView is the serialization of a Room for room_updated/room_created/
// etc. It never includes SelectedWord, and is the only representation of
// room membership sent to clients.
type RoomView struct {
	Code     string         `json:"code"`
	OwnerId  string         `json:"ownerId"`
	Players  []PublicPlayer `json:"players"`
	Settings PublicSettings `json:"settings"`
	Status   RoomStatus     `json:"status"`
}

// GameStateView is the serialization of GameState for game_state-bearing
// broadcasts. There is deliberately no field for SelectedWord.
type GameStateView struct {
	Phase          Phase    `json:"phase"`
	CurrentRound   int      `json:"currentRound"`
	TotalRounds    int      `json:"totalRounds"`
	DrawerId       string   `json:"drawerId"`
	DrawerIndex    int      `json:"drawerIndex"`
	GuessedPlayers []string `json:"guessedPlayers"`
	MaskedWord     string   `json:"maskedWord"`
}

// View renders the client-safe snapshot of a room. Callers must hold at
// least Mu.RLock().
func (r *Room) View() RoomView {
	players := make([]PublicPlayer, 0, len(r.PlayerIds))
	for _, id := range r.PlayerIds {
		p, ok := r.Players[id]
		if !ok {
			continue
		}
		players = append(players, PublicPlayer{
			Id:             p.Id,
			Name:           p.Name,
			IsOwner:        p.Id == r.OwnerId,
			Score:          p.Score,
			JoinedAt:       p.JoinedAt,
			TotalGuesses:   p.TotalGuesses,
			CorrectGuesses: p.CorrectGuesses,
			TimesDrawn:     p.TimesDrawn,
		})
	}
	return RoomView{
		Code:     r.Code,
		OwnerId:  r.OwnerId,
		Players:  players,
		Settings: toPublicSettings(r.Settings),
		Status:   r.Status,
	}
}

// GameView renders the client-safe snapshot of the room's game state, or
// the zero value if there is no active game. Callers must hold at least
// Mu.RLock().
func (r *Room) GameView() GameStateView {
	if r.Game == nil {
		return GameStateView{}
	}
	g := r.Game
	guessed := make([]string, 0, len(g.GuessedPlayers))
	for id := range g.GuessedPlayers {
		guessed = append(guessed, id)
	}
	return GameStateView{
		Phase:          g.Phase,
		CurrentRound:   g.CurrentRound,
		TotalRounds:    g.TotalRounds,
		DrawerId:       g.DrawerId,
		DrawerIndex:    g.DrawerIndex,
		GuessedPlayers: guessed,
		MaskedWord:     g.MaskedWord,
	}
}
