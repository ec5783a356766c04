package engine

import (
	"fmt"
	"sync"
	"time"
)

// Game is one room: a bounded player set and a forward-only state machine.
// Every exported method takes the room lock, so a Game may be shared by the
// registry and any number of connection goroutines.
type Game struct {
	mu sync.Mutex

	id         string
	maxRounds  int
	maxPlayers int
	state      State
	players    map[string]*Player
	completed  []string
	createdAt  time.Time
}

// NewGame creates a room in WAITING_FOR_PLAYERS.
func NewGame(id string, maxRounds, maxPlayers int) (*Game, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: room id is required", ErrInvalidConfiguration)
	}
	if err := ValidateSettings(maxRounds, maxPlayers); err != nil {
		return nil, err
	}

	return &Game{
		id:         id,
		maxRounds:  maxRounds,
		maxPlayers: maxPlayers,
		state:      WaitingForPlayers,
		players:    make(map[string]*Player),
		createdAt:  time.Now().UTC(),
	}, nil
}

// ID returns the room id.
func (g *Game) ID() string { return g.id }

// CreatedAt returns when the room was created.
func (g *Game) CreatedAt() time.Time { return g.createdAt }

// State returns the current lifecycle phase.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// PlayerCount returns the number of seated players.
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players)
}

// IsEmpty reports whether the room has no players.
func (g *Game) IsEmpty() bool {
	return g.PlayerCount() == 0
}

// HasPlayer reports whether id is seated in the room.
func (g *Game) HasPlayer(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.players[id]
	return ok
}

// AddPlayer seats p. Re-adding an id that is already seated is a no-op.
func (g *Game) AddPlayer(p Player) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.addPlayer(p)
	return err
}

// addPlayer reports whether p took a new seat. A player already seated is
// not an error and does not count as added.
func (g *Game) addPlayer(p Player) (bool, error) {
	if _, ok := g.players[p.ID]; ok {
		return false, nil
	}
	if g.state != WaitingForPlayers {
		return false, fmt.Errorf("%w: cannot join a room in state %s", ErrInvalidState, g.state)
	}
	if len(g.players) >= g.maxPlayers {
		return false, fmt.Errorf("%w: limit is %d players", ErrRoomFull, g.maxPlayers)
	}

	name, err := NormalizeName(p.Name)
	if err != nil {
		return false, err
	}
	g.players[p.ID] = &Player{ID: p.ID, Name: name}
	return true, nil
}

// RemovePlayer drops id from the room. Absent ids are ignored.
func (g *Game) RemovePlayer(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removePlayer(id)
}

func (g *Game) removePlayer(id string) (Player, bool) {
	p, ok := g.players[id]
	if !ok {
		return Player{}, false
	}
	delete(g.players, id)
	for i, cid := range g.completed {
		if cid == id {
			g.completed = append(g.completed[:i], g.completed[i+1:]...)
			break
		}
	}
	return *p, true
}

// IncrementScore adds delta to the player's score and advances one round.
func (g *Game) IncrementScore(id string, delta int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.incrementScore(id, delta)
	return err
}

func (g *Game) incrementScore(id string, delta int) (*Player, error) {
	p, ok := g.players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	if delta < 0 {
		return nil, ErrNegativeScore
	}
	if g.state != InProgress {
		return nil, fmt.Errorf("%w: scores are only accepted while %s, room is %s",
			ErrInvalidState, InProgress, g.state)
	}

	p.Score += delta
	p.CurrentRound++
	if p.CurrentRound >= g.maxRounds && !g.isCompleted(id) {
		g.completed = append(g.completed, id)
	}
	return p, nil
}

func (g *Game) isCompleted(id string) bool {
	for _, cid := range g.completed {
		if cid == id {
			return true
		}
	}
	return false
}

// StartGame moves WAITING_FOR_PLAYERS to IN_PROGRESS. Starting a running
// game is a no-op; a completed game cannot be restarted.
func (g *Game) StartGame() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.transition(InProgress)
}

// EndGame moves the game to COMPLETED. Ending a completed game is a no-op.
// A game that never started cannot be ended.
func (g *Game) EndGame() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.transition(Completed)
}

func (g *Game) transition(to State) error {
	switch {
	case g.state == to:
		return nil
	case to.rank() != g.state.rank()+1:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, g.state, to)
	}
	g.state = to
	return nil
}

// AllPlayersDone reports whether every seated player reached maxRounds.
// A room with no players is never done.
func (g *Game) AllPlayersDone() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.allPlayersDone()
}

func (g *Game) allPlayersDone() bool {
	if len(g.players) == 0 {
		return false
	}
	for _, p := range g.players {
		if p.CurrentRound < g.maxRounds {
			return false
		}
	}
	return true
}

// RecordScore applies a score, then ends the game if that was the last
// outstanding round. Completed is set only on the call that ended it.
func (g *Game) RecordScore(id string, delta int) (ScoreResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.incrementScore(id, delta)
	if err != nil {
		return ScoreResult{Snapshot: g.snapshot()}, err
	}

	res := ScoreResult{Player: *p}
	res.Completed = g.completeIfDone()
	res.Snapshot = g.snapshot()
	return res, nil
}

// Leave removes id and ends the game if the players left behind have all
// finished. It reports the removed player and whether this call ended the
// game.
func (g *Game) Leave(id string) (player Player, removed, completed bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	player, removed = g.removePlayer(id)
	if removed {
		completed = g.completeIfDone()
	}
	return player, removed, completed
}

func (g *Game) completeIfDone() bool {
	if g.state != InProgress || !g.allPlayersDone() {
		return false
	}
	g.state = Completed
	return true
}

// Join seats p and returns the resulting snapshot and whether p was newly
// seated. The snapshot is returned on error as well so callers can report
// the state that refused the join.
func (g *Game) Join(p Player) (Snapshot, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	added, err := g.addPlayer(p)
	return g.snapshot(), added, err
}

// Snapshot returns a detached copy of the room.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() Snapshot {
	s := Snapshot{
		ID:               g.id,
		MaxRounds:        g.maxRounds,
		MaxPlayers:       g.maxPlayers,
		State:            g.state,
		Players:          make(map[string]Player, len(g.players)),
		CompletedPlayers: make([]Player, 0, len(g.completed)),
		CreatedAt:        g.createdAt,
	}
	for id, p := range g.players {
		s.Players[id] = *p
	}
	for _, id := range g.completed {
		if p, ok := g.players[id]; ok {
			s.CompletedPlayers = append(s.CompletedPlayers, *p)
		}
	}
	return s
}
