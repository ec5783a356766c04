package engine

import "time"

// State is the lifecycle phase of a room.
type State string

const (
	WaitingForPlayers State = "WAITING_FOR_PLAYERS"
	InProgress        State = "IN_PROGRESS"
	Completed         State = "COMPLETED"

	// Validation constants
	MinRounds     = 4
	MaxRounds     = 100
	MinPlayers    = 2
	MaxPlayers    = 50
	MaxNameLength = 32
)

// rank orders states so transitions can be checked for monotonicity.
func (s State) rank() int {
	switch s {
	case WaitingForPlayers:
		return 0
	case InProgress:
		return 1
	case Completed:
		return 2
	}
	return -1
}

// Player is a participant in a single room. ID is the connection id.
type Player struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Score        int    `json:"score"`
	CurrentRound int    `json:"currentRound"`
}

// Snapshot is a consistent, detached copy of a Game taken under its lock.
// It is safe to serialize and share after the lock is released.
type Snapshot struct {
	ID               string            `json:"id"`
	MaxRounds        int               `json:"maxRounds"`
	MaxPlayers       int               `json:"maxPlayers"`
	State            State             `json:"state"`
	Players          map[string]Player `json:"players"`
	CompletedPlayers []Player          `json:"completedPlayers"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// PlayerIDs returns the ids of every player in the snapshot.
func (s Snapshot) PlayerIDs() []string {
	ids := make([]string, 0, len(s.Players))
	for id := range s.Players {
		ids = append(ids, id)
	}
	return ids
}

// Player looks up a player in the snapshot.
func (s Snapshot) Player(id string) (Player, bool) {
	p, ok := s.Players[id]
	return p, ok
}

// ScoreResult is the outcome of RecordScore.
type ScoreResult struct {
	Player   Player
	Snapshot Snapshot
	// Completed is true only for the call that moved the game to COMPLETED.
	Completed bool
}
