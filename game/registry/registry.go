package registry

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/wordle-rooms/game/engine"
)

const (
	idAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength      = 6
	maxIDAttempts = 16
)

// Removal describes the outcome of RemovePlayer.
type Removal struct {
	Player engine.Player
	// Snapshot is the room after the player left. It is still valid when
	// RoomDeleted is true and then has no players.
	Snapshot    engine.Snapshot
	RoomDeleted bool
	// Completed is true when the departure left only finished players
	// behind and this call moved the game to COMPLETED.
	Completed bool
}

// Registry owns every live room, keyed by room id.
type Registry struct {
	rooms map[string]*engine.Game
	mu    sync.RWMutex

	newID func() (string, error)
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		rooms: make(map[string]*engine.Game),
		newID: generateRoomID,
	}
}

// CreateRoom mints a room with a fresh id and returns that id.
func (r *Registry) CreateRoom(maxRounds, maxPlayers int) (string, error) {
	if err := engine.ValidateSettings(maxRounds, maxPlayers); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := r.newID()
		if err != nil {
			return "", fmt.Errorf("%w: generate room id: %v", engine.ErrInternal, err)
		}
		id = normalizeID(id)
		if _, exists := r.rooms[id]; exists {
			log.Debug().Str("module", "game.registry").Str("room", id).Msg("room id collision, retrying")
			continue
		}

		g, err := engine.NewGame(id, maxRounds, maxPlayers)
		if err != nil {
			return "", err
		}
		r.rooms[id] = g

		log.Info().Str("module", "game.registry").Str("room", id).
			Int("maxRounds", maxRounds).Int("maxPlayers", maxPlayers).Msg("created room")
		return id, nil
	}

	return "", fmt.Errorf("%w: no free room id after %d attempts", engine.ErrInternal, maxIDAttempts)
}

// GetRoom looks up a room. Ids are case-insensitive.
func (r *Registry) GetRoom(id string) (*engine.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(id)
}

func (r *Registry) get(id string) (*engine.Game, error) {
	g, ok := r.rooms[normalizeID(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrRoomNotFound, id)
	}
	return g, nil
}

// FindRoomByPlayer returns the room the player is seated in.
func (r *Registry) FindRoomByPlayer(playerID string) (*engine.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.rooms {
		if g.HasPlayer(playerID) {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: no room holds player %s", engine.ErrRoomNotFound, playerID)
}

// AddPlayer seats a player in a room and returns the room snapshot and
// whether the player was newly seated. Re-adding a seated player succeeds
// with added false. On InvalidState the snapshot is still returned so
// callers can see whether the room is running or finished.
func (r *Registry) AddPlayer(roomID, playerID, name string) (engine.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, err := r.get(roomID)
	if err != nil {
		return engine.Snapshot{}, false, err
	}
	for _, other := range r.rooms {
		if other != g && other.HasPlayer(playerID) {
			return g.Snapshot(), false, fmt.Errorf("%w: player already seated in room %s", engine.ErrInvalidState, other.ID())
		}
	}

	snap, added, err := g.Join(engine.Player{ID: playerID, Name: name})
	if err != nil || !added {
		return snap, false, err
	}

	log.Info().Str("module", "game.registry").Str("room", g.ID()).Str("conn", playerID).Msg("player joined")
	return snap, true, nil
}

// RemovePlayer takes a player out of a room and deletes the room once it
// is empty. Deletion happens under the registry write lock so no join can
// race with it.
func (r *Registry) RemovePlayer(roomID, playerID string) (Removal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := r.get(roomID)
	if err != nil {
		return Removal{}, err
	}

	player, removed, completed := g.Leave(playerID)
	if !removed {
		return Removal{}, fmt.Errorf("%w: %s", engine.ErrPlayerNotFound, playerID)
	}

	res := Removal{Player: player, Completed: completed, Snapshot: g.Snapshot()}
	if len(res.Snapshot.Players) == 0 {
		delete(r.rooms, g.ID())
		res.RoomDeleted = true
		log.Info().Str("module", "game.registry").Str("room", g.ID()).Msg("deleted empty room")
	}

	log.Info().Str("module", "game.registry").Str("room", g.ID()).Str("conn", playerID).Msg("player left")
	return res, nil
}

// StartGame moves a room to IN_PROGRESS.
func (r *Registry) StartGame(roomID string) (engine.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, err := r.get(roomID)
	if err != nil {
		return engine.Snapshot{}, err
	}
	if err := g.StartGame(); err != nil {
		return g.Snapshot(), err
	}
	return g.Snapshot(), nil
}

// RecordScore applies a score in a room. See engine.Game.RecordScore.
func (r *Registry) RecordScore(roomID, playerID string, delta int) (engine.ScoreResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, err := r.get(roomID)
	if err != nil {
		return engine.ScoreResult{}, err
	}
	res, err := g.RecordScore(playerID, delta)
	if err == nil && res.Completed {
		log.Info().Str("module", "game.registry").Str("room", g.ID()).Msg("game completed")
	}
	return res, err
}

// List returns a snapshot of every room, oldest first.
func (r *Registry) List() []engine.Snapshot {
	r.mu.RLock()
	result := make([]engine.Snapshot, 0, len(r.rooms))
	for _, g := range r.rooms {
		result = append(result, g.Snapshot())
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Count returns the number of live rooms.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// PruneIdle deletes rooms that nobody joined within maxAge of creation.
func (r *Registry) PruneIdle(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, g := range r.rooms {
		if g.IsEmpty() && g.CreatedAt().Before(cutoff) {
			delete(r.rooms, id)
			removed++
		}
	}

	if removed > 0 {
		log.Info().Str("module", "game.registry").Int("removed", removed).Msg("pruned idle rooms")
	}
	return removed
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// generateRoomID returns idLength characters drawn uniformly from idAlphabet.
func generateRoomID() (string, error) {
	var sb strings.Builder
	sb.Grow(idLength)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := 0; i < idLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(idAlphabet[n.Int64()])
	}
	return sb.String(), nil
}
