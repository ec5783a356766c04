package service

import (
	"context"
	"time"

	"github.com/wricardo/wordle-rooms/game/engine"
)

// RoomService defines the operator-facing room operations used by the
// REST API and the MCP tools.
type RoomService interface {
	// Rooms
	CreateRoom(ctx context.Context, maxRounds, maxPlayers int) (*RoomInfo, error)
	CreateRoomFromPreset(ctx context.Context, presetID string) (*RoomInfo, error)
	GetRoom(ctx context.Context, roomID string) (*RoomInfo, error)
	ListRooms(ctx context.Context) ([]*RoomInfo, error)
	PruneIdleRooms(ctx context.Context, maxAge time.Duration) int

	// Presets
	ListPresets(ctx context.Context) ([]*PresetInfo, error)

	Stats(ctx context.Context) Stats
}

// RoomStore defines room storage operations
type RoomStore interface {
	CreateRoom(maxRounds, maxPlayers int) (string, error)
	GetRoom(id string) (*engine.Game, error)
	List() []engine.Snapshot
	Count() int
	PruneIdle(maxAge time.Duration) int
}

// PresetStore handles preset lookup
type PresetStore interface {
	Preset(id string) (*PresetInfo, error)
	ListPresets() ([]*PresetInfo, error)
	Default() *PresetInfo
}

// ConnectionCounter reports how many connections are live.
type ConnectionCounter interface {
	Count() int
}
