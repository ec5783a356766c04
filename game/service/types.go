package service

import (
	"github.com/wricardo/wordle-rooms/game/engine"
)

// RoomInfo is the operator view of a room.
type RoomInfo struct {
	engine.Snapshot
	PlayerCount int `json:"playerCount"`
}

// PresetInfo describes a named room configuration.
type PresetInfo struct {
	ID          string `json:"id" mapstructure:"id"` // The identifier to use for room creation
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
	MaxRounds   int    `json:"maxRounds" mapstructure:"max_rounds"`
	MaxPlayers  int    `json:"maxPlayers" mapstructure:"max_players"`
	Filename    string `json:"filename,omitempty" mapstructure:"-"`
}

// Stats is a point-in-time count of live rooms and connections.
type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}
