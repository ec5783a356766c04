package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wricardo/wordle-rooms/game/engine"
)

var ErrPresetNotFound = errors.New("preset not found")

// roomServiceImpl implements the RoomService interface
type roomServiceImpl struct {
	rooms   RoomStore
	presets PresetStore
	conns   ConnectionCounter
}

// NewRoomService creates a new room service instance. conns may be nil.
func NewRoomService(rooms RoomStore, presets PresetStore, conns ConnectionCounter) RoomService {
	return &roomServiceImpl{
		rooms:   rooms,
		presets: presets,
		conns:   conns,
	}
}

// CreateRoom mints a room with explicit bounds
func (s *roomServiceImpl) CreateRoom(ctx context.Context, maxRounds, maxPlayers int) (*RoomInfo, error) {
	id, err := s.rooms.CreateRoom(maxRounds, maxPlayers)
	if err != nil {
		return nil, err
	}
	return s.GetRoom(ctx, id)
}

// CreateRoomFromPreset mints a room using a named preset, or the default
// preset when presetID is empty.
func (s *roomServiceImpl) CreateRoomFromPreset(ctx context.Context, presetID string) (*RoomInfo, error) {
	var preset *PresetInfo
	if presetID == "" {
		preset = s.presets.Default()
	} else {
		p, err := s.presets.Preset(presetID)
		if err != nil {
			if errors.Is(err, ErrPresetNotFound) {
				return nil, s.presetNotFound(presetID)
			}
			return nil, fmt.Errorf("failed to load preset %s: %w", presetID, err)
		}
		preset = p
	}

	return s.CreateRoom(ctx, preset.MaxRounds, preset.MaxPlayers)
}

// presetNotFound builds a helpful error listing the available presets
func (s *roomServiceImpl) presetNotFound(presetID string) error {
	available, err := s.presets.ListPresets()
	if err != nil || len(available) == 0 {
		return fmt.Errorf("%w: preset '%s' not found, use /api/v1/presets to list presets", engine.ErrInvalidConfiguration, presetID)
	}
	ids := make([]string, 0, len(available))
	for _, p := range available {
		ids = append(ids, p.ID)
	}
	return fmt.Errorf("%w: preset '%s' not found, available presets: %v", engine.ErrInvalidConfiguration, presetID, ids)
}

// GetRoom retrieves room information
func (s *roomServiceImpl) GetRoom(ctx context.Context, roomID string) (*RoomInfo, error) {
	g, err := s.rooms.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	return toRoomInfo(g.Snapshot()), nil
}

// ListRooms returns all live rooms, oldest first
func (s *roomServiceImpl) ListRooms(ctx context.Context) ([]*RoomInfo, error) {
	snaps := s.rooms.List()
	result := make([]*RoomInfo, 0, len(snaps))
	for _, snap := range snaps {
		result = append(result, toRoomInfo(snap))
	}
	return result, nil
}

// PruneIdleRooms deletes rooms nobody joined within maxAge
func (s *roomServiceImpl) PruneIdleRooms(ctx context.Context, maxAge time.Duration) int {
	return s.rooms.PruneIdle(maxAge)
}

// ListPresets returns every known preset
func (s *roomServiceImpl) ListPresets(ctx context.Context) ([]*PresetInfo, error) {
	return s.presets.ListPresets()
}

// Stats counts live rooms and connections
func (s *roomServiceImpl) Stats(ctx context.Context) Stats {
	st := Stats{Rooms: s.rooms.Count()}
	if s.conns != nil {
		st.Connections = s.conns.Count()
	}
	return st
}

func toRoomInfo(snap engine.Snapshot) *RoomInfo {
	return &RoomInfo{Snapshot: snap, PlayerCount: len(snap.Players)}
}
