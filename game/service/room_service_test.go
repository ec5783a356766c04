package service_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/wordle-rooms/game/engine"
	"github.com/wricardo/wordle-rooms/game/registry"
	"github.com/wricardo/wordle-rooms/game/service"
)

// MockPresetStore implements service.PresetStore for testing
type MockPresetStore struct {
	presets map[string]*service.PresetInfo
}

func NewMockPresetStore() *MockPresetStore {
	return &MockPresetStore{
		presets: map[string]*service.PresetInfo{
			"classic": {ID: "classic", Name: "Classic", MaxRounds: 5, MaxPlayers: 2},
			"party":   {ID: "party", Name: "Party", MaxRounds: 10, MaxPlayers: 8},
		},
	}
}

func (m *MockPresetStore) Preset(id string) (*service.PresetInfo, error) {
	p, ok := m.presets[id]
	if !ok {
		return nil, service.ErrPresetNotFound
	}
	return p, nil
}

func (m *MockPresetStore) ListPresets() ([]*service.PresetInfo, error) {
	result := make([]*service.PresetInfo, 0, len(m.presets))
	for _, p := range m.presets {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockPresetStore) Default() *service.PresetInfo {
	return m.presets["classic"]
}

type fixedCounter int

func (c fixedCounter) Count() int { return int(c) }

func newService(t *testing.T) (service.RoomService, *registry.Registry) {
	t.Helper()
	rooms := registry.New()
	return service.NewRoomService(rooms, NewMockPresetStore(), fixedCounter(3)), rooms
}

func TestRoomService_CreateRoom(t *testing.T) {
	svc, rooms := newService(t)
	ctx := context.Background()

	t.Run("explicit bounds", func(t *testing.T) {
		info, err := svc.CreateRoom(ctx, 6, 4)
		require.NoError(t, err)
		assert.Len(t, info.ID, 6)
		assert.Equal(t, 6, info.MaxRounds)
		assert.Equal(t, 4, info.MaxPlayers)
		assert.Equal(t, engine.WaitingForPlayers, info.State)
		assert.Equal(t, 0, info.PlayerCount)

		_, err = rooms.GetRoom(info.ID)
		assert.NoError(t, err)
	})

	t.Run("invalid bounds", func(t *testing.T) {
		_, err := svc.CreateRoom(ctx, 0, 2)
		assert.ErrorIs(t, err, engine.ErrInvalidConfiguration)
	})
}

func TestRoomService_CreateRoomFromPreset(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	info, err := svc.CreateRoomFromPreset(ctx, "party")
	require.NoError(t, err)
	assert.Equal(t, 10, info.MaxRounds)
	assert.Equal(t, 8, info.MaxPlayers)

	info, err = svc.CreateRoomFromPreset(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 5, info.MaxRounds, "empty preset uses the default")

	_, err = svc.CreateRoomFromPreset(ctx, "nonexistent")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "classic")
	assert.Contains(t, err.Error(), "party")
}

func TestRoomService_GetRoom(t *testing.T) {
	svc, rooms := newService(t)
	ctx := context.Background()

	id, err := rooms.CreateRoom(5, 2)
	require.NoError(t, err)
	_, _, err = rooms.AddPlayer(id, "c1", "Alice")
	require.NoError(t, err)

	info, err := svc.GetRoom(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, info.PlayerCount)
	assert.Equal(t, "Alice", info.Players["c1"].Name)

	_, err = svc.GetRoom(ctx, "NOPE00")
	assert.ErrorIs(t, err, engine.ErrRoomNotFound)
}

func TestRoomService_ListRooms(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	rooms, err := svc.ListRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateRoom(ctx, 5, 2)
		require.NoError(t, err)
	}

	rooms, err = svc.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 3)
}

func TestRoomService_PruneAndStats(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, 5, 2)
	require.NoError(t, err)

	assert.Equal(t, service.Stats{Rooms: 1, Connections: 3}, svc.Stats(ctx))

	time.Sleep(2 * time.Millisecond)
	assert.Equal(t, 1, svc.PruneIdleRooms(ctx, time.Millisecond))
	assert.Equal(t, 0, svc.Stats(ctx).Rooms)
}

func TestRoomService_ListPresets(t *testing.T) {
	svc, _ := newService(t)

	presets, err := svc.ListPresets(context.Background())
	require.NoError(t, err)
	require.Len(t, presets, 2)
	assert.Equal(t, "classic", presets[0].ID)
}
