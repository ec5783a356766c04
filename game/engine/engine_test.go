package engine

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, maxRounds, maxPlayers int) *Game {
	t.Helper()
	g, err := NewGame("ROOM01", maxRounds, maxPlayers)
	require.NoError(t, err)
	return g
}

func TestNewGame(t *testing.T) {
	g := newTestGame(t, 5, 2)

	assert.Equal(t, "ROOM01", g.ID())
	assert.Equal(t, WaitingForPlayers, g.State())
	assert.True(t, g.IsEmpty())
	assert.False(t, g.CreatedAt().IsZero())
}

func TestNewGame_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		maxRounds  int
		maxPlayers int
	}{
		{"empty id", "", 5, 2},
		{"zero rounds", "R", 0, 2},
		{"rounds at minimum boundary", "R", MinRounds - 1, 2},
		{"rounds above maximum", "R", MaxRounds + 1, 2},
		{"negative players", "R", 5, -1},
		{"single player", "R", 5, 1},
		{"players above maximum", "R", 5, MaxPlayers + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGame(tt.id, tt.maxRounds, tt.maxPlayers)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.Equal(t, KindInvalidConfiguration, KindOf(err))
		})
	}
}

func TestGame_AddPlayer(t *testing.T) {
	t.Run("capacity is enforced", func(t *testing.T) {
		g := newTestGame(t, 5, 2)
		require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "Alice"}))
		require.NoError(t, g.AddPlayer(Player{ID: "b", Name: "Bob"}))

		err := g.AddPlayer(Player{ID: "c", Name: "Carol"})
		assert.ErrorIs(t, err, ErrRoomFull)
		assert.Equal(t, 2, g.PlayerCount())
	})

	t.Run("re-adding is idempotent", func(t *testing.T) {
		g := newTestGame(t, 5, 2)
		require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "Alice"}))
		require.NoError(t, g.StartGame())
		require.NoError(t, g.IncrementScore("a", 7))

		require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "Someone else"}))

		p, ok := g.Snapshot().Player("a")
		require.True(t, ok)
		assert.Equal(t, "Alice", p.Name)
		assert.Equal(t, 7, p.Score)
		assert.Equal(t, 1, g.PlayerCount())
	})

	t.Run("re-adding into a full room succeeds", func(t *testing.T) {
		g := newTestGame(t, 5, 2)
		require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "Alice"}))
		require.NoError(t, g.AddPlayer(Player{ID: "b", Name: "Bob"}))
		assert.NoError(t, g.AddPlayer(Player{ID: "b", Name: "Bob"}))
	})

	t.Run("join reports whether a seat was taken", func(t *testing.T) {
		g := newTestGame(t, 5, 2)
		snap, added, err := g.Join(Player{ID: "a", Name: "Alice"})
		require.NoError(t, err)
		assert.True(t, added)
		assert.Len(t, snap.Players, 1)

		require.NoError(t, g.StartGame())
		snap, added, err = g.Join(Player{ID: "a", Name: "Alice"})
		require.NoError(t, err)
		assert.False(t, added)
		assert.Equal(t, InProgress, snap.State)
	})

	t.Run("joining after start is rejected", func(t *testing.T) {
		g := newTestGame(t, 5, 3)
		require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "Alice"}))
		require.NoError(t, g.StartGame())

		err := g.AddPlayer(Player{ID: "b", Name: "Bob"})
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.False(t, g.HasPlayer("b"))
	})

	t.Run("names are validated", func(t *testing.T) {
		g := newTestGame(t, 5, 3)
		assert.ErrorIs(t, g.AddPlayer(Player{ID: "a", Name: "   "}), ErrEmptyName)

		long := fmt.Sprintf("%040d", 0)
		assert.ErrorIs(t, g.AddPlayer(Player{ID: "a", Name: long}), ErrNameTooLong)

		require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "  Alice "}))
		p, _ := g.Snapshot().Player("a")
		assert.Equal(t, "Alice", p.Name)
	})
}

func TestGame_RemovePlayer(t *testing.T) {
	g := newTestGame(t, 5, 2)
	require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "Alice"}))

	g.RemovePlayer("missing")
	assert.Equal(t, 1, g.PlayerCount())

	g.RemovePlayer("a")
	assert.True(t, g.IsEmpty())
}

func TestGame_StateTransitions(t *testing.T) {
	g := newTestGame(t, 4, 2)

	assert.ErrorIs(t, g.EndGame(), ErrInvalidState, "a waiting game cannot skip to completed")
	assert.Equal(t, WaitingForPlayers, g.State())

	require.NoError(t, g.StartGame())
	require.NoError(t, g.StartGame(), "starting twice is idempotent")
	assert.Equal(t, InProgress, g.State())

	require.NoError(t, g.EndGame())
	require.NoError(t, g.EndGame(), "ending twice is idempotent")
	assert.Equal(t, Completed, g.State())

	assert.ErrorIs(t, g.StartGame(), ErrInvalidState, "completed games cannot restart")
	assert.Equal(t, Completed, g.State())
}

func TestGame_IncrementScore(t *testing.T) {
	t.Run("unknown player", func(t *testing.T) {
		g := newTestGame(t, 4, 2)
		require.NoError(t, g.StartGame())
		assert.ErrorIs(t, g.IncrementScore("ghost", 1), ErrPlayerNotFound)
	})

	t.Run("requires a running game", func(t *testing.T) {
		g := newTestGame(t, 4, 2)
		require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "Alice"}))
		assert.ErrorIs(t, g.IncrementScore("a", 1), ErrInvalidState)
	})

	t.Run("negative delta", func(t *testing.T) {
		g := newTestGame(t, 4, 2)
		require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "Alice"}))
		require.NoError(t, g.StartGame())
		err := g.IncrementScore("a", -3)
		assert.ErrorIs(t, err, ErrNegativeScore)
		assert.Equal(t, KindMalformedMessage, KindOf(err))
	})

	t.Run("score and round advance together", func(t *testing.T) {
		g := newTestGame(t, 4, 2)
		require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "Alice"}))
		require.NoError(t, g.StartGame())

		prevScore, prevRound := 0, 0
		for _, delta := range []int{3, 0, 10, 1, 5, 2} {
			require.NoError(t, g.IncrementScore("a", delta))
			p, _ := g.Snapshot().Player("a")
			assert.GreaterOrEqual(t, p.Score, prevScore)
			assert.Equal(t, prevRound+1, p.CurrentRound)
			prevScore, prevRound = p.Score, p.CurrentRound
		}
		assert.Equal(t, 21, prevScore)
	})

	t.Run("completion is recorded once", func(t *testing.T) {
		g := newTestGame(t, 4, 2)
		require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "Alice"}))
		require.NoError(t, g.AddPlayer(Player{ID: "b", Name: "Bob"}))
		require.NoError(t, g.StartGame())

		for i := 0; i < 6; i++ {
			require.NoError(t, g.IncrementScore("a", 1))
		}
		snap := g.Snapshot()
		require.Len(t, snap.CompletedPlayers, 1)
		assert.Equal(t, "a", snap.CompletedPlayers[0].ID)
	})
}

func TestGame_AllPlayersDone(t *testing.T) {
	g := newTestGame(t, 4, 2)
	assert.False(t, g.AllPlayersDone(), "an empty room is never done")

	require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "Alice"}))
	require.NoError(t, g.StartGame())
	assert.False(t, g.AllPlayersDone())

	for i := 0; i < 4; i++ {
		require.NoError(t, g.IncrementScore("a", 1))
	}
	assert.True(t, g.AllPlayersDone())
}

func TestGame_RecordScore(t *testing.T) {
	g := newTestGame(t, 5, 2)
	require.NoError(t, g.AddPlayer(Player{ID: "alice", Name: "Alice"}))
	require.NoError(t, g.AddPlayer(Player{ID: "bob", Name: "Bob"}))
	require.NoError(t, g.StartGame())

	for i := 0; i < 5; i++ {
		res, err := g.RecordScore("alice", 10)
		require.NoError(t, err)
		assert.False(t, res.Completed)
	}
	snap := g.Snapshot()
	require.Len(t, snap.CompletedPlayers, 1)
	assert.Equal(t, "Alice", snap.CompletedPlayers[0].Name)
	assert.Equal(t, InProgress, snap.State)

	var completions int
	for i := 0; i < 5; i++ {
		res, err := g.RecordScore("bob", 10)
		require.NoError(t, err)
		if res.Completed {
			completions++
			assert.Equal(t, Completed, res.Snapshot.State)
			assert.Equal(t, 50, res.Snapshot.Players["alice"].Score)
			assert.Equal(t, 50, res.Snapshot.Players["bob"].Score)
		}
	}
	assert.Equal(t, 1, completions)

	_, err := g.RecordScore("bob", 10)
	assert.ErrorIs(t, err, ErrInvalidState, "no scoring after completion")
}

func TestGame_Leave(t *testing.T) {
	t.Run("leaving completes the game when the rest are done", func(t *testing.T) {
		g := newTestGame(t, 4, 2)
		require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "Alice"}))
		require.NoError(t, g.AddPlayer(Player{ID: "b", Name: "Bob"}))
		require.NoError(t, g.StartGame())
		for i := 0; i < 4; i++ {
			_, err := g.RecordScore("a", 1)
			require.NoError(t, err)
		}

		p, removed, completed := g.Leave("b")
		assert.True(t, removed)
		assert.True(t, completed)
		assert.Equal(t, "Bob", p.Name)
		assert.Equal(t, Completed, g.State())
	})

	t.Run("leaving a waiting room does not complete it", func(t *testing.T) {
		g := newTestGame(t, 4, 2)
		require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "Alice"}))

		_, removed, completed := g.Leave("a")
		assert.True(t, removed)
		assert.False(t, completed)
		assert.Equal(t, WaitingForPlayers, g.State())
	})

	t.Run("completed players are forgotten on leave", func(t *testing.T) {
		g := newTestGame(t, 4, 3)
		require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "Alice"}))
		require.NoError(t, g.AddPlayer(Player{ID: "b", Name: "Bob"}))
		require.NoError(t, g.StartGame())
		for i := 0; i < 4; i++ {
			_, err := g.RecordScore("a", 1)
			require.NoError(t, err)
		}
		g.Leave("a")
		assert.Empty(t, g.Snapshot().CompletedPlayers)
	})

	t.Run("unknown player", func(t *testing.T) {
		g := newTestGame(t, 4, 2)
		_, removed, completed := g.Leave("ghost")
		assert.False(t, removed)
		assert.False(t, completed)
	})
}

func TestGame_ConcurrentJoins(t *testing.T) {
	const maxPlayers = 5
	g := newTestGame(t, 4, maxPlayers)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		full int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := g.Join(Player{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("Player %d", i)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case KindOf(err) == KindRoomFull:
				full++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, maxPlayers, ok)
	assert.Equal(t, 40-maxPlayers, full)
	assert.Equal(t, maxPlayers, g.PlayerCount())
}

func TestSnapshot_IsDetached(t *testing.T) {
	g := newTestGame(t, 4, 2)
	require.NoError(t, g.AddPlayer(Player{ID: "a", Name: "Alice"}))
	require.NoError(t, g.StartGame())

	snap := g.Snapshot()
	require.NoError(t, g.IncrementScore("a", 9))

	assert.Equal(t, 0, snap.Players["a"].Score)
	assert.ElementsMatch(t, []string{"a"}, snap.PlayerIDs())
}
