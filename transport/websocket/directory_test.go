package websocket

import (
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/wordle-rooms/game/engine"
	"github.com/wricardo/wordle-rooms/game/messages"
)

// fakeConn records what the directory and broadcaster do with it.
type fakeConn struct {
	id string

	mu        sync.Mutex
	open      bool
	capacity  int
	received  [][]byte
	closeCode int
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, open: true, capacity: 16}
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Open() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *fakeConn) Enqueue(data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open || len(f.received) >= f.capacity {
		return false
	}
	f.received = append(f.received, data)
	return true
}

func (f *fakeConn) Close(code int, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.open {
		f.open = false
		f.closeCode = code
	}
}

func (f *fakeConn) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.received...)
}

func TestDirectory_Register(t *testing.T) {
	d := NewDirectory()

	require.NoError(t, d.Register(newFakeConn("a")))
	assert.Equal(t, 1, d.Count())

	closed := newFakeConn("b")
	closed.Close(websocket.CloseNormalClosure, "")
	assert.ErrorIs(t, d.Register(closed), ErrConnectionClosed)
	assert.Equal(t, 1, d.Count())
}

func TestDirectory_Purge(t *testing.T) {
	d := NewDirectory()
	c := newFakeConn("a")
	require.NoError(t, d.Register(c))

	d.Purge("a")
	assert.Equal(t, 0, d.Count())
	assert.False(t, c.Open())
	assert.Equal(t, websocket.CloseNormalClosure, c.closeCode)

	_, ok := d.Get("a")
	assert.False(t, ok)

	assert.NotPanics(t, func() { d.Purge("missing") })
}

func TestDirectory_GetMany(t *testing.T) {
	d := NewDirectory()
	a, b, c := newFakeConn("a"), newFakeConn("b"), newFakeConn("c")
	for _, conn := range []*fakeConn{a, b, c} {
		require.NoError(t, d.Register(conn))
	}
	c.Close(websocket.CloseGoingAway, "")

	got := d.GetMany([]string{"a", "b", "c", "zzz"})
	ids := make([]string, 0, len(got))
	for _, conn := range got {
		ids = append(ids, conn.ID())
	}
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	_, ok := d.Get("c")
	assert.False(t, ok, "closed connections are unreachable")
}

func TestBroadcaster_SendOne(t *testing.T) {
	d := NewDirectory()
	a := newFakeConn("a")
	require.NoError(t, d.Register(a))
	b := NewBroadcaster(d)

	b.SendOne("a", messages.PlayerSet("a"))
	b.SendOne("missing", messages.PlayerSet("missing"))

	got := a.messages()
	require.Len(t, got, 1)
	assert.JSONEq(t, `{"type":"PLAYER_SET","playerId":"a"}`, string(got[0]))
}

func TestBroadcaster_SendMany(t *testing.T) {
	d := NewDirectory()
	conns := map[string]*fakeConn{}
	for _, id := range []string{"a", "b", "c"} {
		conns[id] = newFakeConn(id)
		require.NoError(t, d.Register(conns[id]))
	}
	b := NewBroadcaster(d)

	g, err := engine.NewGame("ROOM01", 5, 3)
	require.NoError(t, err)

	b.SendMany([]string{"a", "b", "c", "gone"}, messages.GameCompleted(g.Snapshot()))

	first := conns["a"].messages()
	require.Len(t, first, 1)
	for _, id := range []string{"b", "c"} {
		got := conns[id].messages()
		require.Len(t, got, 1)
		assert.Equal(t, first[0], got[0], "every target gets identical bytes")
	}
}

func TestBroadcaster_EncodesOnlyForReachableTargets(t *testing.T) {
	d := NewDirectory()
	a := newFakeConn("a")
	require.NoError(t, d.Register(a))
	b := NewBroadcaster(d)

	encoded := 0
	b.encode = func(msg messages.Outbound) ([]byte, error) {
		encoded++
		return msg.Encode()
	}

	b.SendOne("missing", messages.GameOver())
	b.SendMany([]string{"gone", "also-gone"}, messages.GameOver())
	b.SendMany([]string{"a"}, messages.GameOver(), "a")
	assert.Equal(t, 0, encoded)
	assert.Empty(t, a.messages())

	b.SendOne("a", messages.GameOver())
	b.SendMany([]string{"a", "gone"}, messages.GameInProgress())
	assert.Equal(t, 2, encoded)
	assert.Len(t, a.messages(), 2)
}

func TestBroadcaster_Exclude(t *testing.T) {
	d := NewDirectory()
	a, b := newFakeConn("a"), newFakeConn("b")
	require.NoError(t, d.Register(a))
	require.NoError(t, d.Register(b))
	bc := NewBroadcaster(d)

	for i := 0; i < 10; i++ {
		bc.SendMany([]string{"a", "b"}, messages.GameInProgress(), "a")
	}
	bc.SendMany([]string{"a"}, messages.GameOver(), "a")

	assert.Empty(t, a.messages())
	assert.Len(t, b.messages(), 10)
}

func TestBroadcaster_SlowTargetDoesNotBlockOthers(t *testing.T) {
	d := NewDirectory()
	slow, fast := newFakeConn("slow"), newFakeConn("fast")
	slow.capacity = 1
	fast.capacity = 100
	require.NoError(t, d.Register(slow))
	require.NoError(t, d.Register(fast))
	b := NewBroadcaster(d)

	for i := 0; i < 20; i++ {
		b.SendMany([]string{"slow", "fast"}, messages.GameOver())
	}

	assert.Len(t, slow.messages(), 1)
	assert.Len(t, fast.messages(), 20)
}

func TestDirectory_CloseAll(t *testing.T) {
	d := NewDirectory()
	a, b := newFakeConn("a"), newFakeConn("b")
	require.NoError(t, d.Register(a))
	require.NoError(t, d.Register(b))

	assert.Equal(t, 2, d.CloseAll(websocket.CloseGoingAway, "server shutting down"))
	assert.False(t, a.Open())
	assert.False(t, b.Open())
	assert.Equal(t, websocket.CloseGoingAway, a.closeCode)
	assert.Empty(t, d.GetMany([]string{"a", "b"}))
}
