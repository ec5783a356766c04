package websocket

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrConnectionClosed = errors.New("connection is not open")

// Directory maps connection ids to live connections. It knows nothing
// about rooms.
type Directory struct {
	conns map[string]Conn
	mu    sync.RWMutex
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{conns: make(map[string]Conn)}
}

// Register adds an open connection under its id.
func (d *Directory) Register(c Conn) error {
	if !c.Open() {
		return ErrConnectionClosed
	}

	d.mu.Lock()
	d.conns[c.ID()] = c
	total := len(d.conns)
	d.mu.Unlock()

	log.Debug().Str("module", "transport.websocket").Str("conn", c.ID()).Int("total", total).Msg("connection registered")
	return nil
}

// Purge removes a connection and closes it normally. Unknown ids are
// ignored.
func (d *Directory) Purge(id string) {
	d.mu.Lock()
	c, ok := d.conns[id]
	delete(d.conns, id)
	total := len(d.conns)
	d.mu.Unlock()

	if !ok {
		return
	}
	c.Close(websocket.CloseNormalClosure, "")
	log.Debug().Str("module", "transport.websocket").Str("conn", id).Int("total", total).Msg("connection purged")
}

// Get returns the connection for id if it is registered and open.
func (d *Directory) Get(id string) (Conn, bool) {
	d.mu.RLock()
	c, ok := d.conns[id]
	d.mu.RUnlock()

	if !ok || !c.Open() {
		return nil, false
	}
	return c, true
}

// GetMany returns the open connections among ids. Missing ones are
// skipped.
func (d *Directory) GetMany(ids []string) []Conn {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]Conn, 0, len(ids))
	for _, id := range ids {
		if c, ok := d.conns[id]; ok && c.Open() {
			result = append(result, c)
		}
	}
	return result
}

// Count returns the number of registered connections.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.conns)
}

// CloseAll closes every registered connection with code. Entries stay in
// place until each connection's own lifecycle purges them.
func (d *Directory) CloseAll(code int, reason string) int {
	d.mu.RLock()
	conns := make([]Conn, 0, len(d.conns))
	for _, c := range d.conns {
		conns = append(conns, c)
	}
	d.mu.RUnlock()

	for _, c := range conns {
		c.Close(code, reason)
	}
	return len(conns)
}
