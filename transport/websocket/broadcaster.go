package websocket

import (
	"github.com/rs/zerolog/log"

	"github.com/wricardo/wordle-rooms/game/messages"
)

// Broadcaster delivers outbound envelopes through a Directory. Targets are
// resolved first; a message with at least one reachable target is
// serialized once and the same bytes are queued for every target. Sends
// never block on a slow peer.
type Broadcaster struct {
	dir    *Directory
	encode func(messages.Outbound) ([]byte, error)
}

// NewBroadcaster creates a broadcaster over dir.
func NewBroadcaster(dir *Directory) *Broadcaster {
	return &Broadcaster{dir: dir, encode: messages.Outbound.Encode}
}

// SendOne delivers msg to a single connection.
func (b *Broadcaster) SendOne(connID string, msg messages.Outbound) {
	c, ok := b.dir.Get(connID)
	if !ok {
		log.Debug().Str("module", "transport.websocket").Str("conn", connID).Str("type", string(msg.Type)).Msg("target unreachable, skipped")
		return
	}

	data, err := b.encode(msg)
	if err != nil {
		log.Error().Str("module", "transport.websocket").Str("type", string(msg.Type)).Err(err).Msg("failed to encode message")
		return
	}
	c.Enqueue(data)
}

// SendMany delivers msg to every reachable connection in connIDs except
// those listed in exclude.
func (b *Broadcaster) SendMany(connIDs []string, msg messages.Outbound, exclude ...string) {
	targets := make([]string, 0, len(connIDs))
	for _, id := range connIDs {
		if !contains(exclude, id) {
			targets = append(targets, id)
		}
	}

	conns := b.dir.GetMany(targets)
	if skipped := len(targets) - len(conns); skipped > 0 {
		log.Debug().Str("module", "transport.websocket").Str("type", string(msg.Type)).Int("skipped", skipped).Msg("targets unreachable, skipped")
	}
	if len(conns) == 0 {
		return
	}

	data, err := b.encode(msg)
	if err != nil {
		log.Error().Str("module", "transport.websocket").Str("type", string(msg.Type)).Err(err).Msg("failed to encode message")
		return
	}
	for _, c := range conns {
		c.Enqueue(data)
	}
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
