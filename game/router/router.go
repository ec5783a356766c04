package router

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/wordle-rooms/game/engine"
	"github.com/wricardo/wordle-rooms/game/messages"
	"github.com/wricardo/wordle-rooms/game/registry"
)

// Sender delivers outbound envelopes to connections. Unreachable
// connections are skipped silently.
type Sender interface {
	SendOne(connID string, msg messages.Outbound)
	SendMany(connIDs []string, msg messages.Outbound, exclude ...string)
}

// Router applies inbound messages to the registry and fans out the
// resulting state.
type Router struct {
	rooms *registry.Registry
	out   Sender
}

// New creates a router over rooms that delivers through out.
func New(rooms *registry.Registry, out Sender) *Router {
	return &Router{rooms: rooms, out: out}
}

// HandlePayload decodes a client payload and dispatches it. Decode
// failures are reported to the origin with an ERROR envelope and then
// returned so the transport can close the connection.
func (r *Router) HandlePayload(connID string, data []byte) error {
	msg, err := messages.Decode(connID, data)
	if err != nil {
		log.Debug().Str("module", "game.router").Str("conn", connID).Err(err).Msg("rejected payload")
		r.out.SendOne(connID, messages.Error(err))
		return err
	}
	r.Dispatch(msg)
	return nil
}

// Dispatch handles one message. Failures, including panics, become an
// ERROR envelope addressed to the originating connection only.
func (r *Router) Dispatch(msg messages.Inbound) {
	origin := msg.Origin()
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("module", "game.router").Str("conn", origin).
				Str("kind", string(msg.Kind())).Interface("panic", rec).Msg("handler panicked")
			r.out.SendOne(origin, messages.Error(fmt.Errorf("%w: %v", engine.ErrInternal, rec)))
		}
	}()

	if err := r.dispatch(msg); err != nil {
		ev := log.Debug()
		if engine.KindOf(err) == engine.KindInternal {
			ev = log.Error()
		}
		ev.Str("module", "game.router").Str("conn", origin).Str("kind", string(msg.Kind())).Err(err).Msg("message failed")
		r.out.SendOne(origin, messages.Error(err))
	}
}

func (r *Router) dispatch(msg messages.Inbound) error {
	switch m := msg.(type) {
	case messages.ConnectionEstablished:
		return r.connectionEstablished(m)
	case messages.JoinRoom:
		return r.joinRoom(m)
	case messages.StartGame:
		return r.startGame(m)
	case messages.IncrementScore:
		return r.incrementScore(m)
	case messages.PlayerLeft:
		return r.playerLeft(m)
	default:
		return fmt.Errorf("%w: %s", engine.ErrUnknownMessageKind, msg.Kind())
	}
}

func (r *Router) connectionEstablished(m messages.ConnectionEstablished) error {
	r.out.SendOne(m.Origin(), messages.PlayerSet(m.Origin()))
	return nil
}

func (r *Router) joinRoom(m messages.JoinRoom) error {
	snap, added, err := r.rooms.AddPlayer(m.RoomID, m.Origin(), m.PlayerName)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidState) {
			switch snap.State {
			case engine.InProgress:
				r.out.SendOne(m.Origin(), messages.GameInProgress())
				return nil
			case engine.Completed:
				r.out.SendOne(m.Origin(), messages.GameOver())
				return nil
			}
		}
		return err
	}

	p, _ := snap.Player(m.Origin())
	if !added {
		// Already seated: acknowledge the repeat without telling the room.
		r.out.SendOne(m.Origin(), messages.PlayerJoined(p.Name, snap))
		return nil
	}
	r.out.SendMany(snap.PlayerIDs(), messages.PlayerJoined(p.Name, snap))
	return nil
}

func (r *Router) startGame(m messages.StartGame) error {
	snap, err := r.rooms.StartGame(m.RoomID)
	if err != nil {
		return err
	}
	log.Info().Str("module", "game.router").Str("room", snap.ID).Str("conn", m.Origin()).Msg("game started")
	return nil
}

func (r *Router) incrementScore(m messages.IncrementScore) error {
	res, err := r.rooms.RecordScore(m.RoomID, m.Origin(), m.Delta())
	if err != nil {
		return err
	}

	ids := res.Snapshot.PlayerIDs()
	r.out.SendOne(m.Origin(), messages.ScoreUpdated(res.Player.Name, res.Snapshot))
	r.out.SendMany(ids, messages.PlayerMovedForward(res.Player.Name, res.Snapshot), m.Origin())
	if res.Completed {
		r.out.SendMany(ids, messages.GameCompleted(res.Snapshot))
	}
	return nil
}

func (r *Router) playerLeft(m messages.PlayerLeft) error {
	g, err := r.rooms.FindRoomByPlayer(m.Origin())
	if err != nil {
		return err
	}
	rem, err := r.rooms.RemovePlayer(g.ID(), m.Origin())
	if err != nil {
		return err
	}
	if rem.RoomDeleted {
		return nil
	}

	ids := rem.Snapshot.PlayerIDs()
	r.out.SendMany(ids, messages.PlayerLeftNotice(rem.Player.Name, rem.Snapshot))
	if rem.Completed {
		r.out.SendMany(ids, messages.GameCompleted(rem.Snapshot))
	}
	return nil
}
