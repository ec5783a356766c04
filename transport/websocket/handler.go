package websocket

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/wordle-rooms/game/messages"
)

// Dispatcher is the part of the router the transport drives.
type Dispatcher interface {
	Dispatch(msg messages.Inbound)
	HandlePayload(connID string, data []byte) error
}

// Options tunes the connection handler.
type Options struct {
	// ReadLimit caps inbound frame size in bytes.
	ReadLimit int64
	// AllowedOrigins restricts the Origin header. Empty allows any origin.
	AllowedOrigins []string
}

// Handler upgrades /wordle requests and runs the connection lifecycle.
type Handler struct {
	dir       *Directory
	router    Dispatcher
	upgrader  websocket.Upgrader
	readLimit int64
}

// NewHandler creates the WebSocket endpoint.
func NewHandler(dir *Directory, router Dispatcher, opts Options) *Handler {
	h := &Handler{
		dir:       dir,
		router:    router,
		readLimit: opts.ReadLimit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(opts.AllowedOrigins),
		},
	}
	if h.readLimit <= 0 {
		h.readLimit = defaultReadLimit
	}
	return h
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeHTTP handles GET /wordle?roomId=...&playerName=...
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Str("module", "transport.websocket").Err(err).Msg("upgrade failed")
		return
	}

	q := r.URL.Query()
	roomID := q.Get("roomId")
	if roomID == "" {
		roomID = q.Get("roomID")
	}
	playerName := q.Get("playerName")
	if roomID == "" || strings.TrimSpace(playerName) == "" {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Missing roomId or playerName"),
			deadline())
		conn.Close()
		return
	}

	client := newClient(uuid.NewString(), conn)
	if err := h.dir.Register(client); err != nil {
		conn.Close()
		return
	}
	go client.writePump()

	log.Info().Str("module", "transport.websocket").Str("conn", client.ID()).Str("room", roomID).Msg("connection opened")

	h.router.Dispatch(messages.NewConnectionEstablished(client.ID()))
	h.router.Dispatch(messages.NewJoinRoom(client.ID(), roomID, playerName))

	go h.serve(client)
}

func (h *Handler) serve(c *Client) {
	defer func() {
		h.dir.Purge(c.ID())
		h.router.Dispatch(messages.NewPlayerLeft(c.ID()))
		log.Info().Str("module", "transport.websocket").Str("conn", c.ID()).Msg("connection closed")
	}()

	c.readPump(h.readLimit, func(data []byte) bool {
		err := h.router.HandlePayload(c.ID(), data)
		if err == nil {
			return true
		}
		reason := err.Error()
		var de *messages.DecodeError
		if errors.As(err, &de) {
			reason = de.Reason()
		}
		c.Close(websocket.ClosePolicyViolation, reason)
		return false
	})
}
