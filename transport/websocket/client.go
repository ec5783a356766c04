package websocket

import (
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Default maximum message size allowed from peer.
	defaultReadLimit = 8192

	// Outbound messages buffered per connection before it is dropped.
	sendBuffer = 256

	// Close reasons are limited to 123 bytes by RFC 6455.
	maxCloseReason = 123
)

// Conn is a live connection as seen by the Directory and Broadcaster.
type Conn interface {
	ID() string
	Open() bool
	// Enqueue queues data without blocking and reports whether it was
	// accepted.
	Enqueue(data []byte) bool
	// Close sends a close frame after any queued messages and shuts the
	// connection down. Only the first call has an effect.
	Close(code int, reason string)
}

type closeFrame struct {
	code   int
	reason string
}

// Client is one WebSocket connection with its read and write pumps.
type Client struct {
	id   string
	conn *websocket.Conn

	send    chan []byte
	closing chan closeFrame
	done    chan struct{}

	closeOnce sync.Once
	closed    atomic.Bool
}

func newClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		closing: make(chan closeFrame, 1),
		done:    make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Open() bool { return !c.closed.Load() }

func (c *Client) Enqueue(data []byte) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		log.Warn().Str("module", "transport.websocket").Str("conn", c.id).Msg("send queue full, dropping connection")
		c.Close(websocket.CloseTryAgainLater, "send queue full")
		return false
	}
}

func (c *Client) Close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closing <- closeFrame{code: code, reason: truncateReason(reason)}
	})
}

// truncateReason fits reason into a close frame without splitting a
// UTF-8 sequence; peers reject close frames with invalid UTF-8.
func truncateReason(reason string) string {
	if len(reason) <= maxCloseReason {
		return reason
	}
	n := maxCloseReason
	for n > 0 && !utf8.RuneStart(reason[n]) {
		n--
	}
	return reason[:n]
}

// Done is closed once the write pump has exited and the socket is closed.
func (c *Client) Done() <-chan struct{} { return c.done }

// readPump delivers every text frame to handle until the connection fails
// or handle returns false.
func (c *Client) readPump(readLimit int64, handle func([]byte) bool) {
	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Str("module", "transport.websocket").Str("conn", c.id).Err(err).Msg("read failed")
			}
			return
		}
		if !handle(data) {
			return
		}
	}
}

// writePump writes queued messages, one frame each, and keeps the peer
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.done)
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.write(message); err != nil {
				c.closed.Store(true)
				return
			}

		case f := <-c.closing:
			for n := len(c.send); n > 0; n-- {
				if err := c.write(<-c.send); err != nil {
					return
				}
			}
			c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(f.code, f.reason), deadline())
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.closed.Store(true)
				return
			}
		}
	}
}

func (c *Client) write(message []byte) error {
	c.conn.SetWriteDeadline(deadline())
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

func deadline() time.Time {
	return time.Now().Add(writeWait)
}
