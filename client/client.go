package client

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mo-shahab/pong-authority/identity"
)

const (
	sendQueueSize = 100
	writeWait     = 10 * time.Second
	pingPeriod    = 25 * time.Second
)

// Client is one websocket connection. A player reconnecting with the same
// token has several Clients sharing a PlayerID.
type Client struct {
	ID       uuid.UUID
	PlayerID identity.Identity
	Conn     *websocket.Conn

	log       zerolog.Logger
	mu        sync.Mutex
	sendQueue chan []byte
	closed    bool
}

func New(conn *websocket.Conn, player identity.Identity, logger zerolog.Logger) *Client {
	id := uuid.New()
	return &Client{
		ID:        id,
		PlayerID:  player,
		Conn:      conn,
		log:       logger.With().Str("client", id.String()).Str("player", player.String()).Logger(),
		sendQueue: make(chan []byte, sendQueueSize),
	}
}

// Send queues msg for the writer without blocking. It reports false when the
// queue is full or the client is closed; the message is dropped.
func (c *Client) Send(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.sendQueue <- msg:
		return true
	default:
		c.log.Warn().Msg("dropping message, send queue full")
		return false
	}
}

// Log is the client's logger, tagged with its connection and player.
func (c *Client) Log() *zerolog.Logger {
	return &c.log
}

// Queue exposes the outbound messages.
func (c *Client) Queue() <-chan []byte {
	return c.sendQueue
}

// WritePump writes queued messages as binary frames and pings the peer until
// the client is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.sendQueue:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				c.log.Debug().Err(err).Msg("write failed")
				_ = c.Conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Conn.Close()
				return
			}
		}
	}
}

// Close stops the writer. It is safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.sendQueue)
}
