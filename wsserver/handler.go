package wsserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mo-shahab/pong-authority/auth"
	"github.com/mo-shahab/pong-authority/client"
	"github.com/mo-shahab/pong-authority/game"
	"github.com/mo-shahab/pong-authority/identity"
	"github.com/mo-shahab/pong-authority/protocol"
	"github.com/mo-shahab/pong-authority/room"
)

const (
	maxMessageSize    = 1 << 10
	pongWait          = 60 * time.Second
	disconnectTimeout = 5 * time.Second
)

// NewWebSocketHandler builds the /ws handler. An empty origin accepts any
// Origin header.
func NewWebSocketHandler(engine *game.Engine, rm *room.Room, issuer *auth.Issuer, origin string, logger zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		Upgrader: websocket.Upgrader{CheckOrigin: checkOrigin(origin)},
		Engine:   engine,
		Room:     rm,
		Issuer:   issuer,
		log:      logger.With().Str("component", "wsserver").Logger(),
	}
}

func checkOrigin(origin string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if origin == "" {
			return true
		}
		o := r.Header.Get("Origin")
		return o == "" || o == origin
	}
}

// ServeHTTP handles WebSocket connections. A valid token resumes its player;
// without one a new player is issued.
func (wsh *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	player, token, err := wsh.session(r)
	if errors.Is(err, auth.ErrInvalidToken) {
		wsh.log.Debug().Err(err).Msg("rejected websocket session")
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if err != nil {
		wsh.log.Error().Err(err).Msg("failed to issue session")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := wsh.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		wsh.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := client.New(conn, player, wsh.log)
	go c.WritePump()
	defer wsh.disconnect(c)

	ctx := r.Context()
	if err := wsh.connect(ctx, c); err != nil {
		return
	}
	wsh.send(c, func() ([]byte, error) { return protocol.EncodeWelcome(player, token) })

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.Log().Debug().Err(err).Msg("read failed")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		env, err := protocol.Decode(p)
		if err != nil {
			c.Log().Debug().Err(err).Msg("bad frame")
			wsh.send(c, func() ([]byte, error) { return protocol.EncodeError("invalid message") })
			continue
		}
		wsh.handleMessage(ctx, c, env)
	}
}

func (wsh *WebSocketHandler) session(r *http.Request) (identity.Identity, string, error) {
	if token := auth.FromRequest(r); token != "" {
		id, err := wsh.Issuer.Verify(token)
		return id, token, err
	}
	id := identity.New()
	token, _, err := wsh.Issuer.Issue(id)
	return id, token, err
}

func (wsh *WebSocketHandler) handleMessage(ctx context.Context, c *client.Client, env protocol.Envelope) {
	switch env.Type {
	case protocol.MsgMove:
		y, err := protocol.DecodeMove(env)
		if err != nil {
			wsh.send(c, func() ([]byte, error) { return protocol.EncodeError(err.Error()) })
			return
		}
		err = wsh.Engine.Move(ctx, c.PlayerID, y)
		if errors.Is(err, context.Canceled) {
			return
		}
		wsh.send(c, func() ([]byte, error) { return protocol.EncodeMoveResult(err) })

	default:
		c.Log().Debug().Str("type", string(env.Type)).Msg("unknown message type")
		wsh.send(c, func() ([]byte, error) { return protocol.EncodeError("unknown message type") })
	}
}

func (wsh *WebSocketHandler) send(c *client.Client, encode func() ([]byte, error)) {
	msg, err := encode()
	if err != nil {
		c.Log().Error().Err(err).Msg("failed to encode message")
		return
	}
	c.Send(msg)
}

// connect adds c to the room and tells the engine about its player. The
// player lock keeps this ordered against a concurrent disconnect.
func (wsh *WebSocketHandler) connect(ctx context.Context, c *client.Client) error {
	unlock := wsh.players.lock(c.PlayerID)
	defer unlock()

	wsh.Room.Join(c)
	return wsh.Engine.Post(ctx, game.ConnectRequest{PlayerID: c.PlayerID})
}

// disconnect tells the engine the player left once its last connection
// closes. The request context is gone by then, so it gets its own deadline.
func (wsh *WebSocketHandler) disconnect(c *client.Client) {
	unlock := wsh.players.lock(c.PlayerID)
	defer unlock()

	remaining := wsh.Room.Leave(c)
	c.Close()
	if remaining > 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	if err := wsh.Engine.Post(ctx, game.DisconnectRequest{PlayerID: c.PlayerID}); err != nil {
		c.Log().Warn().Err(err).Msg("could not post disconnect")
	}
}
