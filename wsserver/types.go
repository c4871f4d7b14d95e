package wsserver

import (
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mo-shahab/pong-authority/auth"
	"github.com/mo-shahab/pong-authority/game"
	"github.com/mo-shahab/pong-authority/room"
)

// WebSocketHandler upgrades player connections and feeds their input to the
// engine. World updates reach the client through Room.
type WebSocketHandler struct {
	Upgrader websocket.Upgrader
	Engine   *game.Engine
	Room     *room.Room
	Issuer   *auth.Issuer
	log      zerolog.Logger
	players  playerLocks
}

type sessionResponse struct {
	PlayerID  string `json:"player_id"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}
