// Package room fans world updates out to every connected client.
package room

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mo-shahab/pong-authority/client"
	"github.com/mo-shahab/pong-authority/game"
	"github.com/mo-shahab/pong-authority/identity"
	"github.com/mo-shahab/pong-authority/paddle"
	"github.com/mo-shahab/pong-authority/protocol"
	"github.com/mo-shahab/pong-authority/scores"
)

// Room is the set of open connections. It implements game.EventHandler.
type Room struct {
	Mu      sync.RWMutex
	Clients map[uuid.UUID]*client.Client
	players map[identity.Identity]int
	log     zerolog.Logger
}

var _ game.EventHandler = (*Room)(nil)

func New(logger zerolog.Logger) *Room {
	return &Room{
		Clients: make(map[uuid.UUID]*client.Client),
		players: make(map[identity.Identity]int),
		log:     logger.With().Str("component", "room").Logger(),
	}
}

// Join adds c and returns how many connections its player now has.
func (r *Room) Join(c *client.Client) int {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if _, ok := r.Clients[c.ID]; ok {
		return r.players[c.PlayerID]
	}
	r.Clients[c.ID] = c
	r.players[c.PlayerID]++
	n := r.players[c.PlayerID]

	r.log.Debug().Str("client", c.ID.String()).Int("connections", n).Msg("client joined")
	return n
}

// Leave removes c and returns how many connections its player has left.
// Zero means the player is gone.
func (r *Room) Leave(c *client.Client) int {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if _, ok := r.Clients[c.ID]; !ok {
		return r.players[c.PlayerID]
	}
	delete(r.Clients, c.ID)
	r.players[c.PlayerID]--
	n := r.players[c.PlayerID]
	if n <= 0 {
		delete(r.players, c.PlayerID)
		n = 0
	}

	r.log.Debug().Str("client", c.ID.String()).Int("connections", n).Msg("client left")
	return n
}

func (r *Room) Len() int {
	r.Mu.RLock()
	defer r.Mu.RUnlock()
	return len(r.Clients)
}

// Broadcast queues msg on every client. Slow clients drop the message.
func (r *Room) Broadcast(msg []byte) {
	r.Mu.RLock()
	defer r.Mu.RUnlock()

	for _, c := range r.Clients {
		c.Send(msg)
	}
}

func (r *Room) OnSnapshot(s game.Snapshot) {
	if r.Len() == 0 {
		return
	}
	msg, err := protocol.EncodeSnapshot(s)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to encode snapshot")
		return
	}
	r.Broadcast(msg)
}

func (r *Room) OnScore(world scores.WorldState, scorer paddle.Side) {
	msg, err := protocol.EncodeScore(world, scorer)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to encode score")
		return
	}
	r.Broadcast(msg)
}
