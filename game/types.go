package game

import (
	"github.com/mo-shahab/pong-authority/ball"
	"github.com/mo-shahab/pong-authority/identity"
	"github.com/mo-shahab/pong-authority/paddle"
	"github.com/mo-shahab/pong-authority/scheduler"
	"github.com/mo-shahab/pong-authority/scores"
)

// Snapshot is a committed, consistent view of every record.
type Snapshot struct {
	World   scores.WorldState
	Ball    ball.Ball
	Players []Player
}

// Player joins a player's side and paddle records.
type Player struct {
	ID   identity.Identity
	Side paddle.Side
	Y    float32
}

// EventHandler receives world changes after they commit. Calls are made
// from the goroutine running the handler and must not block for long.
type EventHandler interface {
	OnSnapshot(s Snapshot)
	OnScore(world scores.WorldState, scorer paddle.Side)
}

// Scheduler is the periodic-invocation facility. Identity is the only
// caller Tick accepts.
type Scheduler interface {
	Identity() identity.Identity
	Register(s scheduler.TickSchedule, fire func(caller identity.Identity)) error
}

// Messages accepted by Engine.Post.
type (
	// ConnectRequest is a one-way notification that a player connected.
	ConnectRequest struct {
		PlayerID identity.Identity
	}

	// DisconnectRequest is a one-way notification that a player left.
	DisconnectRequest struct {
		PlayerID identity.Identity
	}

	// MoveRequest asks for a paddle move; the outcome is sent on Reply
	// when it is non-nil.
	MoveRequest struct {
		PlayerID identity.Identity
		Y        float32
		Reply    chan<- error
	}

	// TickRequest asks for one simulation step on behalf of Caller.
	TickRequest struct {
		Caller identity.Identity
	}
)
