// Package scores holds the world state singleton: the score line and the
// game phase.
package scores

import (
	"time"

	"github.com/mo-shahab/pong-authority/canvas"
	"github.com/mo-shahab/pong-authority/paddle"
)

// Phase is the coarse state of the game. Only Playing advances the ball;
// Paused and Finished are reserved and nothing moves the world into them yet.
type Phase uint8

const (
	Waiting Phase = iota
	Playing
	Paused
	Finished
)

func (p Phase) String() string {
	switch p {
	case Waiting:
		return "waiting"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

type WorldState struct {
	ScoreLeft  uint32
	ScoreRight uint32
	Phase      Phase
	LastUpdate time.Time
}

// New returns the world state created at bootstrap. The game goes straight
// from Waiting to Playing.
func New(now time.Time) WorldState {
	return WorldState{Phase: Playing, LastUpdate: now}
}

// Goal reports which side scored when the ball sits at x with the given
// radius. A ball leaving past the left edge scores for the right side and
// one leaving past the right edge scores for the left side.
func Goal(x, radius float32) paddle.Side {
	switch {
	case x-radius < -canvas.HalfWidth:
		return paddle.Right
	case x+radius > canvas.HalfWidth:
		return paddle.Left
	default:
		return paddle.None
	}
}

// Award credits a goal to side.
func (ws *WorldState) Award(side paddle.Side, now time.Time) {
	switch side {
	case paddle.Left:
		ws.ScoreLeft++
	case paddle.Right:
		ws.ScoreRight++
	default:
		return
	}
	ws.LastUpdate = now
}
