package paddle

import (
	"time"

	"github.com/mo-shahab/pong-authority/canvas"
	"github.com/mo-shahab/pong-authority/identity"
)

// Side is the paddle group a player belongs to.
type Side uint8

const (
	None  Side = 0
	Left  Side = 1
	Right Side = 2
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// SideFor assigns a side from the number of players connected before the
// newcomer: arrivals alternate left, right, left, ...
func SideFor(connected int) Side {
	return Side(connected%2 + 1)
}

// Paddle geometry
const (
	Height float32 = 1.0
	Width  float32 = 0.2

	HalfHeight = Height / 2
	HalfWidth  = Width / 2

	// XOffset is the distance of each paddle line from centre court.
	XOffset = canvas.HalfWidth - 0.5
	LeftX   = -XOffset
	RightX  = XOffset

	MinY = -canvas.HalfHeight + HalfHeight
	MaxY = canvas.HalfHeight - HalfHeight
)

// PlayerSide records which side a connected player plays on.
type PlayerSide struct {
	PlayerID identity.Identity
	Side     Side
}

// PlayerPaddle is a connected player's paddle position.
type PlayerPaddle struct {
	PlayerID   identity.Identity
	Y          float32
	LastUpdate time.Time
}
