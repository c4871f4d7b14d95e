package paddle

import (
	"slices"

	"github.com/mo-shahab/pong-authority/canvas"
	"github.com/mo-shahab/pong-authority/identity"
)

// Clamp keeps a requested paddle centre inside the court.
func Clamp(y float32) float32 {
	return canvas.Clamp(y, MinY, MaxY)
}

// Overlaps reports whether a ball centred at ballY with the given radius
// shares vertical span with a paddle centred at paddleY.
func Overlaps(paddleY, ballY, radius float32) bool {
	return ballY+radius > paddleY-HalfHeight &&
		ballY-radius < paddleY+HalfHeight
}

// FirstHit returns the paddle that stops the ball when several paddles on
// one side could. Candidates are tried in ascending player id order and the
// first overlapping one wins.
func FirstHit(paddles []PlayerPaddle, ballY, radius float32) (PlayerPaddle, bool) {
	ordered := slices.Clone(paddles)
	slices.SortFunc(ordered, func(a, b PlayerPaddle) int {
		return identity.Compare(a.PlayerID, b.PlayerID)
	})

	for _, p := range ordered {
		if Overlaps(p.Y, ballY, radius) {
			return p, true
		}
	}
	return PlayerPaddle{}, false
}
