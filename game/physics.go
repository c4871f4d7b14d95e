package game

import (
	"github.com/mo-shahab/pong-authority/ball"
	"github.com/mo-shahab/pong-authority/identity"
	"github.com/mo-shahab/pong-authority/paddle"
	"github.com/mo-shahab/pong-authority/scores"
)

// Outcome is what one physics step did. At most one of Hit and Scorer is
// set: a paddle hit suppresses scoring for the step.
type Outcome struct {
	Hit    paddle.Side
	Hitter identity.Identity
	Scorer paddle.Side
}

// Step advances b by one tick against the paddles on each side. It moves the
// ball, bounces it off the walls, resolves at most one paddle hit and
// reports a goal. Resetting the ball after a goal is left to the caller.
func Step(b *ball.Ball, left, right []paddle.PlayerPaddle) Outcome {
	oldX := b.X

	b.Advance()
	b.ReflectWalls()

	switch {
	case b.VX < 0 && oldX > paddle.LeftX && b.X-ball.Radius <= paddle.LeftX+paddle.HalfWidth:
		if p, ok := paddle.FirstHit(left, b.Y, ball.Radius); ok {
			b.VX = -b.VX
			// Snap outside the paddle face so the ball cannot stick.
			b.X = paddle.LeftX + paddle.HalfWidth + ball.Radius
			return Outcome{Hit: paddle.Left, Hitter: p.PlayerID}
		}
	case b.VX > 0 && oldX < paddle.RightX && b.X+ball.Radius >= paddle.RightX-paddle.HalfWidth:
		if p, ok := paddle.FirstHit(right, b.Y, ball.Radius); ok {
			b.VX = -b.VX
			b.X = paddle.RightX - paddle.HalfWidth - ball.Radius
			return Outcome{Hit: paddle.Right, Hitter: p.PlayerID}
		}
	}

	return Outcome{Scorer: scores.Goal(b.X, ball.Radius)}
}
