package ball

import "github.com/mo-shahab/pong-authority/canvas"

// Advance moves the ball by one tick of velocity.
func (b *Ball) Advance() {
	b.X += b.VX
	b.Y += b.VY
}

// ReflectWalls bounces the ball off the top and bottom walls. The bounce is
// a sign flip of VY with the ball clamped back inside the court; travel past
// the wall is not re-projected. It reports whether a bounce happened.
func (b *Ball) ReflectWalls() bool {
	if b.Y+Radius > canvas.HalfHeight || b.Y-Radius < -canvas.HalfHeight {
		b.VY = -b.VY
		b.Y = canvas.Clamp(b.Y, -canvas.HalfHeight+Radius, canvas.HalfHeight-Radius)
		return true
	}
	return false
}

// Serve re-centres the ball after a goal. The new horizontal velocity has
// the opposite sign of the velocity that carried the ball out, and up
// picks the sign of the vertical velocity.
func (b *Ball) Serve(up bool) {
	dx := ServeSpeedX
	if b.VX > 0 {
		dx = -ServeSpeedX
	}

	dy := ServeSpeedY
	if !up {
		dy = -ServeSpeedY
	}

	*b = Ball{VX: dx, VY: dy}
}
