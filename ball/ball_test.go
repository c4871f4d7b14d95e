package ball

import (
	"testing"

	"github.com/mo-shahab/pong-authority/canvas"
)

func TestAdvanceAddsVelocity(t *testing.T) {
	b := Ball{X: 1, Y: -1, VX: 0.5, VY: 0.25}
	b.Advance()
	if b.X != 1.5 || b.Y != -0.75 {
		t.Fatalf("after advance = (%v, %v), want (1.5, -0.75)", b.X, b.Y)
	}
}

func TestReflectWalls(t *testing.T) {
	tests := []struct {
		name    string
		in      Ball
		bounced bool
		wantY   float32
		wantVY  float32
	}{
		{"inside", Ball{Y: 0, VY: 0.02}, false, 0, 0.02},
		{"top", Ball{Y: 2.45, VY: 0.02}, true, canvas.HalfHeight - Radius, -0.02},
		{"bottom", Ball{Y: -2.6, VY: -0.02}, true, -canvas.HalfHeight + Radius, 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.in
			if got := b.ReflectWalls(); got != tt.bounced {
				t.Fatalf("bounced = %v, want %v", got, tt.bounced)
			}
			if b.Y != tt.wantY || b.VY != tt.wantVY {
				t.Fatalf("ball = (y %v, vy %v), want (y %v, vy %v)", b.Y, b.VY, tt.wantY, tt.wantVY)
			}
		})
	}
}

func TestServeOpposesExitVelocity(t *testing.T) {
	b := Ball{X: 5.1, Y: 1, VX: 0.05, VY: -0.3}
	b.Serve(true)
	if b.X != 0 || b.Y != 0 {
		t.Fatalf("serve position = (%v, %v), want centre", b.X, b.Y)
	}
	if b.VX != -ServeSpeedX || b.VY != ServeSpeedY {
		t.Fatalf("serve velocity = (%v, %v), want (%v, %v)", b.VX, b.VY, -ServeSpeedX, ServeSpeedY)
	}

	b = Ball{X: -5.1, VX: -0.05}
	b.Serve(false)
	if b.VX != ServeSpeedX || b.VY != -ServeSpeedY {
		t.Fatalf("serve velocity = (%v, %v), want (%v, %v)", b.VX, b.VY, ServeSpeedX, -ServeSpeedY)
	}
}
