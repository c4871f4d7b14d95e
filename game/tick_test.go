package game

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mo-shahab/pong-authority/ball"
	"github.com/mo-shahab/pong-authority/identity"
	"github.com/mo-shahab/pong-authority/paddle"
	"github.com/mo-shahab/pong-authority/scores"
	"github.com/mo-shahab/pong-authority/store"
)

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestTickAdvancesBall(t *testing.T) {
	h := newHarness(t)
	if err := h.engine.EnsureWorldInitialized(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	for i := 0; i < 10; i++ {
		h.tick(t)
	}

	b := h.snapshot(t).Ball
	if !near(b.X, 0.5) || !near(b.Y, 0.2) {
		t.Fatalf("ball after 10 ticks = %+v, want (0.5, 0.2)", b)
	}
	if got := len(h.events.snapshots); got != 10 {
		t.Fatalf("snapshots = %d, want 10", got)
	}
}

func TestTickScoresAndResets(t *testing.T) {
	tests := []struct {
		name      string
		start     ball.Ball
		scorer    paddle.Side
		wantLeft  uint32
		wantRight uint32
		wantVX    float32
	}{
		{"exit right", ball.Ball{X: 4.95, VX: 0.05}, paddle.Left, 1, 0, -0.05},
		{"exit left", ball.Ball{X: -4.95, VX: -0.05}, paddle.Right, 0, 1, 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if err := h.engine.EnsureWorldInitialized(context.Background()); err != nil {
				t.Fatalf("ensure: %v", err)
			}
			h.setBall(t, tt.start)
			h.now = h.now.Add(time.Minute)

			h.tick(t)

			snap := h.snapshot(t)
			if snap.World.ScoreLeft != tt.wantLeft || snap.World.ScoreRight != tt.wantRight {
				t.Fatalf("score = %d-%d, want %d-%d",
					snap.World.ScoreLeft, snap.World.ScoreRight, tt.wantLeft, tt.wantRight)
			}
			if !snap.World.LastUpdate.Equal(h.now) {
				t.Fatalf("last update = %v, want %v", snap.World.LastUpdate, h.now)
			}
			if snap.Ball.X != 0 || snap.Ball.Y != 0 {
				t.Fatalf("ball at (%v, %v), want centre", snap.Ball.X, snap.Ball.Y)
			}
			if snap.Ball.VX != tt.wantVX {
				t.Fatalf("vx = %v, want %v", snap.Ball.VX, tt.wantVX)
			}
			if abs32(snap.Ball.VY) != ball.ServeSpeedY {
				t.Fatalf("|vy| = %v, want %v", abs32(snap.Ball.VY), ball.ServeSpeedY)
			}
			if len(h.events.goals) != 1 || h.events.goals[0] != tt.scorer {
				t.Fatalf("goal events = %v, want [%v]", h.events.goals, tt.scorer)
			}
			if !strings.Contains(h.logs.String(), `"message":"goal"`) {
				t.Fatalf("goal not logged:\n%s", h.logs.String())
			}
		})
	}
}

func TestTickServeDirectionVaries(t *testing.T) {
	h := newHarness(t)
	if err := h.engine.EnsureWorldInitialized(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	seen := map[bool]bool{}
	for i := 0; i < 64 && len(seen) < 2; i++ {
		h.setBall(t, ball.Ball{X: 4.95, VX: 0.05})
		h.tick(t)
		seen[h.snapshot(t).Ball.VY > 0] = true
	}
	if len(seen) != 2 {
		t.Fatalf("serve went the same vertical way 64 times")
	}
}

func TestTickPaddleHitDoesNotScore(t *testing.T) {
	h := newHarness(t)
	p := identity.New()
	h.connect(t, p)
	h.setBall(t, ball.Ball{X: -4.3, Y: 0, VX: -0.05})

	h.tick(t)

	snap := h.snapshot(t)
	if snap.World.ScoreLeft != 0 || snap.World.ScoreRight != 0 {
		t.Fatalf("score changed to %d-%d", snap.World.ScoreLeft, snap.World.ScoreRight)
	}
	if !near(snap.Ball.VX, 0.05) {
		t.Fatalf("vx = %v, want 0.05 after the bounce", snap.Ball.VX)
	}
	if len(h.events.goals) != 0 {
		t.Fatalf("unexpected goal events %v", h.events.goals)
	}

	var hit string
	for _, line := range strings.Split(h.logs.String(), "\n") {
		if strings.Contains(line, `"message":"paddle hit"`) {
			hit = line
		}
	}
	if !strings.Contains(hit, p.String()) || !strings.Contains(hit, `"side":"left"`) {
		t.Fatalf("paddle hit log = %q, want left side and player %s", hit, p)
	}
}

func TestTickOutsidePlayingChangesNothing(t *testing.T) {
	for _, phase := range []scores.Phase{scores.Waiting, scores.Paused, scores.Finished} {
		t.Run(phase.String(), func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			if err := h.engine.EnsureWorldInitialized(ctx); err != nil {
				t.Fatalf("ensure: %v", err)
			}
			err := h.store.Update(ctx, func(tx store.Tx) error {
				w, err := tx.WorldState()
				if err != nil {
					return err
				}
				w.Phase = phase
				return tx.UpdateWorldState(w)
			})
			if err != nil {
				t.Fatalf("set phase: %v", err)
			}
			h.setBall(t, ball.Ball{X: 4.95, VX: 0.05})
			before := h.snapshot(t)

			h.tick(t)

			after := h.snapshot(t)
			if after.Ball != before.Ball {
				t.Fatalf("ball moved from %+v to %+v", before.Ball, after.Ball)
			}
			if after.World != before.World {
				t.Fatalf("world changed from %+v to %+v", before.World, after.World)
			}
			if len(h.events.snapshots) != 0 {
				t.Fatalf("published %d snapshots", len(h.events.snapshots))
			}
		})
	}
}

func TestTickRejectsUntrustedCaller(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.engine.EnsureWorldInitialized(ctx); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	before := h.snapshot(t)

	err := h.engine.Tick(ctx, identity.New())
	if !errors.Is(err, ErrUnauthorizedCaller) {
		t.Fatalf("err = %v, want ErrUnauthorizedCaller", err)
	}
	if after := h.snapshot(t); after.Ball != before.Ball || after.World != before.World {
		t.Fatalf("untrusted tick changed the world")
	}
	if !strings.Contains(h.logs.String(), "non-scheduler") {
		t.Fatalf("untrusted tick not logged:\n%s", h.logs.String())
	}

	if err := h.engine.Tick(ctx, identity.Nil); !errors.Is(err, ErrUnauthorizedCaller) {
		t.Fatalf("nil caller err = %v, want ErrUnauthorizedCaller", err)
	}
}

func TestTickMissingWorld(t *testing.T) {
	h := newHarness(t)

	err := h.engine.Tick(context.Background(), h.sched.id)
	if !errors.Is(err, ErrMissingWorld) {
		t.Fatalf("err = %v, want ErrMissingWorld", err)
	}
	if !strings.Contains(h.logs.String(), "tick skipped") {
		t.Fatalf("missing world not logged:\n%s", h.logs.String())
	}
}

func TestTickMissingBall(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	err := h.store.Update(ctx, func(tx store.Tx) error {
		return tx.InsertWorldState(scores.New(h.now))
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := h.engine.Tick(ctx, h.sched.id); !errors.Is(err, ErrMissingWorld) {
		t.Fatalf("err = %v, want ErrMissingWorld", err)
	}

	// The tick does not repair the world.
	err = h.store.View(ctx, func(tx store.Tx) error {
		_, err := tx.Ball()
		return err
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("ball err = %v, want ErrNotFound", err)
	}
}
