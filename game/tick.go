package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/mo-shahab/pong-authority/ball"
	"github.com/mo-shahab/pong-authority/identity"
	"github.com/mo-shahab/pong-authority/paddle"
	"github.com/mo-shahab/pong-authority/scores"
	"github.com/mo-shahab/pong-authority/store"
)

// Tick runs one simulation step. Only the scheduler's identity may tick,
// and nothing moves unless the world is Playing. The world state and ball
// must both exist; a missing one is reported and the tick skipped.
func (e *Engine) Tick(ctx context.Context, caller identity.Identity) error {
	if caller != e.sched.Identity() {
		e.log.Error().Str("caller", caller.String()).Msg("tick called by non-scheduler identity")
		return ErrUnauthorizedCaller
	}

	var (
		out     Outcome
		stepped bool
		snap    Snapshot
	)
	err := e.store.Update(ctx, func(tx store.Tx) error {
		world, err := tx.WorldState()
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: world state not found", ErrMissingWorld)
		}
		if err != nil {
			return err
		}

		if world.Phase != scores.Playing {
			return nil
		}

		b, err := tx.Ball()
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: ball not found", ErrMissingWorld)
		}
		if err != nil {
			return err
		}

		left, right, err := paddlesBySide(tx)
		if err != nil {
			return err
		}

		out = Step(&b, left, right)
		if out.Scorer != paddle.None {
			e.serve(&b)
			world.Award(out.Scorer, e.now())
			if err := tx.UpdateWorldState(world); err != nil {
				return fmt.Errorf("update world state: %w", err)
			}
		}
		if err := tx.UpdateBall(b); err != nil {
			return fmt.Errorf("update ball: %w", err)
		}

		stepped = true
		snap, err = snapshotTx(tx)
		return err
	})
	if errors.Is(err, ErrMissingWorld) {
		e.log.Error().Err(err).Msg("tick skipped")
		return err
	}
	if err != nil {
		return fmt.Errorf("tick: %w", err)
	}
	if !stepped {
		return nil
	}

	if out.Hit != paddle.None {
		e.log.Debug().
			Stringer("side", out.Hit).
			Str("player", out.Hitter.String()).
			Msg("paddle hit")
	}
	if out.Scorer != paddle.None {
		e.log.Info().
			Stringer("scorer", out.Scorer).
			Uint32("left", snap.World.ScoreLeft).
			Uint32("right", snap.World.ScoreRight).
			Msg("goal")
		e.events.OnScore(snap.World, out.Scorer)
	}
	e.events.OnSnapshot(snap)
	return nil
}

// serve re-centres the ball with a random vertical direction.
func (e *Engine) serve(b *ball.Ball) {
	b.Serve(e.rng.Intn(2) == 0)
}

// paddlesBySide splits the connected players' paddles by side, each in
// ascending player id order.
func paddlesBySide(tx store.Tx) (left, right []paddle.PlayerPaddle, err error) {
	sides, err := tx.Sides()
	if err != nil {
		return nil, nil, err
	}

	for _, s := range sides {
		p, err := tx.Paddle(s.PlayerID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		switch s.Side {
		case paddle.Left:
			left = append(left, p)
		case paddle.Right:
			right = append(right, p)
		}
	}
	return left, right, nil
}
