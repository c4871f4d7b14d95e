package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/mo-shahab/pong-authority/ball"
	"github.com/mo-shahab/pong-authority/scheduler"
	"github.com/mo-shahab/pong-authority/scores"
	"github.com/mo-shahab/pong-authority/store"
)

// EnsureWorldInitialized creates the world state and ball singletons when
// they are missing, and registers the tick the first time the world state is
// created. Calling it again once the world exists changes nothing.
func (e *Engine) EnsureWorldInitialized(ctx context.Context) error {
	var (
		createdWorld bool
		createdBall  bool
		schedule     scheduler.TickSchedule
		register     bool
	)

	err := e.store.Update(ctx, func(tx store.Tx) error {
		now := e.now()

		if _, err := tx.WorldState(); errors.Is(err, store.ErrNotFound) {
			if err := tx.InsertWorldState(scores.New(now)); err != nil {
				return fmt.Errorf("insert world state: %w", err)
			}
			createdWorld = true
		} else if err != nil {
			return err
		}

		if _, err := tx.Ball(); errors.Is(err, store.ErrNotFound) {
			if err := tx.InsertBall(ball.New()); err != nil {
				return fmt.Errorf("insert ball: %w", err)
			}
			createdBall = true
		} else if err != nil {
			return err
		}

		if !createdWorld {
			return nil
		}
		if _, err := tx.TickSchedule(); errors.Is(err, store.ErrNotFound) {
			s, err := tx.InsertTickSchedule(scheduler.TickSchedule{
				Interval:  scheduler.TickInterval,
				CreatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("insert tick schedule: %w", err)
			}
			schedule, register = s, true
		} else if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("initialize world: %w", err)
	}

	if createdWorld {
		e.log.Info().Msg("initialized world state")
	}
	if createdBall {
		e.log.Info().Msg("initialized ball")
	}
	if register {
		return e.register(schedule)
	}
	return nil
}

// Start is the process-start entry point. Besides initializing the world it
// re-attaches a tick schedule that a durable store kept from an earlier run,
// since the in-process scheduler does not survive a restart.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.EnsureWorldInitialized(ctx); err != nil {
		return err
	}

	var schedule scheduler.TickSchedule
	err := e.store.View(ctx, func(tx store.Tx) error {
		var err error
		schedule, err = tx.TickSchedule()
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		e.log.Warn().Msg("no tick schedule stored; world will not advance")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read tick schedule: %w", err)
	}
	return e.register(schedule)
}

func (e *Engine) register(s scheduler.TickSchedule) error {
	err := e.sched.Register(s, e.fire)
	if errors.Is(err, scheduler.ErrAlreadyRegistered) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("register tick: %w", err)
	}
	e.log.Info().Uint64("schedule_id", s.ID).Msg("scheduled game tick")
	return nil
}
