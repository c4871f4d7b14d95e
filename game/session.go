package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/mo-shahab/pong-authority/identity"
	"github.com/mo-shahab/pong-authority/paddle"
	"github.com/mo-shahab/pong-authority/store"
)

// Connect gives a newly connected player a side and a centred paddle. Sides
// alternate by arrival order and are not rebalanced when players leave. A
// repeated connect for a player that is already in is logged and ignored.
func (e *Engine) Connect(ctx context.Context, id identity.Identity) error {
	if err := e.EnsureWorldInitialized(ctx); err != nil {
		return err
	}

	var (
		side      paddle.Side
		duplicate bool
		snap      Snapshot
	)
	err := e.store.Update(ctx, func(tx store.Tx) error {
		if _, err := tx.Side(id); err == nil {
			duplicate = true
			return nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		connected, err := tx.CountSides()
		if err != nil {
			return err
		}
		side = paddle.SideFor(connected)

		if err := tx.InsertSide(paddle.PlayerSide{PlayerID: id, Side: side}); err != nil {
			return fmt.Errorf("insert side: %w", err)
		}
		if err := tx.InsertPaddle(paddle.PlayerPaddle{PlayerID: id, Y: 0, LastUpdate: e.now()}); err != nil {
			return fmt.Errorf("insert paddle: %w", err)
		}

		snap, err = snapshotTx(tx)
		return err
	})
	if err != nil {
		return fmt.Errorf("connect %s: %w", id, err)
	}

	if duplicate {
		e.log.Warn().Str("player", id.String()).Msg("player already connected")
		return nil
	}

	e.log.Info().Str("player", id.String()).Stringer("side", side).Msg("player connected")
	e.events.OnSnapshot(snap)
	return nil
}

// Disconnect removes a player's side and paddle. A disconnect for a player
// that never connected is logged and ignored.
func (e *Engine) Disconnect(ctx context.Context, id identity.Identity) error {
	var (
		removed bool
		snap    *Snapshot
	)
	err := e.store.Update(ctx, func(tx store.Tx) error {
		var err error
		removed, err = tx.DeleteSide(id)
		if err != nil || !removed {
			return err
		}
		if _, err := tx.DeletePaddle(id); err != nil {
			return err
		}

		snap, err = optionalSnapshot(tx)
		return err
	})
	if err != nil {
		return fmt.Errorf("disconnect %s: %w", id, err)
	}

	if !removed {
		e.log.Warn().Str("player", id.String()).Msg("disconnect for player that was not connected")
		return nil
	}

	e.log.Info().Str("player", id.String()).Msg("player disconnected")
	if snap != nil {
		e.events.OnSnapshot(*snap)
	}
	return nil
}

// MovePaddle sets a player's paddle to y, clamped to the court. NaN is
// rejected; infinities clamp to the nearest bound.
func (e *Engine) MovePaddle(ctx context.Context, id identity.Identity, y float32) error {
	if y != y {
		e.log.Warn().Str("player", id.String()).Msg("rejected NaN paddle position")
		return ErrInvalidPosition
	}

	var snap *Snapshot
	err := e.store.Update(ctx, func(tx store.Tx) error {
		p, err := tx.Paddle(id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnknownPlayer
		}
		if err != nil {
			return err
		}

		p.Y = paddle.Clamp(y)
		p.LastUpdate = e.now()
		if err := tx.UpdatePaddle(p); err != nil {
			return err
		}

		snap, err = optionalSnapshot(tx)
		return err
	})
	if errors.Is(err, ErrUnknownPlayer) {
		e.log.Warn().Str("player", id.String()).Msg("paddle not found for move; player may have disconnected")
		return err
	}
	if err != nil {
		return fmt.Errorf("move paddle %s: %w", id, err)
	}

	if snap != nil {
		e.events.OnSnapshot(*snap)
	}
	return nil
}

// optionalSnapshot is snapshotTx for handlers that do not need the world
// singletons to exist; it returns nil when they are missing.
func optionalSnapshot(tx store.Tx) (*Snapshot, error) {
	snap, err := snapshotTx(tx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
