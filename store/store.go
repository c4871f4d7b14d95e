// Package store is the world store: uniquely keyed records with point
// lookups, inserts, updates, deletes and scans. Every Update runs as one
// atomic unit and never interleaves with another Update.
package store

import (
	"context"
	"errors"

	"github.com/mo-shahab/pong-authority/ball"
	"github.com/mo-shahab/pong-authority/identity"
	"github.com/mo-shahab/pong-authority/paddle"
	"github.com/mo-shahab/pong-authority/scheduler"
	"github.com/mo-shahab/pong-authority/scores"
)

var (
	ErrNotFound = errors.New("store: record not found")
	ErrConflict = errors.New("store: record already exists")
	ErrReadOnly = errors.New("store: write in read-only transaction")
)

// Tx is the view of the records inside one Update or View. Lookups return
// ErrNotFound for absent records, inserts return ErrConflict for records
// that already exist. WorldState, Ball and TickSchedule are singletons: a
// second insert is a conflict.
type Tx interface {
	WorldState() (scores.WorldState, error)
	InsertWorldState(ws scores.WorldState) error
	UpdateWorldState(ws scores.WorldState) error

	Ball() (ball.Ball, error)
	InsertBall(b ball.Ball) error
	UpdateBall(b ball.Ball) error

	Side(id identity.Identity) (paddle.PlayerSide, error)
	// Sides lists every PlayerSide in ascending player id order.
	Sides() ([]paddle.PlayerSide, error)
	CountSides() (int, error)
	InsertSide(s paddle.PlayerSide) error
	DeleteSide(id identity.Identity) (bool, error)

	Paddle(id identity.Identity) (paddle.PlayerPaddle, error)
	InsertPaddle(p paddle.PlayerPaddle) error
	UpdatePaddle(p paddle.PlayerPaddle) error
	DeletePaddle(id identity.Identity) (bool, error)

	TickSchedule() (scheduler.TickSchedule, error)
	// InsertTickSchedule assigns the record its ID.
	InsertTickSchedule(s scheduler.TickSchedule) (scheduler.TickSchedule, error)
}

// Store runs transactions against the records. Implementations may be
// backed by memory (NewMemoryStore) or SQLite (OpenSQLite).
type Store interface {
	// Update runs fn atomically. If fn returns an error nothing it wrote is
	// kept and the error is returned unchanged.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn against a consistent read-only view.
	View(ctx context.Context, fn func(tx Tx) error) error

	Close() error
}
