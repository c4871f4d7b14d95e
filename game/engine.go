// Package game is the authoritative pong simulation: player sessions,
// paddle input, the tick-driven physics step and the bootstrap that makes
// sure the world exists.
package game

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/mo-shahab/pong-authority/identity"
	"github.com/mo-shahab/pong-authority/paddle"
	"github.com/mo-shahab/pong-authority/scores"
	"github.com/mo-shahab/pong-authority/store"
)

const inboxSize = 256

// Config wires an Engine to its collaborators. Store and Scheduler are
// required; the rest have defaults.
type Config struct {
	Store     store.Store
	Scheduler Scheduler
	Events    EventHandler
	Logger    zerolog.Logger
	Clock     func() time.Time
	Rand      *rand.Rand
}

// Engine owns the world records. Every handler (Connect, Disconnect,
// MovePaddle, Tick) runs inside a single store transaction. Handlers posted
// through Post are applied one at a time by Run.
type Engine struct {
	store  store.Store
	sched  Scheduler
	events EventHandler
	log    zerolog.Logger
	now    func() time.Time
	rng    *rand.Rand
	inbox  chan any
}

func NewEngine(cfg Config) *Engine {
	e := &Engine{
		store:  cfg.Store,
		sched:  cfg.Scheduler,
		events: cfg.Events,
		log:    cfg.Logger.With().Str("component", "game").Logger(),
		now:    cfg.Clock,
		rng:    cfg.Rand,
		inbox:  make(chan any, inboxSize),
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.events == nil {
		e.events = noEvents{}
	}
	return e
}

// Run applies posted messages until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-e.inbox:
			e.handle(ctx, msg)
		}
	}
}

// Post queues a message for Run. It blocks while the inbox is full.
func (e *Engine) Post(ctx context.Context, msg any) error {
	select {
	case e.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Move posts a MoveRequest and waits for its outcome.
func (e *Engine) Move(ctx context.Context, id identity.Identity, y float32) error {
	reply := make(chan error, 1)
	if err := e.Post(ctx, MoveRequest{PlayerID: id, Y: y, Reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fire is handed to the scheduler. A tick that finds the inbox full is
// dropped; the next one is never far behind.
func (e *Engine) fire(caller identity.Identity) {
	select {
	case e.inbox <- TickRequest{Caller: caller}:
	default:
		e.log.Warn().Msg("inbox full, dropping tick")
	}
}

func (e *Engine) handle(ctx context.Context, msg any) {
	var err error
	switch m := msg.(type) {
	case ConnectRequest:
		err = e.Connect(ctx, m.PlayerID)
	case DisconnectRequest:
		err = e.Disconnect(ctx, m.PlayerID)
	case MoveRequest:
		err = e.MovePaddle(ctx, m.PlayerID, m.Y)
		if m.Reply != nil {
			m.Reply <- err
		}
	case TickRequest:
		err = e.Tick(ctx, m.Caller)
	default:
		e.log.Warn().Type("message", msg).Msg("unknown message type")
		return
	}

	if err != nil && !expected(err) && !errors.Is(err, context.Canceled) {
		e.log.Error().Err(err).Type("message", msg).Msg("handler failed")
	}
}

// Snapshot reads a consistent copy of the world.
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := e.store.View(ctx, func(tx store.Tx) error {
		var err error
		snap, err = snapshotTx(tx)
		return err
	})
	return snap, err
}

func snapshotTx(tx store.Tx) (Snapshot, error) {
	var snap Snapshot

	world, err := tx.WorldState()
	if err != nil {
		return snap, err
	}
	b, err := tx.Ball()
	if err != nil {
		return snap, err
	}
	sides, err := tx.Sides()
	if err != nil {
		return snap, err
	}

	snap.World = world
	snap.Ball = b
	snap.Players = make([]Player, 0, len(sides))
	for _, s := range sides {
		p, err := tx.Paddle(s.PlayerID)
		if err != nil {
			return snap, err
		}
		snap.Players = append(snap.Players, Player{ID: s.PlayerID, Side: s.Side, Y: p.Y})
	}
	return snap, nil
}

type noEvents struct{}

func (noEvents) OnSnapshot(Snapshot) {}

func (noEvents) OnScore(scores.WorldState, paddle.Side) {}
