package store

import (
	"context"
	"slices"
	"sync"

	"github.com/mo-shahab/pong-authority/ball"
	"github.com/mo-shahab/pong-authority/identity"
	"github.com/mo-shahab/pong-authority/paddle"
	"github.com/mo-shahab/pong-authority/scheduler"
	"github.com/mo-shahab/pong-authority/scores"
)

// tables is one version of the whole record set.
type tables struct {
	world    *scores.WorldState
	ball     *ball.Ball
	sides    map[identity.Identity]paddle.PlayerSide
	paddles  map[identity.Identity]paddle.PlayerPaddle
	schedule *scheduler.TickSchedule
	nextID   uint64
}

func newTables() *tables {
	return &tables{
		sides:   make(map[identity.Identity]paddle.PlayerSide),
		paddles: make(map[identity.Identity]paddle.PlayerPaddle),
		nextID:  1,
	}
}

func (t *tables) clone() *tables {
	c := &tables{
		sides:   make(map[identity.Identity]paddle.PlayerSide, len(t.sides)),
		paddles: make(map[identity.Identity]paddle.PlayerPaddle, len(t.paddles)),
		nextID:  t.nextID,
	}
	if t.world != nil {
		w := *t.world
		c.world = &w
	}
	if t.ball != nil {
		b := *t.ball
		c.ball = &b
	}
	if t.schedule != nil {
		s := *t.schedule
		c.schedule = &s
	}
	for k, v := range t.sides {
		c.sides[k] = v
	}
	for k, v := range t.paddles {
		c.paddles[k] = v
	}
	return c
}

// memory is the in-process Store. Update works on a private copy of the
// tables under an exclusive lock and swaps it in only when fn succeeds.
type memory struct {
	mu     sync.RWMutex
	tables *tables
}

func NewMemoryStore() Store {
	return &memory{tables: newTables()}
}

func (m *memory) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.tables.clone()
	if err := fn(&memTx{t: work, writable: true}); err != nil {
		return err
	}
	m.tables = work
	return nil
}

func (m *memory) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memTx{t: m.tables})
}

func (m *memory) Close() error { return nil }

type memTx struct {
	t        *tables
	writable bool
}

func (tx *memTx) write() error {
	if !tx.writable {
		return ErrReadOnly
	}
	return nil
}

func (tx *memTx) WorldState() (scores.WorldState, error) {
	if tx.t.world == nil {
		return scores.WorldState{}, ErrNotFound
	}
	return *tx.t.world, nil
}

func (tx *memTx) InsertWorldState(ws scores.WorldState) error {
	if err := tx.write(); err != nil {
		return err
	}
	if tx.t.world != nil {
		return ErrConflict
	}
	tx.t.world = &ws
	return nil
}

func (tx *memTx) UpdateWorldState(ws scores.WorldState) error {
	if err := tx.write(); err != nil {
		return err
	}
	if tx.t.world == nil {
		return ErrNotFound
	}
	tx.t.world = &ws
	return nil
}

func (tx *memTx) Ball() (ball.Ball, error) {
	if tx.t.ball == nil {
		return ball.Ball{}, ErrNotFound
	}
	return *tx.t.ball, nil
}

func (tx *memTx) InsertBall(b ball.Ball) error {
	if err := tx.write(); err != nil {
		return err
	}
	if tx.t.ball != nil {
		return ErrConflict
	}
	tx.t.ball = &b
	return nil
}

func (tx *memTx) UpdateBall(b ball.Ball) error {
	if err := tx.write(); err != nil {
		return err
	}
	if tx.t.ball == nil {
		return ErrNotFound
	}
	tx.t.ball = &b
	return nil
}

func (tx *memTx) Side(id identity.Identity) (paddle.PlayerSide, error) {
	s, ok := tx.t.sides[id]
	if !ok {
		return paddle.PlayerSide{}, ErrNotFound
	}
	return s, nil
}

func (tx *memTx) Sides() ([]paddle.PlayerSide, error) {
	out := make([]paddle.PlayerSide, 0, len(tx.t.sides))
	for _, s := range tx.t.sides {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b paddle.PlayerSide) int {
		return identity.Compare(a.PlayerID, b.PlayerID)
	})
	return out, nil
}

func (tx *memTx) CountSides() (int, error) {
	return len(tx.t.sides), nil
}

func (tx *memTx) InsertSide(s paddle.PlayerSide) error {
	if err := tx.write(); err != nil {
		return err
	}
	if _, ok := tx.t.sides[s.PlayerID]; ok {
		return ErrConflict
	}
	tx.t.sides[s.PlayerID] = s
	return nil
}

func (tx *memTx) DeleteSide(id identity.Identity) (bool, error) {
	if err := tx.write(); err != nil {
		return false, err
	}
	if _, ok := tx.t.sides[id]; !ok {
		return false, nil
	}
	delete(tx.t.sides, id)
	return true, nil
}

func (tx *memTx) Paddle(id identity.Identity) (paddle.PlayerPaddle, error) {
	p, ok := tx.t.paddles[id]
	if !ok {
		return paddle.PlayerPaddle{}, ErrNotFound
	}
	return p, nil
}

func (tx *memTx) InsertPaddle(p paddle.PlayerPaddle) error {
	if err := tx.write(); err != nil {
		return err
	}
	if _, ok := tx.t.paddles[p.PlayerID]; ok {
		return ErrConflict
	}
	tx.t.paddles[p.PlayerID] = p
	return nil
}

func (tx *memTx) UpdatePaddle(p paddle.PlayerPaddle) error {
	if err := tx.write(); err != nil {
		return err
	}
	if _, ok := tx.t.paddles[p.PlayerID]; !ok {
		return ErrNotFound
	}
	tx.t.paddles[p.PlayerID] = p
	return nil
}

func (tx *memTx) DeletePaddle(id identity.Identity) (bool, error) {
	if err := tx.write(); err != nil {
		return false, err
	}
	if _, ok := tx.t.paddles[id]; !ok {
		return false, nil
	}
	delete(tx.t.paddles, id)
	return true, nil
}

func (tx *memTx) TickSchedule() (scheduler.TickSchedule, error) {
	if tx.t.schedule == nil {
		return scheduler.TickSchedule{}, ErrNotFound
	}
	return *tx.t.schedule, nil
}

func (tx *memTx) InsertTickSchedule(s scheduler.TickSchedule) (scheduler.TickSchedule, error) {
	if err := tx.write(); err != nil {
		return scheduler.TickSchedule{}, err
	}
	if tx.t.schedule != nil {
		return scheduler.TickSchedule{}, ErrConflict
	}
	s.ID = tx.t.nextID
	tx.t.nextID++
	tx.t.schedule = &s
	return s, nil
}
