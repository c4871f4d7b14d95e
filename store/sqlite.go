package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/mo-shahab/pong-authority/ball"
	"github.com/mo-shahab/pong-authority/identity"
	"github.com/mo-shahab/pong-authority/paddle"
	"github.com/mo-shahab/pong-authority/scheduler"
	"github.com/mo-shahab/pong-authority/scores"
)

// Singleton tables carry a fixed key checked by the schema.
const schema = `
CREATE TABLE IF NOT EXISTS world_state (
	singleton_id INTEGER PRIMARY KEY CHECK (singleton_id = 1),
	score_left   INTEGER NOT NULL,
	score_right  INTEGER NOT NULL,
	phase        INTEGER NOT NULL,
	last_update  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS ball (
	singleton_id INTEGER PRIMARY KEY CHECK (singleton_id = 1),
	x  REAL NOT NULL,
	y  REAL NOT NULL,
	vx REAL NOT NULL,
	vy REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS player_side (
	player_id TEXT PRIMARY KEY,
	side      INTEGER NOT NULL CHECK (side IN (1, 2))
);
CREATE TABLE IF NOT EXISTS player_paddle (
	player_id   TEXT PRIMARY KEY,
	paddle_y    REAL NOT NULL,
	last_update INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS tick_schedule (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	interval_ns INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);
`

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the world database at path.
// Player records belong to live connections, so any left over from a
// previous process are dropped on open.
func OpenSQLite(path string, logger zerolog.Logger) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// One connection serialises transactions, matching the store contract.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	res, err := db.Exec(`DELETE FROM player_side`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("purge player_side: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM player_paddle`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("purge player_paddle: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logger.Info().Int64("players", n).Msg("dropped stale player records")
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(&sqlTx{ctx: ctx, tx: tx, writable: true}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *sqliteStore) View(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	return fn(&sqlTx{ctx: ctx, tx: tx})
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

type sqlTx struct {
	ctx      context.Context
	tx       *sql.Tx
	writable bool
}

func (t *sqlTx) exec(query string, args ...any) (sql.Result, error) {
	if !t.writable {
		return nil, ErrReadOnly
	}
	res, err := t.tx.ExecContext(t.ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	return res, nil
}

// execOne runs a statement that must touch exactly one row.
func (t *sqlTx) execOne(query string, args ...any) error {
	res, err := t.exec(query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *sqlTx) execDelete(query string, args ...any) (bool, error) {
	res, err := t.exec(query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func translate(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func fromUnix(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

func (t *sqlTx) WorldState() (scores.WorldState, error) {
	var (
		ws         scores.WorldState
		phase      int64
		lastUpdate int64
	)
	err := t.tx.QueryRowContext(t.ctx,
		`SELECT score_left, score_right, phase, last_update FROM world_state WHERE singleton_id = 1`,
	).Scan(&ws.ScoreLeft, &ws.ScoreRight, &phase, &lastUpdate)
	if err != nil {
		return scores.WorldState{}, translate(err)
	}
	ws.Phase = scores.Phase(phase)
	ws.LastUpdate = fromUnix(lastUpdate)
	return ws, nil
}

func (t *sqlTx) InsertWorldState(ws scores.WorldState) error {
	_, err := t.exec(
		`INSERT INTO world_state (singleton_id, score_left, score_right, phase, last_update) VALUES (1, ?, ?, ?, ?)`,
		int64(ws.ScoreLeft), int64(ws.ScoreRight), int64(ws.Phase), ws.LastUpdate.UnixNano(),
	)
	return err
}

func (t *sqlTx) UpdateWorldState(ws scores.WorldState) error {
	return t.execOne(
		`UPDATE world_state SET score_left = ?, score_right = ?, phase = ?, last_update = ? WHERE singleton_id = 1`,
		int64(ws.ScoreLeft), int64(ws.ScoreRight), int64(ws.Phase), ws.LastUpdate.UnixNano(),
	)
}

func (t *sqlTx) Ball() (ball.Ball, error) {
	var x, y, vx, vy float64
	err := t.tx.QueryRowContext(t.ctx,
		`SELECT x, y, vx, vy FROM ball WHERE singleton_id = 1`,
	).Scan(&x, &y, &vx, &vy)
	if err != nil {
		return ball.Ball{}, translate(err)
	}
	return ball.Ball{X: float32(x), Y: float32(y), VX: float32(vx), VY: float32(vy)}, nil
}

func (t *sqlTx) InsertBall(b ball.Ball) error {
	_, err := t.exec(
		`INSERT INTO ball (singleton_id, x, y, vx, vy) VALUES (1, ?, ?, ?, ?)`,
		float64(b.X), float64(b.Y), float64(b.VX), float64(b.VY),
	)
	return err
}

func (t *sqlTx) UpdateBall(b ball.Ball) error {
	return t.execOne(
		`UPDATE ball SET x = ?, y = ?, vx = ?, vy = ? WHERE singleton_id = 1`,
		float64(b.X), float64(b.Y), float64(b.VX), float64(b.VY),
	)
}

func (t *sqlTx) Side(id identity.Identity) (paddle.PlayerSide, error) {
	var side int64
	err := t.tx.QueryRowContext(t.ctx,
		`SELECT side FROM player_side WHERE player_id = ?`, id.String(),
	).Scan(&side)
	if err != nil {
		return paddle.PlayerSide{}, translate(err)
	}
	return paddle.PlayerSide{PlayerID: id, Side: paddle.Side(side)}, nil
}

func (t *sqlTx) Sides() ([]paddle.PlayerSide, error) {
	rows, err := t.tx.QueryContext(t.ctx, `SELECT player_id, side FROM player_side ORDER BY player_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []paddle.PlayerSide
	for rows.Next() {
		var (
			raw  string
			side int64
		)
		if err := rows.Scan(&raw, &side); err != nil {
			return nil, err
		}
		id, err := identity.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("player_side %q: %w", raw, err)
		}
		out = append(out, paddle.PlayerSide{PlayerID: id, Side: paddle.Side(side)})
	}
	return out, rows.Err()
}

func (t *sqlTx) CountSides() (int, error) {
	var n int
	err := t.tx.QueryRowContext(t.ctx, `SELECT COUNT(1) FROM player_side`).Scan(&n)
	return n, err
}

func (t *sqlTx) InsertSide(s paddle.PlayerSide) error {
	_, err := t.exec(`INSERT INTO player_side (player_id, side) VALUES (?, ?)`, s.PlayerID.String(), int64(s.Side))
	return err
}

func (t *sqlTx) DeleteSide(id identity.Identity) (bool, error) {
	return t.execDelete(`DELETE FROM player_side WHERE player_id = ?`, id.String())
}

func (t *sqlTx) Paddle(id identity.Identity) (paddle.PlayerPaddle, error) {
	var (
		y          float64
		lastUpdate int64
	)
	err := t.tx.QueryRowContext(t.ctx,
		`SELECT paddle_y, last_update FROM player_paddle WHERE player_id = ?`, id.String(),
	).Scan(&y, &lastUpdate)
	if err != nil {
		return paddle.PlayerPaddle{}, translate(err)
	}
	return paddle.PlayerPaddle{PlayerID: id, Y: float32(y), LastUpdate: fromUnix(lastUpdate)}, nil
}

func (t *sqlTx) InsertPaddle(p paddle.PlayerPaddle) error {
	_, err := t.exec(
		`INSERT INTO player_paddle (player_id, paddle_y, last_update) VALUES (?, ?, ?)`,
		p.PlayerID.String(), float64(p.Y), p.LastUpdate.UnixNano(),
	)
	return err
}

func (t *sqlTx) UpdatePaddle(p paddle.PlayerPaddle) error {
	return t.execOne(
		`UPDATE player_paddle SET paddle_y = ?, last_update = ? WHERE player_id = ?`,
		float64(p.Y), p.LastUpdate.UnixNano(), p.PlayerID.String(),
	)
}

func (t *sqlTx) DeletePaddle(id identity.Identity) (bool, error) {
	return t.execDelete(`DELETE FROM player_paddle WHERE player_id = ?`, id.String())
}

func (t *sqlTx) TickSchedule() (scheduler.TickSchedule, error) {
	var (
		s         scheduler.TickSchedule
		interval  int64
		createdAt int64
	)
	err := t.tx.QueryRowContext(t.ctx,
		`SELECT id, interval_ns, created_at FROM tick_schedule ORDER BY id ASC LIMIT 1`,
	).Scan(&s.ID, &interval, &createdAt)
	if err != nil {
		return scheduler.TickSchedule{}, translate(err)
	}
	s.Interval = time.Duration(interval)
	s.CreatedAt = fromUnix(createdAt)
	return s, nil
}

func (t *sqlTx) InsertTickSchedule(s scheduler.TickSchedule) (scheduler.TickSchedule, error) {
	if !t.writable {
		return scheduler.TickSchedule{}, ErrReadOnly
	}
	if _, err := t.TickSchedule(); err == nil {
		return scheduler.TickSchedule{}, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return scheduler.TickSchedule{}, err
	}

	res, err := t.exec(
		`INSERT INTO tick_schedule (interval_ns, created_at) VALUES (?, ?)`,
		int64(s.Interval), s.CreatedAt.UnixNano(),
	)
	if err != nil {
		return scheduler.TickSchedule{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return scheduler.TickSchedule{}, err
	}
	s.ID = uint64(id)
	return s, nil
}
