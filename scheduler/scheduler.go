// Package scheduler is the periodic-invocation facility that fires the
// simulation tick. Ticks are delivered with the scheduler's own identity so
// the receiver can refuse ticks from anyone else.
package scheduler

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mo-shahab/pong-authority/identity"
)

// TickInterval is the fixed simulation cadence (~60 Hz).
const TickInterval = 16 * time.Millisecond

var ErrAlreadyRegistered = errors.New("scheduler: tick already registered")

// TickSchedule is the stored record of the tick registration.
type TickSchedule struct {
	ID        uint64
	Interval  time.Duration
	CreatedAt time.Time
}

// Ticker runs at most one registration at a time.
type Ticker struct {
	id  identity.Identity
	log zerolog.Logger

	mu       sync.Mutex
	active   *TickSchedule
	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}
}

func New(logger zerolog.Logger) *Ticker {
	return &Ticker{
		id:  identity.New(),
		log: logger.With().Str("component", "scheduler").Logger(),
	}
}

// Identity is the caller identity stamped on every tick.
func (t *Ticker) Identity() identity.Identity {
	return t.id
}

// Register starts firing fire every s.Interval. A second registration while
// one is active returns ErrAlreadyRegistered and changes nothing.
func (t *Ticker) Register(s TickSchedule, fire func(caller identity.Identity)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != nil {
		return ErrAlreadyRegistered
	}
	if s.Interval <= 0 {
		s.Interval = TickInterval
	}

	t.active = &s
	t.ticker = time.NewTicker(s.Interval)
	t.stopChan = make(chan struct{})
	t.done = make(chan struct{})

	go t.loop(t.ticker, t.stopChan, t.done, fire)

	t.log.Info().
		Uint64("schedule_id", s.ID).
		Dur("interval", s.Interval).
		Msg("tick registered")
	return nil
}

// Active returns the current registration, if any.
func (t *Ticker) Active() (TickSchedule, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return TickSchedule{}, false
	}
	return *t.active, true
}

// Stop halts the tick loop and waits for it to exit. Stopping an idle
// Ticker is a no-op.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if t.ticker == nil {
		t.mu.Unlock()
		return
	}
	t.ticker.Stop()
	close(t.stopChan)
	done := t.done
	t.ticker = nil
	t.active = nil
	t.mu.Unlock()

	<-done
	t.log.Info().Msg("tick stopped")
}

func (t *Ticker) loop(ticker *time.Ticker, stop <-chan struct{}, done chan<- struct{}, fire func(identity.Identity)) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fire(t.id)
		}
	}
}
