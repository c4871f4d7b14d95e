package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mo-shahab/pong-authority/identity"
)

func TestRegisterFiresWithOwnIdentity(t *testing.T) {
	tk := New(zerolog.Nop())
	defer tk.Stop()

	got := make(chan identity.Identity, 16)
	err := tk.Register(TickSchedule{ID: 1, Interval: time.Millisecond}, func(caller identity.Identity) {
		select {
		case got <- caller:
		default:
		}
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	select {
	case caller := <-got:
		if caller != tk.Identity() {
			t.Fatalf("tick caller = %v, want %v", caller, tk.Identity())
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for a tick")
	}
}

func TestRegisterOnlyOnce(t *testing.T) {
	tk := New(zerolog.Nop())
	defer tk.Stop()

	noop := func(identity.Identity) {}
	if err := tk.Register(TickSchedule{ID: 1}, noop); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := tk.Register(TickSchedule{ID: 2}, noop); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("second register err = %v, want ErrAlreadyRegistered", err)
	}

	s, ok := tk.Active()
	if !ok || s.ID != 1 {
		t.Fatalf("active = %+v (%v), want schedule 1", s, ok)
	}
	if s.Interval != TickInterval {
		t.Fatalf("interval = %v, want default %v", s.Interval, TickInterval)
	}
}

func TestStopHaltsTicks(t *testing.T) {
	tk := New(zerolog.Nop())

	fired := make(chan struct{}, 1024)
	if err := tk.Register(TickSchedule{Interval: time.Millisecond}, func(identity.Identity) {
		fired <- struct{}{}
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	<-fired
	tk.Stop()

	drained := len(fired)
	time.Sleep(10 * time.Millisecond)
	if len(fired) != drained {
		t.Fatalf("ticks fired after Stop")
	}
	if _, ok := tk.Active(); ok {
		t.Fatalf("no registration should be active after Stop")
	}

	tk.Stop()
}
