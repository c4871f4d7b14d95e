package client

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/mo-shahab/pong-authority/identity"
)

func TestSendQueuesUntilFull(t *testing.T) {
	c := New(nil, identity.New(), zerolog.Nop())

	for i := 0; i < sendQueueSize; i++ {
		if !c.Send([]byte{byte(i)}) {
			t.Fatalf("send #%d dropped", i)
		}
	}
	if c.Send([]byte("overflow")) {
		t.Fatalf("send past capacity was queued")
	}

	first := <-c.Queue()
	if first[0] != 0 {
		t.Fatalf("first message = %v, want 0", first)
	}
}

func TestSendAfterClose(t *testing.T) {
	c := New(nil, identity.New(), zerolog.Nop())
	c.Close()
	c.Close()

	if c.Send([]byte("late")) {
		t.Fatalf("send after close was queued")
	}
	if _, ok := <-c.Queue(); ok {
		t.Fatalf("queue still open after close")
	}
}

func TestClientIDsAreDistinct(t *testing.T) {
	player := identity.New()
	a := New(nil, player, zerolog.Nop())
	b := New(nil, player, zerolog.Nop())

	if a.ID == b.ID {
		t.Fatalf("two connections share id %v", a.ID)
	}
	if a.PlayerID != b.PlayerID {
		t.Fatalf("player ids differ")
	}
}
