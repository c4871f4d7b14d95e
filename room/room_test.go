package room

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/mo-shahab/pong-authority/client"
	"github.com/mo-shahab/pong-authority/game"
	"github.com/mo-shahab/pong-authority/identity"
	"github.com/mo-shahab/pong-authority/paddle"
	"github.com/mo-shahab/pong-authority/protocol"
	"github.com/mo-shahab/pong-authority/scores"
)

func TestJoinLeaveCountsConnectionsPerPlayer(t *testing.T) {
	r := New(zerolog.Nop())
	player := identity.New()
	a := client.New(nil, player, zerolog.Nop())
	b := client.New(nil, player, zerolog.Nop())

	if n := r.Join(a); n != 1 {
		t.Fatalf("join a = %d, want 1", n)
	}
	if n := r.Join(b); n != 2 {
		t.Fatalf("join b = %d, want 2", n)
	}
	if n := r.Join(b); n != 2 {
		t.Fatalf("rejoin b = %d, want 2", n)
	}
	if n := r.Leave(a); n != 1 {
		t.Fatalf("leave a = %d, want 1", n)
	}
	if n := r.Leave(a); n != 1 {
		t.Fatalf("second leave a = %d, want 1", n)
	}
	if n := r.Leave(b); n != 0 {
		t.Fatalf("leave b = %d, want 0", n)
	}
	if r.Len() != 0 {
		t.Fatalf("len = %d, want 0", r.Len())
	}
}

func TestSnapshotReachesEveryClient(t *testing.T) {
	r := New(zerolog.Nop())
	clients := []*client.Client{
		client.New(nil, identity.New(), zerolog.Nop()),
		client.New(nil, identity.New(), zerolog.Nop()),
	}
	for _, c := range clients {
		r.Join(c)
	}

	r.OnSnapshot(game.Snapshot{World: scores.WorldState{ScoreLeft: 4}})
	r.OnScore(scores.WorldState{ScoreLeft: 5}, paddle.Left)

	for i, c := range clients {
		for _, want := range []protocol.MsgType{protocol.MsgSnapshot, protocol.MsgScore} {
			select {
			case msg := <-c.Queue():
				env, err := protocol.Decode(msg)
				if err != nil {
					t.Fatalf("client %d: decode: %v", i, err)
				}
				if env.Type != want {
					t.Fatalf("client %d: type = %s, want %s", i, env.Type, want)
				}
			default:
				t.Fatalf("client %d: no %s message", i, want)
			}
		}
	}
}

func TestLeftClientGetsNothing(t *testing.T) {
	r := New(zerolog.Nop())
	c := client.New(nil, identity.New(), zerolog.Nop())
	r.Join(c)
	r.Leave(c)

	r.Broadcast([]byte("hello"))

	select {
	case msg := <-c.Queue():
		t.Fatalf("got %q after leaving", msg)
	default:
	}
}
