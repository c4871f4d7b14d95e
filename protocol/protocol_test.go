package protocol

import (
	"errors"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mo-shahab/pong-authority/ball"
	"github.com/mo-shahab/pong-authority/game"
	"github.com/mo-shahab/pong-authority/identity"
	"github.com/mo-shahab/pong-authority/paddle"
	"github.com/mo-shahab/pong-authority/scores"
)

func TestMoveRoundTrip(t *testing.T) {
	b, err := EncodeMove(1.25)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	env, err := Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Type != MsgMove {
		t.Fatalf("type = %q, want %q", env.Type, MsgMove)
	}
	y, err := DecodeMove(env)
	if err != nil {
		t.Fatalf("decode move: %v", err)
	}
	if y != 1.25 {
		t.Fatalf("y = %v, want 1.25", y)
	}
}

func TestDecodeMoveRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"missing y", map[string]any{}},
		{"string y", map[string]any{"y": "up"}},
		{"null y", map[string]any{"y": nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Encode(MsgMove, tt.payload)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			env, err := Decode(b)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if _, err := DecodeMove(env); !errors.Is(err, ErrBadPayload) {
				t.Fatalf("err = %v, want ErrBadPayload", err)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("empty frame err = %v", err)
	}
	if _, err := Decode([]byte{0xff, 0xff, 0xff}); err == nil {
		t.Fatalf("garbage frame decoded")
	}

	untyped, err := proto.Marshal(&structpb.Struct{Fields: map[string]*structpb.Value{
		"payload": structpb.NewStructValue(&structpb.Struct{}),
	}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := Decode(untyped); !errors.Is(err, ErrMissingType) {
		t.Fatalf("untyped frame err = %v, want ErrMissingType", err)
	}
}

func TestDecodeWithoutPayload(t *testing.T) {
	b, err := proto.Marshal(&structpb.Struct{Fields: map[string]*structpb.Value{
		"type": structpb.NewStringValue("ping"),
	}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	env, err := Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Payload == nil {
		t.Fatalf("payload is nil")
	}
}

func TestSnapshotStruct(t *testing.T) {
	id := identity.New()
	snap := game.Snapshot{
		World: scores.WorldState{ScoreLeft: 2, ScoreRight: 5, Phase: scores.Playing, LastUpdate: time.Now()},
		Ball:  ball.Ball{X: 0.5, Y: -0.25, VX: 0.05, VY: -0.02},
		Players: []game.Player{
			{ID: id, Side: paddle.Right, Y: 1.5},
		},
	}

	s, err := SnapshotStruct(snap)
	if err != nil {
		t.Fatalf("snapshot struct: %v", err)
	}
	m := s.AsMap()

	if m["score_left"] != float64(2) || m["score_right"] != float64(5) {
		t.Fatalf("scores = %v-%v", m["score_left"], m["score_right"])
	}
	if m["phase"] != "playing" {
		t.Fatalf("phase = %v", m["phase"])
	}
	b := m["ball"].(map[string]any)
	if b["x"] != float64(0.5) || b["y"] != float64(-0.25) {
		t.Fatalf("ball = %v", b)
	}
	players := m["players"].([]any)
	if len(players) != 1 {
		t.Fatalf("players = %v", players)
	}
	p := players[0].(map[string]any)
	if p["id"] != id.String() || p["side"] != "right" || p["y"] != float64(1.5) {
		t.Fatalf("player = %v", p)
	}
}

func TestEncodeMoveResult(t *testing.T) {
	b, err := EncodeMoveResult(errors.New("unknown player"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	env, err := Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := env.Payload.AsMap()
	if env.Type != MsgMoveResult || m["ok"] != false || m["error"] != "unknown player" {
		t.Fatalf("move result = %s %v", env.Type, m)
	}
}
