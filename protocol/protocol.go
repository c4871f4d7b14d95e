// Package protocol is the websocket wire format. Every frame is a protobuf
// Struct envelope {type, payload} sent as a binary message.
package protocol

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mo-shahab/pong-authority/game"
	"github.com/mo-shahab/pong-authority/identity"
	"github.com/mo-shahab/pong-authority/paddle"
	"github.com/mo-shahab/pong-authority/scores"
)

type MsgType string

const (
	MsgWelcome    MsgType = "welcome"
	MsgMove       MsgType = "move"
	MsgMoveResult MsgType = "move_result"
	MsgSnapshot   MsgType = "snapshot"
	MsgScore      MsgType = "score"
	MsgError      MsgType = "error"
)

var (
	ErrEmptyFrame  = errors.New("empty frame")
	ErrMissingType = errors.New("envelope has no type")
	ErrBadPayload  = errors.New("malformed payload")
)

// Envelope is a decoded frame. Payload is never nil.
type Envelope struct {
	Type    MsgType
	Payload *structpb.Struct
}

func Encode(t MsgType, payload map[string]any) ([]byte, error) {
	if t == "" {
		return nil, ErrMissingType
	}
	p, err := structpb.NewStruct(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return marshal(t, p)
}

func marshal(t MsgType, p *structpb.Struct) ([]byte, error) {
	msg := &structpb.Struct{Fields: map[string]*structpb.Value{
		"type":    structpb.NewStringValue(string(t)),
		"payload": structpb.NewStructValue(p),
	}}
	return proto.Marshal(msg)
}

func Decode(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyFrame
	}
	var msg structpb.Struct
	if err := proto.Unmarshal(b, &msg); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}

	t := msg.GetFields()["type"].GetStringValue()
	if t == "" {
		return Envelope{}, ErrMissingType
	}
	p := msg.GetFields()["payload"].GetStructValue()
	if p == nil {
		p = &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}
	return Envelope{Type: MsgType(t), Payload: p}, nil
}

func EncodeWelcome(id identity.Identity, token string) ([]byte, error) {
	return Encode(MsgWelcome, map[string]any{
		"player_id": id.String(),
		"token":     token,
	})
}

func EncodeMove(y float32) ([]byte, error) {
	return Encode(MsgMove, map[string]any{"y": y})
}

// DecodeMove reads the target paddle position out of a move envelope.
func DecodeMove(env Envelope) (float32, error) {
	v, ok := env.Payload.GetFields()["y"]
	if !ok {
		return 0, fmt.Errorf("%w: move without y", ErrBadPayload)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: y is not a number", ErrBadPayload)
	}
	return float32(n.NumberValue), nil
}

// EncodeMoveResult reports the outcome of a move back to its sender.
func EncodeMoveResult(err error) ([]byte, error) {
	payload := map[string]any{"ok": err == nil}
	if err != nil {
		payload["error"] = err.Error()
	}
	return Encode(MsgMoveResult, payload)
}

// SnapshotStruct renders a snapshot as a Struct, shared by the snapshot
// frame and the JSON state endpoint.
func SnapshotStruct(s game.Snapshot) (*structpb.Struct, error) {
	players := make([]any, 0, len(s.Players))
	for _, p := range s.Players {
		players = append(players, map[string]any{
			"id":   p.ID.String(),
			"side": p.Side.String(),
			"y":    p.Y,
		})
	}

	return structpb.NewStruct(map[string]any{
		"score_left":  s.World.ScoreLeft,
		"score_right": s.World.ScoreRight,
		"phase":       s.World.Phase.String(),
		"ball": map[string]any{
			"x":  s.Ball.X,
			"y":  s.Ball.Y,
			"vx": s.Ball.VX,
			"vy": s.Ball.VY,
		},
		"players": players,
	})
}

func EncodeSnapshot(s game.Snapshot) ([]byte, error) {
	p, err := SnapshotStruct(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return marshal(MsgSnapshot, p)
}

func EncodeScore(world scores.WorldState, scorer paddle.Side) ([]byte, error) {
	return Encode(MsgScore, map[string]any{
		"score_left":  world.ScoreLeft,
		"score_right": world.ScoreRight,
		"scorer":      scorer.String(),
	})
}

func EncodeError(msg string) ([]byte, error) {
	return Encode(MsgError, map[string]any{"error": msg})
}
