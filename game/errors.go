package game

import "errors"

var (
	// ErrUnknownPlayer is returned by MovePaddle for a player with no paddle,
	// typically one whose disconnect overtook a pending move.
	ErrUnknownPlayer = errors.New("unknown player")

	// ErrUnauthorizedCaller is returned by Tick for any caller other than
	// the scheduler.
	ErrUnauthorizedCaller = errors.New("tick from untrusted caller")

	// ErrMissingWorld means the world state or ball singleton is gone. The
	// tick is skipped; the world is not repaired mid-game.
	ErrMissingWorld = errors.New("world not initialized")

	// ErrInvalidPosition is returned by MovePaddle for a NaN target.
	ErrInvalidPosition = errors.New("invalid paddle position")
)

// expected reports whether err is one of the outcomes the engine already
// logged where it happened.
func expected(err error) bool {
	return errors.Is(err, ErrUnknownPlayer) ||
		errors.Is(err, ErrUnauthorizedCaller) ||
		errors.Is(err, ErrMissingWorld) ||
		errors.Is(err, ErrInvalidPosition)
}
