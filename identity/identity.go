// Package identity names the callers that act on the world: connected
// players and the scheduler that drives ticks.
package identity

import (
	"bytes"

	"github.com/google/uuid"
)

// Identity is an opaque caller id. The zero value is never issued.
type Identity uuid.UUID

// Nil is the zero Identity.
var Nil Identity

func New() Identity {
	return Identity(uuid.New())
}

func Parse(s string) (Identity, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, err
	}
	return Identity(u), nil
}

func (id Identity) String() string {
	return uuid.UUID(id).String()
}

func (id Identity) IsZero() bool {
	return id == Nil
}

// Compare orders identities by their bytes, which matches the ordering of
// their canonical string form. It returns -1, 0 or +1, for use with
// slices.SortFunc.
func Compare(a, b Identity) int {
	return bytes.Compare(a[:], b[:])
}
