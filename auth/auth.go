// Package auth binds a websocket session to a player identity with a signed
// token, so a reconnecting client keeps its paddle.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mo-shahab/pong-authority/identity"
)

const issuer = "pong-authority"

var ErrInvalidToken = errors.New("invalid session token")

type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl}
}

// Issue signs a token whose subject is id.
func (i *Issuer) Issue(id identity.Identity) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(i.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return ss, exp, nil
}

// Verify checks the signature and expiry and returns the player the token
// was issued to.
func (i *Issuer) Verify(token string) (identity.Identity, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return identity.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := identity.Parse(claims.Subject)
	if err != nil || id.IsZero() {
		return identity.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

// FromRequest returns the bearer token from the Authorization header, or the
// token query parameter browsers use for websocket upgrades.
func FromRequest(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return r.URL.Query().Get("token")
}
