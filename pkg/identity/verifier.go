// Package identity resolves API credentials to user ids.
package identity

import (
	"context"
	"errors"
)

// ErrUnauthorized indicates a token that does not map to a known user.
var ErrUnauthorized = errors.New("unauthorized")

// Verifier turns a bearer token into a user id.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}
