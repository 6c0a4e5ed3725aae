// Package static provides a token-table identity verifier for local
// deployments and tests.
package static

import (
	"context"

	"github.com/petalhealth/petal/pkg/identity"
)

// Verifier maps tokens to user ids from a fixed table. With an empty table it
// runs in passthrough mode: any non-empty token is its own user id, which is
// only suitable for local development.
type Verifier struct {
	users map[string]string
}

// NewVerifier creates a verifier over a token -> user id table.
func NewVerifier(users map[string]string) *Verifier {
	return &Verifier{users: users}
}

// Verify resolves a token to a user id.
func (v *Verifier) Verify(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", identity.ErrUnauthorized
	}

	if len(v.users) == 0 {
		return token, nil
	}

	userID, ok := v.users[token]
	if !ok {
		return "", identity.ErrUnauthorized
	}
	return userID, nil
}

// Ensure Verifier implements identity.Verifier
var _ identity.Verifier = (*Verifier)(nil)
