// Package auth implements the signed-request authentication gate and the
// permission checks gating access to project configuration.
package auth

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the authenticated caller attached to a request context after
// the signature gate passes.
type Identity struct {
	ID      uuid.UUID
	IsAdmin bool
}

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey int

const identityKey ctxKey = iota

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext retrieves the authenticated identity from the context.
// The second return is false if the request never passed the gate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
