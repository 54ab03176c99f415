// Package auth issues and verifies bearer tokens, hashes passwords, and
// defines the caller identity attached to authenticated requests.
package auth

import "context"

// Identity is who the Auth Gate decided the caller is.
type Identity struct {
	UserID string
	Role   string
}

// Resolver turns the user id carried by a verified token into the caller's
// current identity. It fails when the user no longer exists or is inactive.
type Resolver interface {
	ResolveIdentity(ctx context.Context, userID string) (Identity, error)
}

type ctxKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromCtx returns the identity stored in ctx, if any.
func FromCtx(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
