package auth

import "context"

// Identity is a verified caller. Only Gate.Authenticate produces one, so a
// handler holding an Identity knows the request passed the gate.
type Identity struct {
	userID string
}

// UserID returns the verified user id.
func (i Identity) UserID() string {
	return i.userID
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i.userID == ""
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityContextKey contextKey = "identity"

// ContextWithIdentity attaches a verified identity to ctx.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the identity attached by the gate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	if !ok || id.IsZero() {
		return Identity{}, false
	}
	return id, true
}

// UserIDFromContext returns the verified user id, or "" when unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.userID
}
