package shared

import "context"

// Identity describes the authenticated actor for a single request.
type Identity struct {
	UserID    int64
	Via       string
	SessionID string
}

// Credential carriers recognised by the session resolver.
const (
	ViaBearer = "bearer"
	ViaCookie = "cookie"
)

type identityContextKey struct{}

// ContextWithIdentity stores the identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	if !ok || id.UserID <= 0 {
		return Identity{}, false
	}
	return id, true
}

// ActorID returns the authenticated user id or 0.
func ActorID(ctx context.Context) int64 {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}
