package auth

import "context"

// Identity is the authenticated user behind a request.
type Identity struct {
	UserID   int
	Username string
}

type identityCtxKey struct{}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, identity)
}

// IdentityFrom returns the request identity, or nil for anonymous requests.
func IdentityFrom(ctx context.Context) *Identity {
	identity, _ := ctx.Value(identityCtxKey{}).(*Identity)
	return identity
}
