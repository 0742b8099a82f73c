package auth

import "context"

// Identity is the caller recovered from a verified token.
type Identity struct {
	ID       string
	Username string
}

type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

const tokenKey ctxKey = "token"

// WithToken stores the raw credential an identity was recovered from, so a
// handler can act on the exact token the caller presented.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func TokenFromContext(ctx context.Context) string {
	s, _ := ctx.Value(tokenKey).(string)
	return s
}
