package domain

import "context"

type sessionUserKey struct{}

// WithSessionUser returns a context carrying an already-authenticated
// user identity. Callers that authenticate users (web sessions, MCP
// clients) attach it so the scope resolver can accept an empty user.
func WithSessionUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, sessionUserKey{}, user)
}

// SessionUser returns the authenticated user stored in ctx, if any.
func SessionUser(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(sessionUserKey{}).(string)
	if !ok || user == "" {
		return "", false
	}
	return user, true
}
