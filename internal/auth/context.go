package auth

import (
	"context"

	"github.com/goliatone/go-showcase/internal/domain"
)

type sessionKey struct{}

// WithSession stores session on ctx.
func WithSession(ctx context.Context, session *Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session attached by Middleware.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	if ctx == nil {
		return nil, false
	}
	session, ok := ctx.Value(sessionKey{}).(*Session)
	return session, ok && session != nil
}

// ViewerFromContext returns the request viewer, anonymous without a session.
func ViewerFromContext(ctx context.Context) domain.Viewer {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return domain.Anonymous()
	}
	return session.Viewer()
}
