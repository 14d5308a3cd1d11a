package reqctx

import (
	"context"
	"time"
)

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey int

const (
	keyRequestMeta ctxKey = iota
	keyAdminUser
)

// RequestMeta holds per-request metadata set by HTTP middleware.
type RequestMeta struct {
	// RequestID is taken from the X-Request-Id header or generated (UUID v4).
	RequestID string

	// ClientIP may come from X-Forwarded-For when behind a trusted proxy.
	ClientIP string

	UserAgent   string
	RequestedAt time.Time
}

// WithRequestMeta stores RequestMeta in the context.
func WithRequestMeta(ctx context.Context, meta *RequestMeta) context.Context {
	return context.WithValue(ctx, keyRequestMeta, meta)
}

// RequestMetaFromContext retrieves RequestMeta from the context.
// Returns nil, false if not set.
func RequestMetaFromContext(ctx context.Context) (*RequestMeta, bool) {
	meta, ok := ctx.Value(keyRequestMeta).(*RequestMeta)
	return meta, ok && meta != nil
}

// RequestIDFromContext returns the request ID, or "" if RequestMeta is not set.
func RequestIDFromContext(ctx context.Context) string {
	meta, ok := RequestMetaFromContext(ctx)
	if !ok {
		return ""
	}
	return meta.RequestID
}

// WithAdminUser records the username that passed admin authentication.
func WithAdminUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, keyAdminUser, username)
}

// AdminUserFromContext returns the authenticated admin username, if any.
func AdminUserFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(keyAdminUser).(string)
	return u, ok && u != ""
}
