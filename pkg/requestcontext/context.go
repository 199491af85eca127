// Package requestcontext provides transport-independent context accessors for
// request-scoped values. Middleware sets values, services read them, and tests
// inject fixed times without touching the real clock.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	requestTimeKey struct{}
	callerSiloKey  struct{}
)

// WithRequestID stores the correlation ID for the current request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the correlation ID, or "" when none is set.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithTime pins the request-scoped time. All operations within one request
// observe the same "now" so ledger entries and audit lines agree.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the request-scoped time, falling back to the wall clock when the
// context carries none.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithCallerSilo records which silo originated the current request.
func WithCallerSilo(ctx context.Context, siloID string) context.Context {
	return context.WithValue(ctx, callerSiloKey{}, siloID)
}

// CallerSilo returns the originating silo ID, or "" when unauthenticated.
func CallerSilo(ctx context.Context) string {
	v, _ := ctx.Value(callerSiloKey{}).(string)
	return v
}
