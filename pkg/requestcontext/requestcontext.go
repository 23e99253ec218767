// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Values are set by transport middleware and consumed by services. Keeping
// this package free of net/http lets services read caller identity and the
// request clock without pulling in transport code.
//
// Usage in services (read values):
//
//	accountID := requestcontext.AccountID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithAccountID(ctx, accountID)
//
// Usage in tests (inject a fixed clock):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "mhregistry/pkg/domain"
)

type (
	accountIDKey   struct{}
	usernameKey    struct{}
	affirmByKey    struct{}
	staffKey       struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// AccountID retrieves the caller's account id from the context.
func AccountID(ctx context.Context) id.AccountID {
	if v, ok := ctx.Value(accountIDKey{}).(id.AccountID); ok {
		return v
	}
	return ""
}

// WithAccountID stores the caller's account id in the context.
func WithAccountID(ctx context.Context, accountID id.AccountID) context.Context {
	return context.WithValue(ctx, accountIDKey{}, accountID)
}

// Username retrieves the authenticated username, or "" when unset.
func Username(ctx context.Context) string {
	if v, ok := ctx.Value(usernameKey{}).(string); ok {
		return v
	}
	return ""
}

// WithUsername stores the authenticated username in the context.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey{}, username)
}

// AffirmByName retrieves the caller's declared full name used on affirmations.
func AffirmByName(ctx context.Context) string {
	if v, ok := ctx.Value(affirmByKey{}).(string); ok {
		return v
	}
	return ""
}

// WithAffirmByName stores the caller's full name in the context.
func WithAffirmByName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, affirmByKey{}, name)
}

// IsStaff reports whether the caller holds the registry staff role.
func IsStaff(ctx context.Context) bool {
	if v, ok := ctx.Value(staffKey{}).(bool); ok {
		return v
	}
	return false
}

// WithStaff marks the caller as registry staff.
func WithStaff(ctx context.Context, staff bool) context.Context {
	return context.WithValue(ctx, staffKey{}, staff)
}

// RequestID retrieves the request correlation id, or "" when unset.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID stores the request correlation id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now returns the request time when one was injected, falling back to the
// wall clock. Services read the clock through this so tests can pin time.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return v
	}
	return time.Now().UTC()
}

// WithTime pins the request clock, primarily for tests.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
