// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services. By keeping this package free
// of net/http dependencies, services can import only what they need without pulling
// in HTTP-related code.
//
// Usage in services (read values):
//
//	profileID := requestcontext.ProfileID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithStaff(ctx, true)
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	profileIDKey   struct{}
	staffKey       struct{}
	scopesKey      struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyProfileID   = profileIDKey{}
	ContextKeyStaff       = staffKey{}
	ContextKeyScopes      = scopesKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// ProfileID retrieves the authenticated caller's profile ID from the context.
// Returns the empty string if not set.
func ProfileID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyProfileID).(string); ok {
		return id
	}
	return ""
}

// WithProfileID injects a profile ID into the context.
func WithProfileID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyProfileID, id)
}

// Staff reports whether the caller carries the staff claim.
func Staff(ctx context.Context) bool {
	if staff, ok := ctx.Value(ContextKeyStaff).(bool); ok {
		return staff
	}
	return false
}

// WithStaff injects the staff flag into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithStaff(ctx context.Context, staff bool) context.Context {
	return context.WithValue(ctx, ContextKeyStaff, staff)
}

// Scopes retrieves the caller's API scopes from the context.
func Scopes(ctx context.Context) []string {
	if scopes, ok := ctx.Value(ContextKeyScopes).([]string); ok {
		return scopes
	}
	return nil
}

// WithScopes injects API scopes into a context.
func WithScopes(ctx context.Context, scopes []string) context.Context {
	return context.WithValue(ctx, ContextKeyScopes, scopes)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like workers, CLI, tests).
//
// All membership rules evaluate against this single "now" so status, expiration
// and token checks within one request cannot disagree about the date.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service unit tests that don't run the full HTTP middleware chain
//   - Workers that need consistent time within a batch operation
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
