// Package requesttime provides middleware and utilities for request-scoped time.
// All operations within a single HTTP request use the same "now" timestamp, so
// every age derived while serving the request shares one reference date.
package requesttime

import (
	"context"
	"net/http"
	"time"

	"github.com/phrazzld/registry-api/internal/domain"
)

type requestTimeKey struct{}

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

// SystemClock returns time.Now in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// Middleware captures the current time at the start of the request
// and stores it in the context.
func Middleware(clock Clock) func(http.Handler) http.Handler {
	if clock == nil {
		clock = SystemClock
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithTime(r.Context(), clock())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t.UTC())
}

// FromContext returns the request time stored in ctx, if any.
func FromContext(ctx context.Context) (time.Time, bool) {
	if ctx == nil {
		return time.Time{}, false
	}
	t, ok := ctx.Value(requestTimeKey{}).(time.Time)
	return t, ok
}

// Now returns the request time from ctx, or clock() when none is set.
func Now(ctx context.Context, clock Clock) time.Time {
	if t, ok := FromContext(ctx); ok {
		return t
	}
	if clock == nil {
		clock = SystemClock
	}
	return clock().UTC()
}

// ReferenceDate is the UTC calendar date of Now(ctx, clock).
func ReferenceDate(ctx context.Context, clock Clock) domain.BirthDate {
	return domain.DateOf(Now(ctx, clock))
}
