package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

var callContextKey = contextKey{}

// CallContext holds call-scoped logging context: which adapter, which
// function, which handle the current dispatch is operating on.
type CallContext struct {
	Tag       string    // adapter tag
	Function  string    // function being dispatched
	HandleID  string    // active handle, if the call is handle-restricted
	StartTime time.Time // for duration calculation
}

// WithContext returns a new context carrying the given CallContext
func WithContext(ctx context.Context, cc *CallContext) context.Context {
	return context.WithValue(ctx, callContextKey, cc)
}

// FromContext retrieves the CallContext, or nil if not present
func FromContext(ctx context.Context) *CallContext {
	if ctx == nil {
		return nil
	}
	cc, _ := ctx.Value(callContextKey).(*CallContext)
	return cc
}

// NewCallContext creates a CallContext for a dispatch of the named function
func NewCallContext(tag, function string) *CallContext {
	return &CallContext{
		Tag:       tag,
		Function:  function,
		StartTime: time.Now(),
	}
}

// DurationMs returns the duration since StartTime in milliseconds
func (cc *CallContext) DurationMs() float64 {
	if cc == nil || cc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(cc.StartTime).Microseconds()) / 1000.0
}
