package reflection

import (
	"sync"
	"sync/atomic"

	"github.com/omnicall/omnicall/pkg/value"
)

// FutureState is the settlement state of a Future.
type FutureState int32

const (
	FuturePending FutureState = iota
	FutureResolved
	FutureRejected
)

func (s FutureState) String() string {
	switch s {
	case FuturePending:
		return "pending"
	case FutureResolved:
		return "resolved"
	case FutureRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

type continuation struct {
	resolve ResolveCallback
	reject  RejectCallback
	ctx     any
	next    *Future
}

// Future wraps a pending cross-runtime result. It is a small state machine
// with at-most-once settlement: exactly one of Resolve or Reject fires,
// continuations registered before settlement run on the settling
// goroutine, continuations registered after run synchronously on the
// caller's. Futures are first-class: they can be wrapped in Values, passed
// between adapters and awaited repeatedly (each await chains a new
// Future).
type Future struct {
	mu     sync.Mutex
	state  FutureState
	result *value.Value
	conts  []continuation
	refs   atomic.Int64
}

// NewPendingFuture creates an unsettled future with refcount one.
func NewPendingFuture() *Future {
	f := &Future{}
	f.refs.Store(1)
	return f
}

// State returns the current settlement state.
func (f *Future) State() FutureState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Result returns the settled value, nil while pending.
func (f *Future) Result() *value.Value {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Retain adds a reference (value.Refcounted).
func (f *Future) Retain() {
	f.refs.Add(1)
}

// Release drops a reference; the settled value is destroyed at zero.
func (f *Future) Release() {
	if f.refs.Add(-1) != 0 {
		return
	}
	f.mu.Lock()
	result := f.result
	f.result = nil
	f.conts = nil
	f.mu.Unlock()
	result.Destroy()
}

// Resolve settles the future successfully and fires pending resolve
// continuations. Settling twice returns ErrFutureSettled.
func (f *Future) Resolve(v *value.Value) error {
	return f.settle(FutureResolved, v)
}

// Reject settles the future with a failure value (normally kind exception
// or throwable) and fires pending reject continuations.
func (f *Future) Reject(v *value.Value) error {
	return f.settle(FutureRejected, v)
}

func (f *Future) settle(state FutureState, v *value.Value) error {
	f.mu.Lock()
	if f.state != FuturePending {
		f.mu.Unlock()
		return ErrFutureSettled
	}
	f.state = state
	f.result = v
	conts := f.conts
	f.conts = nil
	f.mu.Unlock()

	for _, c := range conts {
		fire(c, state, v)
	}
	return nil
}

// Await registers a continuation pair and returns a new future settled by
// the continuation's return value. When f is already settled the
// continuation runs synchronously on the current goroutine.
func (f *Future) Await(resolve ResolveCallback, reject RejectCallback, ctx any) *Future {
	next := NewPendingFuture()
	c := continuation{resolve: resolve, reject: reject, ctx: ctx, next: next}

	f.mu.Lock()
	if f.state == FuturePending {
		f.conts = append(f.conts, c)
		f.mu.Unlock()
		return next
	}
	state, result := f.state, f.result
	f.mu.Unlock()

	fire(c, state, result)
	return next
}

func fire(c continuation, state FutureState, result *value.Value) {
	var out *value.Value
	switch state {
	case FutureResolved:
		if c.resolve != nil {
			out = c.resolve(result, c.ctx)
		}
	case FutureRejected:
		if c.reject != nil {
			out = c.reject(result, c.ctx)
		}
	}
	if c.next == nil {
		return
	}
	if state == FutureRejected && out == nil {
		// A missing reject handler propagates the failure down the chain.
		_ = c.next.Reject(result.Retain())
		return
	}
	_ = c.next.Resolve(out)
}

// Metadata returns the future's observable state as pure data.
func (f *Future) Metadata() *value.Value {
	return value.NewMap(
		value.NewMapPair(value.NewString("state"), value.NewString(f.State().String())),
	)
}
