package reflection

import (
	"sync/atomic"

	"github.com/omnicall/omnicall/internal/logger"
	"github.com/omnicall/omnicall/pkg/value"
)

// ResolveCallback runs when an awaited call settles successfully. Its
// return value settles the chained future.
type ResolveCallback func(result *value.Value, ctx any) *value.Value

// RejectCallback runs when an awaited call fails. Its return value settles
// the chained future.
type RejectCallback func(err *value.Value, ctx any) *value.Value

// FunctionInterface is the per-function vtable an adapter supplies: how to
// initialize, invoke, await and tear down one of its functions.
type FunctionInterface interface {
	Create(fn *Function) error
	Invoke(fn *Function, args []*value.Value) (*value.Value, error)
	Await(fn *Function, args []*value.Value, resolve ResolveCallback, reject RejectCallback, ctx any) (*Future, error)
	Destroy(fn *Function)
}

// Function is a callable descriptor produced by discover. The impl blob is
// adapter-owned; the closure pointer carries wrapping context when one
// function wraps another (the host loader uses it for registered
// callbacks).
type Function struct {
	name    string
	sig     *Signature
	impl    any
	iface   FunctionInterface
	async   bool
	closure any
	refs    atomic.Int64
}

// NewFunction creates a function descriptor with refcount one and runs the
// adapter's create hook.
func NewFunction(name string, sig *Signature, impl any, iface FunctionInterface) (*Function, error) {
	fn := &Function{name: name, sig: sig, impl: impl, iface: iface}
	fn.refs.Store(1)
	if iface != nil {
		if err := iface.Create(fn); err != nil {
			return nil, err
		}
	}
	return fn, nil
}

// Name returns the function name.
func (fn *Function) Name() string { return fn.name }

// Signature returns the declared signature.
func (fn *Function) Signature() *Signature { return fn.sig }

// Impl returns the adapter-owned implementation blob.
func (fn *Function) Impl() any { return fn.impl }

// Async reports whether the adapter marked the function asynchronous.
func (fn *Function) Async() bool { return fn.async }

// SetAsync flags the function asynchronous; adapters call this during
// discover.
func (fn *Function) SetAsync(async bool) { fn.async = async }

// Closure returns the wrapping context pointer.
func (fn *Function) Closure() any { return fn.closure }

// Bind stores the wrapping context pointer used when one function wraps
// another.
func (fn *Function) Bind(closure any) { fn.closure = closure }

// Retain adds a reference; Values of kind function call this on wrap.
func (fn *Function) Retain() {
	if fn != nil {
		fn.refs.Add(1)
	}
}

// Release drops a reference; the adapter's destroy hook runs exactly once
// when the count reaches zero.
func (fn *Function) Release() {
	if fn == nil {
		return
	}
	refs := fn.refs.Add(-1)
	if refs > 0 {
		return
	}
	if refs < 0 {
		logger.Error("function refcount underflow", logger.KeyFunction, fn.name)
		return
	}
	if fn.iface != nil {
		fn.iface.Destroy(fn)
	}
	fn.impl = nil
}

// Refs returns the current reference count.
func (fn *Function) Refs() int64 { return fn.refs.Load() }

// Invoke calls through the adapter's vtable with an argument array whose
// values the caller retains ownership of.
func (fn *Function) Invoke(args []*value.Value) (*value.Value, error) {
	if fn == nil || fn.iface == nil {
		return nil, ErrNotFound
	}
	return fn.iface.Invoke(fn, args)
}

// Await dispatches the call asynchronously through the adapter, producing
// a future settled by the supplied continuations.
func (fn *Function) Await(args []*value.Value, resolve ResolveCallback, reject RejectCallback, ctx any) (*Future, error) {
	if fn == nil || fn.iface == nil {
		return nil, ErrNotFound
	}
	return fn.iface.Await(fn, args, resolve, reject, ctx)
}

// Metadata returns the descriptor as a pure-data value tree: name,
// signature and async flag. No live pointers into the descriptor escape.
func (fn *Function) Metadata() *value.Value {
	return value.NewMap(
		value.NewMapPair(value.NewString("name"), value.NewString(fn.name)),
		value.NewMapPair(value.NewString("signature"), fn.sig.Metadata()),
		value.NewMapPair(value.NewString("async"), value.NewBool(fn.async)),
	)
}
