package omnicall

import (
	"fmt"

	"github.com/omnicall/omnicall/internal/logger"
	"github.com/omnicall/omnicall/pkg/loader"
	prommetrics "github.com/omnicall/omnicall/pkg/metrics/prometheus"
	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

// Await dispatches an asynchronous call: the adapter schedules the work
// and the returned future settles through exactly one of the two
// continuations. Continuations run on the adapter's scheduling goroutine;
// awaiting an already-settled future runs them synchronously.
func (h *Host) Await(name string, args []*value.Value, resolve reflection.ResolveCallback, reject reflection.RejectCallback, ctx any) (*reflection.Future, error) {
	fn := h.Function(name)
	if fn == nil {
		logger.Error("symbol not found", logger.KeyFunction, name)
		return nil, fmt.Errorf("function %q: %w", name, reflection.ErrNotFound)
	}

	prommetrics.Dispatch().RecordAsync(name)

	sig := fn.Signature()
	if sig.Count() != len(args) {
		// Signature failures still deliver through the reject continuation
		// so async callers observe one uniform error path.
		f := reflection.NewPendingFuture()
		_ = f.Reject(arityException(name, sig.Count(), len(args)))
		return f.Await(resolve, reject, ctx), nil
	}

	return fn.Await(args, resolve, reject, ctx)
}

// AwaitHandle is Await with lookup restricted to one handle.
func (h *Host) AwaitHandle(handle *loader.Handle, name string, args []*value.Value, resolve reflection.ResolveCallback, reject reflection.RejectCallback, ctx any) (*reflection.Future, error) {
	v := handle.Get(name)
	if v == nil || v.Kind() != value.Function {
		logger.Error("symbol not found in handle",
			logger.KeyFunction, name, logger.KeyHandle, handle.ID())
		return nil, fmt.Errorf("function %q in handle %q: %w", name, handle.Name(), reflection.ErrNotFound)
	}
	fn, _ := v.FunctionValue().(*reflection.Function)

	prommetrics.Dispatch().RecordAsync(name)
	return fn.Await(args, resolve, reject, ctx)
}

// AwaitFuture chains onto an existing future: the supplied continuations
// fire when it settles (synchronously when it already has) and the
// returned future settles with the continuation's result.
func (h *Host) AwaitFuture(f *reflection.Future, resolve reflection.ResolveCallback, reject reflection.RejectCallback, ctx any) *reflection.Future {
	return f.Await(resolve, reject, ctx)
}

// Await dispatches an asynchronous call on the default host.
func Await(name string, args []*value.Value, resolve reflection.ResolveCallback, reject reflection.RejectCallback, ctx any) (*reflection.Future, error) {
	return std.Await(name, args, resolve, reject, ctx)
}

// AwaitFuture chains onto a future on the default host.
func AwaitFuture(f *reflection.Future, resolve reflection.ResolveCallback, reject reflection.RejectCallback, ctx any) *reflection.Future {
	return std.AwaitFuture(f, resolve, reject, ctx)
}
