package omnicall

import (
	"context"
	"fmt"
	"time"

	"github.com/omnicall/omnicall/internal/logger"
	"github.com/omnicall/omnicall/internal/telemetry"
	"github.com/omnicall/omnicall/pkg/loader"
	prommetrics "github.com/omnicall/omnicall/pkg/metrics/prometheus"
	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/serial"
	"github.com/omnicall/omnicall/pkg/value"
)

// Call dispatches a positional call by name with native Go arguments.
func (h *Host) Call(name string, args ...any) (*value.Value, error) {
	vals, created := FromAll(args...)
	defer destroyAll(created)
	return h.CallV(name, vals)
}

// CallV dispatches a positional call with an explicit argument array. The
// caller keeps ownership of the arguments; the returned value is the
// caller's to destroy.
func (h *Host) CallV(name string, args []*value.Value) (*value.Value, error) {
	fn := h.Function(name)
	if fn == nil {
		logger.Error("symbol not found", logger.KeyFunction, name)
		return nil, fmt.Errorf("function %q: %w", name, reflection.ErrNotFound)
	}
	return h.invoke(fn, name, args)
}

// CallVS dispatches the first argc entries of the argument array.
func (h *Host) CallVS(name string, args []*value.Value, argc int) (*value.Value, error) {
	if argc < 0 || argc > len(args) {
		return nil, fmt.Errorf("argument count %d out of range [0, %d]", argc, len(args))
	}
	return h.CallV(name, args[:argc])
}

// CallT dispatches with explicit expected kinds: every argument is coerced
// to the corresponding kind before normal signature handling runs.
func (h *Host) CallT(name string, kinds []value.Kind, args ...any) (*value.Value, error) {
	vals, created := FromAll(args...)
	defer destroyAll(created)

	if len(kinds) != len(vals) {
		return nil, fmt.Errorf("expected kind list has %d entries for %d arguments", len(kinds), len(vals))
	}

	coerced := make([]*value.Value, len(vals))
	var transient []*value.Value
	defer func() { destroyAll(transient) }()
	for i, v := range vals {
		out, fresh, err := coerce(v, kinds[i])
		if err != nil {
			return signatureException(name, len(vals), kinds[i], v.Kind()), nil
		}
		if fresh {
			transient = append(transient, out)
		}
		coerced[i] = out
	}
	return h.CallV(name, coerced)
}

// CallMS dispatches a named-argument call from a serialized document: the
// configured serial back-end decodes it into a map, keys are matched to
// the signature's parameter names, and the reordered positional call runs.
func (h *Host) CallMS(name string, doc []byte) (*value.Value, error) {
	backend, err := serial.Get(h.serialName)
	if err != nil {
		return nil, err
	}
	parsed, err := backend.Deserialize(doc)
	if err != nil {
		return nil, fmt.Errorf("named-argument document for %q: %w", name, err)
	}
	defer parsed.Destroy()

	if parsed.Kind() != value.Map {
		return nil, fmt.Errorf("named-argument document for %q must be a map, got %s", name, parsed.Kind())
	}

	var keys, vals []*value.Value
	for _, pair := range parsed.MapValue() {
		kv := pair.ArrayValue()
		if len(kv) != 2 {
			continue
		}
		keys = append(keys, kv[0])
		vals = append(vals, kv[1])
	}
	return h.CallMV(name, keys, vals)
}

// CallMV dispatches a named-argument call from parallel key and value
// arrays, without a serial round-trip.
func (h *Host) CallMV(name string, keys, vals []*value.Value) (*value.Value, error) {
	if len(keys) != len(vals) {
		return nil, fmt.Errorf("named-argument call %q: %d keys for %d values", name, len(keys), len(vals))
	}

	fn := h.Function(name)
	if fn == nil {
		logger.Error("symbol not found", logger.KeyFunction, name)
		return nil, fmt.Errorf("function %q: %w", name, reflection.ErrNotFound)
	}

	sig := fn.Signature()
	positional := make([]*value.Value, sig.Count())
	for i, key := range keys {
		if key.Kind() != value.String {
			return nil, fmt.Errorf("named-argument call %q: key %d is %s, want string", name, i, key.Kind())
		}
		slot := sig.Index(key.StringValue())
		if slot < 0 {
			logger.Warn("named argument does not match any parameter",
				logger.KeyFunction, name, "key", key.StringValue())
			continue
		}
		positional[slot] = vals[i]
	}
	for i, v := range positional {
		if v == nil {
			return signatureException(name, len(keys), sig.Type(i).Kind(), value.Invalid), nil
		}
	}
	return h.invoke(fn, name, positional)
}

// CallHandle dispatches with lookup restricted to one handle: the handle
// becomes active for the duration so reentrant calls resolve against it
// first, then the global scope.
func (h *Host) CallHandle(handle *loader.Handle, name string, args ...any) (*value.Value, error) {
	vals, created := FromAll(args...)
	defer destroyAll(created)

	saved := h.active
	h.active = handle
	defer func() { h.active = saved }()

	v := handle.Get(name)
	if v == nil || v.Kind() != value.Function {
		logger.Error("symbol not found in handle",
			logger.KeyFunction, name, logger.KeyHandle, handle.ID())
		return nil, fmt.Errorf("function %q in handle %q: %w", name, handle.Name(), reflection.ErrNotFound)
	}
	fn, _ := v.FunctionValue().(*reflection.Function)
	return h.invoke(fn, name, vals)
}

// invoke runs signature checking, argument coercion and the adapter call,
// recording metrics and a span. The active handle is saved and restored by
// the callers that change it; the dispatcher itself is reentrant.
func (h *Host) invoke(fn *reflection.Function, name string, args []*value.Value) (*value.Value, error) {
	start := time.Now()
	_, span := telemetry.StartCall(context.Background(), name, len(args))

	sig := fn.Signature()
	if sig.Count() != len(args) {
		err := fmt.Errorf("arity mismatch")
		telemetry.EndSpan(span, err)
		prommetrics.Dispatch().RecordError(name)
		logger.Error("arity mismatch",
			logger.KeyFunction, name,
			logger.KeyArgc, len(args),
			"want", sig.Count())
		return arityException(name, sig.Count(), len(args)), nil
	}

	coerced := make([]*value.Value, len(args))
	var transient []*value.Value
	for i, arg := range args {
		want := value.Invalid
		if t := sig.Type(i); t != nil {
			want = t.Kind()
		}
		out, fresh, err := coerce(arg, want)
		if err != nil {
			destroyAll(transient)
			telemetry.EndSpan(span, err)
			prommetrics.Dispatch().RecordError(name)
			return signatureException(name, len(args), want, arg.Kind()), nil
		}
		if fresh {
			transient = append(transient, out)
		}
		coerced[i] = out
	}

	out, err := fn.Invoke(coerced)
	destroyAll(transient)

	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	prommetrics.Dispatch().RecordCall(name, durationMs)
	if err != nil || (out != nil && out.IsError()) {
		prommetrics.Dispatch().RecordError(name)
	}
	telemetry.EndSpan(span, err)

	logger.Debug("call dispatched",
		logger.KeyFunction, name,
		logger.KeyArgc, len(args),
		logger.KeyDurationMs, durationMs)

	return out, err
}

func destroyAll(vals []*value.Value) {
	for _, v := range vals {
		v.Destroy()
	}
}

// signatureException builds the exception value a signature mismatch
// returns: the failing name, argc and the expected versus supplied kinds.
func signatureException(name string, argc int, want, got value.Kind) *value.Value {
	return value.NewException(value.NewThrow(
		fmt.Sprintf("invalid argument for %q (argc %d): expected %s, got %s", name, argc, want, got),
		"SignatureMismatch",
		0,
	))
}

func arityException(name string, want, got int) *value.Value {
	return value.NewException(value.NewThrow(
		fmt.Sprintf("invalid call to %q: expected %d arguments, got %d", name, want, got),
		"SignatureMismatch",
		0,
	))
}

// Call dispatches a positional call on the default host.
func Call(name string, args ...any) (*value.Value, error) { return std.Call(name, args...) }

// CallV dispatches a positional call with explicit values on the default
// host.
func CallV(name string, args []*value.Value) (*value.Value, error) { return std.CallV(name, args) }

// CallVS dispatches the first argc values on the default host.
func CallVS(name string, args []*value.Value, argc int) (*value.Value, error) {
	return std.CallVS(name, args, argc)
}

// CallT dispatches with explicit expected kinds on the default host.
func CallT(name string, kinds []value.Kind, args ...any) (*value.Value, error) {
	return std.CallT(name, kinds, args...)
}

// CallMS dispatches a serialized named-argument call on the default host.
func CallMS(name string, doc []byte) (*value.Value, error) { return std.CallMS(name, doc) }

// CallMV dispatches a named-argument call on the default host.
func CallMV(name string, keys, vals []*value.Value) (*value.Value, error) {
	return std.CallMV(name, keys, vals)
}

// CallHandle dispatches inside one handle on the default host.
func CallHandle(handle *loader.Handle, name string, args ...any) (*value.Value, error) {
	return std.CallHandle(handle, name, args...)
}
