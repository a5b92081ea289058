package wasm

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

// functionInterface lowers values into the wasm stack encoding, calls the
// export and lifts the results back.
type functionInterface struct {
	adapter *Loader
}

func (functionInterface) Create(*reflection.Function) error { return nil }

func (fi *functionInterface) Invoke(fn *reflection.Function, args []*value.Value) (*value.Value, error) {
	h, ok := fn.Impl().(*handle)
	if !ok || h.module == nil {
		return nil, fmt.Errorf("wasm function %q: module unloaded", fn.Name())
	}

	export := h.module.ExportedFunction(fn.Name())
	if export == nil {
		return nil, fmt.Errorf("wasm function %q vanished from module %q", fn.Name(), h.name)
	}

	def := export.Definition()
	params := def.ParamTypes()
	if len(args) != len(params) {
		return nil, fmt.Errorf("wasm function %q expects %d arguments, got %d", fn.Name(), len(params), len(args))
	}

	stack := make([]uint64, len(args))
	for i, a := range args {
		lowered, err := lower(a, params[i])
		if err != nil {
			return nil, fmt.Errorf("wasm %q argument %d: %w", fn.Name(), i, err)
		}
		stack[i] = lowered
	}

	results, err := export.Call(fi.adapter.ctx, stack...)
	if err != nil {
		// Traps (unreachable, OOB access) surface as throwables.
		return value.NewThrowable(value.NewException(value.NewThrow(
			err.Error(), "Trap", 0))), nil
	}

	resultTypes := def.ResultTypes()
	switch len(resultTypes) {
	case 0:
		return value.NewNull(), nil
	case 1:
		return lift(results[0], resultTypes[0]), nil
	default:
		lifted := make([]*value.Value, len(resultTypes))
		for i, rt := range resultTypes {
			lifted[i] = lift(results[i], rt)
		}
		return value.NewArray(lifted...), nil
	}
}

func (fi *functionInterface) Await(fn *reflection.Function, args []*value.Value, resolve reflection.ResolveCallback, reject reflection.RejectCallback, ctx any) (*reflection.Future, error) {
	f := reflection.NewPendingFuture()
	chained := f.Await(resolve, reject, ctx)

	held := make([]*value.Value, len(args))
	for i, a := range args {
		held[i] = a.Retain()
	}

	go func() {
		defer func() {
			for _, a := range held {
				a.Destroy()
			}
		}()
		out, err := fi.Invoke(fn, held)
		switch {
		case err != nil:
			_ = f.Reject(value.FromError(err))
		case out != nil && out.IsError():
			_ = f.Reject(out)
		default:
			_ = f.Resolve(out)
		}
	}()

	return chained, nil
}

func (functionInterface) Destroy(*reflection.Function) {}

// lower encodes a value into the wasm stack representation for the
// declared parameter type.
func lower(v *value.Value, vt api.ValueType) (uint64, error) {
	switch vt {
	case api.ValueTypeI32:
		switch v.Kind() {
		case value.Int:
			return api.EncodeI32(v.IntValue()), nil
		case value.Long:
			return api.EncodeI32(int32(v.LongValue())), nil
		case value.Bool:
			if v.BoolValue() {
				return api.EncodeI32(1), nil
			}
			return api.EncodeI32(0), nil
		}
	case api.ValueTypeI64:
		switch v.Kind() {
		case value.Long:
			return api.EncodeI64(v.LongValue()), nil
		case value.Int:
			return api.EncodeI64(int64(v.IntValue())), nil
		}
	case api.ValueTypeF32:
		if v.Kind() == value.Float {
			return api.EncodeF32(v.FloatValue()), nil
		}
		if v.Kind() == value.Double {
			return api.EncodeF32(float32(v.DoubleValue())), nil
		}
	case api.ValueTypeF64:
		if v.Kind() == value.Double {
			return api.EncodeF64(v.DoubleValue()), nil
		}
		if v.Kind() == value.Float {
			return api.EncodeF64(float64(v.FloatValue())), nil
		}
	}
	return 0, fmt.Errorf("cannot lower %s to wasm %s", v.Kind(), api.ValueTypeName(vt))
}

// lift decodes a wasm stack slot into a value of the matching kind.
func lift(raw uint64, vt api.ValueType) *value.Value {
	switch vt {
	case api.ValueTypeI32:
		return value.NewInt(api.DecodeI32(raw))
	case api.ValueTypeI64:
		return value.NewLong(int64(raw))
	case api.ValueTypeF32:
		return value.NewFloat(api.DecodeF32(raw))
	case api.ValueTypeF64:
		return value.NewDouble(api.DecodeF64(raw))
	default:
		return value.NewNull()
	}
}
