package goscript

import (
	"fmt"
	goreflect "reflect"

	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

var errorInterface = goreflect.TypeOf((*error)(nil)).Elem()

// kindOfGoType maps a reflected Go type onto a value kind.
func kindOfGoType(t goreflect.Type) (value.Kind, error) {
	switch t.Kind() {
	case goreflect.Bool:
		return value.Bool, nil
	case goreflect.Uint8:
		return value.Char, nil
	case goreflect.Int16:
		return value.Short, nil
	case goreflect.Int32:
		return value.Int, nil
	case goreflect.Int, goreflect.Int64:
		return value.Long, nil
	case goreflect.Float32:
		return value.Float, nil
	case goreflect.Float64:
		return value.Double, nil
	case goreflect.String:
		return value.String, nil
	case goreflect.Slice:
		if t.Elem().Kind() == goreflect.Uint8 {
			return value.Buffer, nil
		}
		return value.Array, nil
	case goreflect.Map:
		return value.Map, nil
	case goreflect.Interface:
		return value.Ptr, nil
	default:
		return value.Invalid, fmt.Errorf("unsupported script type %s", t)
	}
}

// toGo converts a value into the reflected Go argument a script function
// expects.
func toGo(v *value.Value, want goreflect.Type) (goreflect.Value, error) {
	switch want.Kind() {
	case goreflect.Bool:
		return goreflect.ValueOf(v.BoolValue()), nil
	case goreflect.Uint8:
		return goreflect.ValueOf(v.CharValue()), nil
	case goreflect.Int16:
		return goreflect.ValueOf(v.ShortValue()), nil
	case goreflect.Int32:
		return goreflect.ValueOf(v.IntValue()), nil
	case goreflect.Int:
		return goreflect.ValueOf(int(v.LongValue())), nil
	case goreflect.Int64:
		return goreflect.ValueOf(v.LongValue()), nil
	case goreflect.Float32:
		return goreflect.ValueOf(v.FloatValue()), nil
	case goreflect.Float64:
		return goreflect.ValueOf(v.DoubleValue()), nil
	case goreflect.String:
		return goreflect.ValueOf(v.StringValue()), nil
	case goreflect.Slice:
		if want.Elem().Kind() == goreflect.Uint8 {
			return goreflect.ValueOf(v.BufferValue()), nil
		}
		return goreflect.Value{}, fmt.Errorf("unsupported slice parameter %s", want)
	case goreflect.Interface:
		return goreflect.ValueOf(v.PtrValue()), nil
	default:
		return goreflect.Value{}, fmt.Errorf("unsupported parameter type %s", want)
	}
}

// fromGo converts a script function's return value back into a value.
func fromGo(rv goreflect.Value) *value.Value {
	switch rv.Kind() {
	case goreflect.Bool:
		return value.NewBool(rv.Bool())
	case goreflect.Uint8:
		return value.NewChar(byte(rv.Uint()))
	case goreflect.Int16:
		return value.NewShort(int16(rv.Int()))
	case goreflect.Int32:
		return value.NewInt(int32(rv.Int()))
	case goreflect.Int, goreflect.Int64:
		return value.NewLong(rv.Int())
	case goreflect.Float32:
		return value.NewFloat(float32(rv.Float()))
	case goreflect.Float64:
		return value.NewDouble(rv.Float())
	case goreflect.String:
		return value.NewString(rv.String())
	case goreflect.Slice:
		if rv.Type().Elem().Kind() == goreflect.Uint8 {
			return value.NewBuffer(rv.Bytes())
		}
		elems := make([]*value.Value, rv.Len())
		for i := range elems {
			elems[i] = fromGo(rv.Index(i))
		}
		return value.NewArray(elems...)
	case goreflect.Invalid:
		return value.NewNull()
	default:
		return value.NewPtr(rv.Interface())
	}
}

// functionInterface invokes the reflected script function, surfacing
// panics and error returns as exception values.
type functionInterface struct{}

func (functionInterface) Create(*reflection.Function) error { return nil }

func (functionInterface) Invoke(fn *reflection.Function, args []*value.Value) (out *value.Value, err error) {
	rv, ok := fn.Impl().(goreflect.Value)
	if !ok {
		return nil, fmt.Errorf("goscript function %q lost its implementation", fn.Name())
	}

	defer func() {
		if r := recover(); r != nil {
			out = value.NewThrowable(value.NewException(value.NewThrow(
				fmt.Sprint(r), "Panic", 0)))
			err = nil
		}
	}()

	rt := rv.Type()
	in := make([]goreflect.Value, len(args))
	for i, a := range args {
		converted, convErr := toGo(a, rt.In(i))
		if convErr != nil {
			return nil, fmt.Errorf("goscript %q argument %d: %w", fn.Name(), i, convErr)
		}
		in[i] = converted
	}

	results := rv.Call(in)
	switch len(results) {
	case 0:
		return value.NewNull(), nil
	case 1:
		return fromGo(results[0]), nil
	default:
		if !results[1].IsNil() {
			scriptErr := results[1].Interface().(error)
			return value.NewThrowable(value.FromError(scriptErr)), nil
		}
		return fromGo(results[0]), nil
	}
}

func (fi functionInterface) Await(fn *reflection.Function, args []*value.Value, resolve reflection.ResolveCallback, reject reflection.RejectCallback, ctx any) (*reflection.Future, error) {
	f := reflection.NewPendingFuture()
	chained := f.Await(resolve, reject, ctx)

	// Retain arguments across the goroutine boundary; the caller may
	// destroy its references as soon as Await returns.
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
