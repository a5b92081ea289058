package omnicall

import (
	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

// From converts a native Go argument into a value. Existing values pass
// through untouched; everything else maps onto the closest kind.
func From(arg any) *value.Value {
	switch t := arg.(type) {
	case nil:
		return value.NewNull()
	case *value.Value:
		return t
	case bool:
		return value.NewBool(t)
	case byte:
		return value.NewChar(t)
	case int16:
		return value.NewShort(t)
	case int32:
		return value.NewInt(t)
	case int:
		return value.NewLong(int64(t))
	case int64:
		return value.NewLong(t)
	case float32:
		return value.NewFloat(t)
	case float64:
		return value.NewDouble(t)
	case string:
		return value.NewString(t)
	case []byte:
		return value.NewBuffer(t)
	case []*value.Value:
		return value.NewArray(t...)
	case *reflection.Function:
		return value.NewFunction(t)
	case *reflection.Future:
		return value.NewFuture(t)
	case error:
		return value.FromError(t)
	default:
		return value.NewPtr(t)
	}
}

// FromAll converts a native argument list. The second return value lists
// the values the conversion created, which the caller owns.
func FromAll(args ...any) ([]*value.Value, []*value.Value) {
	out := make([]*value.Value, len(args))
	var created []*value.Value
	for i, a := range args {
		if v, ok := a.(*value.Value); ok {
			out[i] = v
			continue
		}
		out[i] = From(a)
		created = append(created, out[i])
	}
	return out, created
}

// To converts a value back into the closest native Go representation.
func To(v *value.Value) any {
	switch v.Kind() {
	case value.Bool:
		return v.BoolValue()
	case value.Char:
		return v.CharValue()
	case value.Short:
		return v.ShortValue()
	case value.Int:
		return v.IntValue()
	case value.Long:
		return v.LongValue()
	case value.Float:
		return v.FloatValue()
	case value.Double:
		return v.DoubleValue()
	case value.String:
		return v.StringValue()
	case value.Buffer:
		return v.BufferValue()
	case value.Array:
		elems := v.ArrayValue()
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = To(e)
		}
		return out
	case value.Null:
		return nil
	default:
		return v
	}
}
