// Package jsonserial is the JSON serial back-end. Serialized map keys keep
// their insertion order; deserialized objects list their keys sorted, not
// in document order. Both directions are deterministic.
package jsonserial

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/Velocidex/ordereddict"

	"github.com/omnicall/omnicall/pkg/serial"
	"github.com/omnicall/omnicall/pkg/value"
)

// Name is the back-end's registry key.
const Name = "json"

// Register wires the back-end into the serial registry.
func Register() {
	serial.Register(&Backend{})
}

// Backend implements serial.Serial over encoding/json with ordered maps.
type Backend struct{}

// Name returns "json".
func (*Backend) Name() string { return Name }

// Serialize renders the value tree as JSON. Kinds JSON cannot represent
// (ptr, function, future, class, object) render through their textual
// form.
func (*Backend) Serialize(v *value.Value) ([]byte, error) {
	return json.Marshal(toAny(v))
}

func toAny(v *value.Value) any {
	switch v.Kind() {
	case value.Bool:
		return v.BoolValue()
	case value.Char:
		return string(rune(v.CharValue()))
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
		return v.String() // hex form
	case value.Array:
		elems := v.ArrayValue()
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = toAny(e)
		}
		return out
	case value.Map:
		dict := ordereddict.NewDict()
		for _, pair := range v.MapValue() {
			kv := pair.ArrayValue()
			if len(kv) != 2 {
				continue
			}
			dict.Set(kv[0].String(), toAny(kv[1]))
		}
		return dict
	case value.Null:
		return nil
	case value.Exception, value.Throwable:
		if t := v.Unwrap(); t != nil {
			dict := ordereddict.NewDict()
			dict.Set("message", t.Message)
			dict.Set("label", t.Label)
			dict.Set("code", t.Code)
			return dict
		}
		return v.String()
	default:
		return v.String()
	}
}

// Deserialize parses JSON into a value tree: objects become maps with
// string keys in sorted order (document order is not kept), integral
// numbers become longs, fractional numbers doubles.
func (*Backend) Deserialize(data []byte) (*value.Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("json deserialize: %w", err)
	}
	return fromAny(raw), nil
}

func fromAny(raw any) *value.Value {
	switch t := raw.(type) {
	case nil:
		return value.NewNull()
	case bool:
		return value.NewBool(t)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return value.NewLong(int64(t))
		}
		return value.NewDouble(t)
	case string:
		return value.NewString(t)
	case []any:
		elems := make([]*value.Value, len(t))
		for i, e := range t {
			elems[i] = fromAny(e)
		}
		return value.NewArray(elems...)
	case map[string]any:
		// encoding/json randomizes Go map order; sort the keys so repeated
		// parses agree.
		pairs := make([]*value.Value, 0, len(t))
		for _, key := range sortedKeys(t) {
			pairs = append(pairs, value.NewMapPair(value.NewString(key), fromAny(t[key])))
		}
		return value.NewMap(pairs...)
	default:
		return value.NewNull()
	}
}
