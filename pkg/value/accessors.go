package value

import "github.com/omnicall/omnicall/internal/logger"

// Typed accessors. A kind mismatch returns the zero sentinel for the
// requested type and logs at error level; callers that need to distinguish
// should check Kind first.

func (v *Value) mismatch(want Kind) bool {
	if v == nil || v.kind != want {
		logger.Error("value kind mismatch",
			logger.KeyKind, v.Kind().String(),
			"want", want.String())
		return true
	}
	return false
}

// BoolValue returns the bool payload, false on mismatch.
func (v *Value) BoolValue() bool {
	if v.mismatch(Bool) {
		return false
	}
	return v.data.(bool)
}

// CharValue returns the char payload, zero on mismatch.
func (v *Value) CharValue() byte {
	if v.mismatch(Char) {
		return 0
	}
	return v.data.(byte)
}

// ShortValue returns the short payload, zero on mismatch.
func (v *Value) ShortValue() int16 {
	if v.mismatch(Short) {
		return 0
	}
	return v.data.(int16)
}

// IntValue returns the int payload, zero on mismatch.
func (v *Value) IntValue() int32 {
	if v.mismatch(Int) {
		return 0
	}
	return v.data.(int32)
}

// LongValue returns the long payload, zero on mismatch.
func (v *Value) LongValue() int64 {
	if v.mismatch(Long) {
		return 0
	}
	return v.data.(int64)
}

// FloatValue returns the float payload, zero on mismatch.
func (v *Value) FloatValue() float32 {
	if v.mismatch(Float) {
		return 0
	}
	return v.data.(float32)
}

// DoubleValue returns the double payload, zero on mismatch.
func (v *Value) DoubleValue() float64 {
	if v.mismatch(Double) {
		return 0
	}
	return v.data.(float64)
}

// StringValue returns the string payload, empty on mismatch.
func (v *Value) StringValue() string {
	if v.mismatch(String) {
		return ""
	}
	return v.data.(string)
}

// BufferValue returns the buffer payload, nil on mismatch. The returned
// slice aliases the value's storage.
func (v *Value) BufferValue() []byte {
	if v.mismatch(Buffer) {
		return nil
	}
	return v.data.([]byte)
}

// ArrayValue returns the owned children, nil on mismatch. The returned
// slice aliases the value's storage; elements stay owned by the array.
func (v *Value) ArrayValue() []*Value {
	if v.mismatch(Array) {
		return nil
	}
	return v.data.([]*Value)
}

// MapValue returns the owned key/value pairs, nil on mismatch. Each pair is
// a two-element array value.
func (v *Value) MapValue() []*Value {
	if v.mismatch(Map) {
		return nil
	}
	return v.data.([]*Value)
}

// MapGet looks up a pair by string key, nil if absent or v is not a map.
func (v *Value) MapGet(key string) *Value {
	if v == nil || v.kind != Map {
		return nil
	}
	for _, pair := range v.data.([]*Value) {
		kv := pair.ArrayValue()
		if len(kv) == 2 && kv[0].Kind() == String && kv[0].StringValue() == key {
			return kv[1]
		}
	}
	return nil
}

// PtrValue returns the weak pointer payload, nil on mismatch.
func (v *Value) PtrValue() any {
	if v.mismatch(Ptr) {
		return nil
	}
	return v.data
}

// FunctionValue returns the wrapped function descriptor, nil on mismatch.
func (v *Value) FunctionValue() Refcounted {
	if v.mismatch(Function) {
		return nil
	}
	rc, _ := v.data.(Refcounted)
	return rc
}

// ObjectValue returns the wrapped object descriptor, nil on mismatch.
func (v *Value) ObjectValue() Refcounted {
	if v.mismatch(Object) {
		return nil
	}
	rc, _ := v.data.(Refcounted)
	return rc
}

// ClassValue returns the wrapped class descriptor, nil on mismatch.
func (v *Value) ClassValue() Refcounted {
	if v.mismatch(Class) {
		return nil
	}
	rc, _ := v.data.(Refcounted)
	return rc
}

// FutureValue returns the wrapped future record, nil on mismatch.
func (v *Value) FutureValue() Refcounted {
	if v.mismatch(Future) {
		return nil
	}
	rc, _ := v.data.(Refcounted)
	return rc
}

// ExceptionValue returns the exception payload, nil on mismatch.
func (v *Value) ExceptionValue() *Throw {
	if v.mismatch(Exception) {
		return nil
	}
	ex, _ := v.data.(*Throw)
	return ex
}

// ThrowableValue returns the wrapped inner value, nil on mismatch.
func (v *Value) ThrowableValue() *Value {
	if v.mismatch(Throwable) {
		return nil
	}
	inner, _ := v.data.(*Value)
	return inner
}
