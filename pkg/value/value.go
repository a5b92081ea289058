// Package value implements the tagged, refcounted container every
// cross-adapter argument and result flows through. A Value owns its payload;
// composite kinds (array, map) own their children recursively. Reference
// values wrap another Value without copying, enabling out-parameters and
// cross-adapter mutation.
package value

import (
	"sync/atomic"

	"github.com/omnicall/omnicall/internal/logger"
)

// Refcounted is implemented by descriptor payloads (functions, objects,
// classes, futures) so a Value can participate in their lifetime without
// importing the reflection package.
type Refcounted interface {
	Retain()
	Release()
}

// Value is a tagged dynamic container. The zero Value is invalid; use the
// typed constructors. All constructors return a Value with refcount one.
type Value struct {
	kind Kind
	refs atomic.Int64
	size int // payload size in bytes
	data any
}

func newValue(kind Kind, size int, data any) *Value {
	v := &Value{kind: kind, size: size, data: data}
	v.refs.Store(1)
	return v
}

// NewBool creates a value of kind bool.
func NewBool(b bool) *Value { return newValue(Bool, 1, b) }

// NewChar creates a value of kind char.
func NewChar(c byte) *Value { return newValue(Char, 1, c) }

// NewShort creates a value of kind short.
func NewShort(s int16) *Value { return newValue(Short, 2, s) }

// NewInt creates a value of kind int.
func NewInt(i int32) *Value { return newValue(Int, 4, i) }

// NewLong creates a value of kind long.
func NewLong(l int64) *Value { return newValue(Long, 8, l) }

// NewFloat creates a value of kind float.
func NewFloat(f float32) *Value { return newValue(Float, 4, f) }

// NewDouble creates a value of kind double.
func NewDouble(d float64) *Value { return newValue(Double, 8, d) }

// NewString creates a value of kind string.
func NewString(s string) *Value { return newValue(String, len(s)+1, s) }

// NewBuffer creates a value of kind buffer. The buffer is copied.
func NewBuffer(b []byte) *Value {
	dup := make([]byte, len(b))
	copy(dup, b)
	return newValue(Buffer, len(dup), dup)
}

// NewArray creates a value of kind array owning the given children. The
// children's lifetimes become bounded by the parent's: destroying the array
// destroys them.
func NewArray(elements ...*Value) *Value {
	owned := make([]*Value, len(elements))
	copy(owned, elements)
	return newValue(Array, len(owned), owned)
}

// NewMap creates a value of kind map from key/value pairs. Each pair is a
// two-element array value owned by the map.
func NewMap(pairs ...*Value) *Value {
	owned := make([]*Value, len(pairs))
	copy(owned, pairs)
	return newValue(Map, len(owned), owned)
}

// NewMapPair is a convenience constructor for one map entry.
func NewMapPair(key, val *Value) *Value {
	return NewArray(key, val)
}

// NewPtr creates a value of kind ptr carrying a weak reference to arbitrary
// storage. Ownership stays with the caller.
func NewPtr(p any) *Value { return newValue(Ptr, ptrSize, p) }

// NewNull creates a value of kind null.
func NewNull() *Value { return newValue(Null, 0, nil) }

// NewFunction wraps a function descriptor. The descriptor is retained for
// the lifetime of the value.
func NewFunction(fn Refcounted) *Value {
	if fn != nil {
		fn.Retain()
	}
	return newValue(Function, ptrSize, fn)
}

// NewObject wraps an object descriptor, retaining it.
func NewObject(obj Refcounted) *Value {
	if obj != nil {
		obj.Retain()
	}
	return newValue(Object, ptrSize, obj)
}

// NewClass wraps a class descriptor, retaining it.
func NewClass(cls Refcounted) *Value {
	if cls != nil {
		cls.Retain()
	}
	return newValue(Class, ptrSize, cls)
}

// NewFuture wraps a future record, retaining it.
func NewFuture(f Refcounted) *Value {
	if f != nil {
		f.Retain()
	}
	return newValue(Future, ptrSize, f)
}

// NewException creates a value of kind exception.
func NewException(ex *Throw) *Value { return newValue(Exception, ptrSize, ex) }

// NewThrowable wraps an exception value for propagation across the boundary.
// The inner value is owned by the throwable.
func NewThrowable(inner *Value) *Value { return newValue(Throwable, ptrSize, inner) }

const ptrSize = 8

// Kind returns the type tag.
func (v *Value) Kind() Kind {
	if v == nil {
		return Invalid
	}
	return v.kind
}

// Size returns the payload size in bytes recorded at construction. For
// composite kinds it is the element count.
func (v *Value) Size() int {
	if v == nil {
		return 0
	}
	return v.size
}

// Refs returns the current reference count.
func (v *Value) Refs() int64 {
	if v == nil {
		return 0
	}
	return v.refs.Load()
}

// Retain increments the reference count and returns v for chaining.
func (v *Value) Retain() *Value {
	if v == nil {
		return nil
	}
	v.refs.Add(1)
	return v
}

// Destroy decrements the reference count, freeing the payload when it
// reaches zero. Composite children are destroyed recursively; wrapped
// descriptors are released. Destroying a nil value is a no-op.
func (v *Value) Destroy() {
	if v == nil {
		return
	}
	refs := v.refs.Add(-1)
	if refs > 0 {
		return
	}
	if refs < 0 {
		logger.Error("value refcount underflow", logger.KeyKind, v.kind.String())
		return
	}
	switch v.kind {
	case Array, Map:
		for _, child := range v.data.([]*Value) {
			child.Destroy()
		}
	case Function, Object, Class, Future:
		if rc, ok := v.data.(Refcounted); ok && rc != nil {
			rc.Release()
		}
	case Throwable:
		if inner, ok := v.data.(*Value); ok {
			inner.Destroy()
		}
	}
	v.data = nil
	v.kind = Invalid
}

// Reference returns a new kind-ptr value whose payload is v itself. No deep
// copy happens; mutations through the reference are visible to every holder.
func (v *Value) Reference() *Value {
	if v == nil {
		return nil
	}
	return newValue(Ptr, ptrSize, v)
}

// Dereference returns the value a reference points to, or nil when v is not
// a reference value.
func (v *Value) Dereference() *Value {
	if v == nil || v.kind != Ptr {
		return nil
	}
	target, ok := v.data.(*Value)
	if !ok {
		return nil
	}
	return target
}

// IsReference reports whether v is a reference value (kind ptr pointing at
// another value container).
func (v *Value) IsReference() bool {
	if v == nil || v.kind != Ptr {
		return false
	}
	_, ok := v.data.(*Value)
	return ok
}

// Copy performs a deep recursive clone. Wrapped descriptors are shared and
// retained rather than cloned; everything else is duplicated. Cyclic
// composites are not supported.
func (v *Value) Copy() *Value {
	if v == nil {
		return nil
	}
	switch v.kind {
	case Array, Map:
		children := v.data.([]*Value)
		dup := make([]*Value, len(children))
		for i, child := range children {
			dup[i] = child.Copy()
		}
		return newValue(v.kind, len(dup), dup)
	case Buffer:
		return NewBuffer(v.data.([]byte))
	case Function, Object, Class, Future:
		if rc, ok := v.data.(Refcounted); ok && rc != nil {
			rc.Retain()
		}
		return newValue(v.kind, v.size, v.data)
	case Throwable:
		inner, _ := v.data.(*Value)
		return newValue(Throwable, v.size, inner.Copy())
	default:
		return newValue(v.kind, v.size, v.data)
	}
}
