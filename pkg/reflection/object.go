package reflection

import (
	"sync/atomic"

	"github.com/omnicall/omnicall/internal/logger"
	"github.com/omnicall/omnicall/pkg/value"
)

// ObjectInterface is the per-object vtable an adapter supplies.
type ObjectInterface interface {
	Get(obj *Object, attr *Attribute) (*value.Value, error)
	Set(obj *Object, attr *Attribute, v *value.Value) error
	MethodInvoke(obj *Object, m *Method, args []*value.Value) (*value.Value, error)
	MethodAwait(obj *Object, m *Method, args []*value.Value, resolve ResolveCallback, reject RejectCallback, ctx any) (*Future, error)
	Destructor(obj *Object)
	Destroy(obj *Object)
}

// Object is an instance descriptor. It retains its class for its lifetime;
// the adapter's destructor runs under its runtime's rules when the last
// reference drops.
type Object struct {
	name  string
	cls   *Class
	impl  any
	iface ObjectInterface
	refs  atomic.Int64
}

// NewObject creates an object descriptor with refcount one, retaining the
// class.
func NewObject(name string, cls *Class, impl any, iface ObjectInterface) *Object {
	obj := &Object{name: name, cls: cls, impl: impl, iface: iface}
	obj.refs.Store(1)
	if cls != nil {
		cls.Retain()
	}
	return obj
}

// Name returns the instance name.
func (obj *Object) Name() string { return obj.name }

// Class returns the owning class.
func (obj *Object) Class() *Class { return obj.cls }

// Impl returns the adapter-owned instance blob.
func (obj *Object) Impl() any { return obj.impl }

// Retain adds a reference (value.Refcounted).
func (obj *Object) Retain() {
	obj.refs.Add(1)
}

// Release drops a reference; at zero the adapter destructor and destroy
// hooks run and the class reference is released.
func (obj *Object) Release() {
	refs := obj.refs.Add(-1)
	if refs > 0 {
		return
	}
	if refs < 0 {
		logger.Error("object refcount underflow", "object", obj.name)
		return
	}
	if obj.iface != nil {
		obj.iface.Destructor(obj)
		obj.iface.Destroy(obj)
	}
	if obj.cls != nil {
		obj.cls.Release()
	}
	obj.impl = nil
}

// Refs returns the current reference count.
func (obj *Object) Refs() int64 { return obj.refs.Load() }

// Get reads an attribute through the adapter.
func (obj *Object) Get(name string) (*value.Value, error) {
	attr := obj.cls.Attribute(name)
	if attr == nil {
		return nil, ErrNotFound
	}
	if obj.iface == nil {
		return nil, ErrNotFound
	}
	return obj.iface.Get(obj, attr)
}

// Set writes an attribute through the adapter.
func (obj *Object) Set(name string, v *value.Value) error {
	attr := obj.cls.Attribute(name)
	if attr == nil {
		return ErrNotFound
	}
	if obj.iface == nil {
		return ErrNotFound
	}
	return obj.iface.Set(obj, attr, v)
}

// CallMethod resolves the named overload by argument kinds and invokes it
// through the adapter.
func (obj *Object) CallMethod(name string, args []*value.Value) (*value.Value, error) {
	kinds := make([]value.Kind, len(args))
	for i, a := range args {
		kinds[i] = a.Kind()
	}
	m := obj.cls.ResolveMethod(name, kinds)
	if m == nil {
		return nil, ErrNotFound
	}
	if obj.iface == nil {
		return nil, ErrNotFound
	}
	return obj.iface.MethodInvoke(obj, m, args)
}

// AwaitMethod dispatches an async method through the adapter.
func (obj *Object) AwaitMethod(name string, args []*value.Value, resolve ResolveCallback, reject RejectCallback, ctx any) (*Future, error) {
	kinds := make([]value.Kind, len(args))
	for i, a := range args {
		kinds[i] = a.Kind()
	}
	m := obj.cls.ResolveMethod(name, kinds)
	if m == nil {
		return nil, ErrNotFound
	}
	if !m.Async() {
		return nil, ErrNotAsync
	}
	if obj.iface == nil {
		return nil, ErrNotFound
	}
	return obj.iface.MethodAwait(obj, m, args, resolve, reject, ctx)
}

// Metadata returns the object as a pure-data value tree.
func (obj *Object) Metadata() *value.Value {
	className := ""
	if obj.cls != nil {
		className = obj.cls.Name()
	}
	return value.NewMap(
		value.NewMapPair(value.NewString("name"), value.NewString(obj.name)),
		value.NewMapPair(value.NewString("class"), value.NewString(className)),
	)
}
