package reflection

import (
	"sync/atomic"

	"github.com/omnicall/omnicall/internal/logger"
	"github.com/omnicall/omnicall/pkg/value"
)

// ClassInterface is the per-class vtable an adapter supplies.
type ClassInterface interface {
	StaticGet(cls *Class, attr *Attribute) (*value.Value, error)
	StaticSet(cls *Class, attr *Attribute, v *value.Value) error
	Constructor(cls *Class, name string, ctor *Constructor, args []*value.Value) (*Object, error)
	Destroy(cls *Class)
}

// Class is a class descriptor populated during discover and sealed
// afterwards. Member maps are mutable only between creation and Seal.
type Class struct {
	name         string
	visibility   Visibility
	impl         any
	iface        ClassInterface
	attributes   map[string]*Attribute
	staticAttrs  map[string]*Attribute
	methods      map[string][]*Method
	methodOrder  []string
	constructors []*Constructor
	sealed       bool
	refs         atomic.Int64
}

// NewClass creates a class descriptor with refcount one.
func NewClass(name string, visibility Visibility, impl any, iface ClassInterface) *Class {
	cls := &Class{
		name:        name,
		visibility:  visibility,
		impl:        impl,
		iface:       iface,
		attributes:  make(map[string]*Attribute),
		staticAttrs: make(map[string]*Attribute),
		methods:     make(map[string][]*Method),
	}
	cls.refs.Store(1)
	return cls
}

// Name returns the class name.
func (cls *Class) Name() string { return cls.name }

// Visibility returns the class visibility.
func (cls *Class) Visibility() Visibility { return cls.visibility }

// Impl returns the adapter-owned blob.
func (cls *Class) Impl() any { return cls.impl }

// Retain adds a reference (value.Refcounted).
func (cls *Class) Retain() {
	cls.refs.Add(1)
}

// Release drops a reference; the adapter's destroy hook runs once at zero.
func (cls *Class) Release() {
	refs := cls.refs.Add(-1)
	if refs > 0 {
		return
	}
	if refs < 0 {
		logger.Error("class refcount underflow", logger.KeyClass, cls.name)
		return
	}
	if cls.iface != nil {
		cls.iface.Destroy(cls)
	}
	cls.impl = nil
}

// RegisterAttribute adds a per-instance attribute during discover.
func (cls *Class) RegisterAttribute(attr *Attribute) error {
	if cls.sealed {
		return ErrSealed
	}
	cls.attributes[attr.Name()] = attr
	return nil
}

// RegisterStaticAttribute adds a static attribute during discover.
func (cls *Class) RegisterStaticAttribute(attr *Attribute) error {
	if cls.sealed {
		return ErrSealed
	}
	cls.staticAttrs[attr.Name()] = attr
	return nil
}

// RegisterMethod adds a method during discover. Methods sharing a name
// form an overload set resolved positionally at call time.
func (cls *Class) RegisterMethod(m *Method) error {
	if cls.sealed {
		return ErrSealed
	}
	if _, exists := cls.methods[m.Name()]; !exists {
		cls.methodOrder = append(cls.methodOrder, m.Name())
	}
	cls.methods[m.Name()] = append(cls.methods[m.Name()], m)
	return nil
}

// RegisterConstructor adds a constructor during discover.
func (cls *Class) RegisterConstructor(ctor *Constructor) error {
	if cls.sealed {
		return ErrSealed
	}
	cls.constructors = append(cls.constructors, ctor)
	return nil
}

// Seal freezes member registration; discover calls it when done.
func (cls *Class) Seal() {
	cls.sealed = true
}

// Attribute looks up a per-instance attribute by name.
func (cls *Class) Attribute(name string) *Attribute {
	return cls.attributes[name]
}

// StaticAttribute looks up a static attribute by name.
func (cls *Class) StaticAttribute(name string) *Attribute {
	return cls.staticAttrs[name]
}

// Methods returns the overload set for a name, nil when absent.
func (cls *Class) Methods(name string) []*Method {
	return cls.methods[name]
}

// ResolveMethod picks the method whose positional parameter kinds match
// the supplied argument kinds; ties resolve to the earliest registration.
// Falls back to the first overload with matching arity when no exact kind
// match exists.
func (cls *Class) ResolveMethod(name string, kinds []value.Kind) *Method {
	overloads := cls.methods[name]
	var arityMatch *Method
	for _, m := range overloads {
		if m.Signature().Count() != len(kinds) {
			continue
		}
		if arityMatch == nil {
			arityMatch = m
		}
		matched := true
		for i, k := range kinds {
			t := m.Signature().Type(i)
			if t == nil || t.Kind() != k {
				matched = false
				break
			}
		}
		if matched {
			return m
		}
	}
	return arityMatch
}

// ResolveConstructor picks the constructor matching the argument kinds;
// ties resolve to the earliest registration. Falls back to an
// arity-matching constructor when no exact kind match exists.
func (cls *Class) ResolveConstructor(kinds []value.Kind) *Constructor {
	var arityMatch *Constructor
	for _, ctor := range cls.constructors {
		if ctor.Compare(kinds) {
			return ctor
		}
		if arityMatch == nil && ctor.Count() == len(kinds) {
			arityMatch = ctor
		}
	}
	return arityMatch
}

// StaticGet reads a static attribute through the adapter.
func (cls *Class) StaticGet(name string) (*value.Value, error) {
	attr := cls.StaticAttribute(name)
	if attr == nil {
		return nil, ErrNotFound
	}
	if cls.iface == nil {
		return nil, ErrNotFound
	}
	return cls.iface.StaticGet(cls, attr)
}

// StaticSet writes a static attribute through the adapter.
func (cls *Class) StaticSet(name string, v *value.Value) error {
	attr := cls.StaticAttribute(name)
	if attr == nil {
		return ErrNotFound
	}
	if cls.iface == nil {
		return ErrNotFound
	}
	return cls.iface.StaticSet(cls, attr, v)
}

// New constructs an instance, resolving the constructor overload by the
// argument kinds.
func (cls *Class) New(name string, args []*value.Value) (*Object, error) {
	kinds := make([]value.Kind, len(args))
	for i, a := range args {
		kinds[i] = a.Kind()
	}
	ctor := cls.ResolveConstructor(kinds)
	if ctor == nil && len(cls.constructors) > 0 {
		return nil, ErrNoMatchingConstructor
	}
	if cls.iface == nil {
		return nil, ErrNotFound
	}
	return cls.iface.Constructor(cls, name, ctor, args)
}

// Metadata returns the class as a pure-data value tree.
func (cls *Class) Metadata() *value.Value {
	attrs := make([]*value.Value, 0, len(cls.attributes))
	for _, a := range cls.attributes {
		attrs = append(attrs, a.Metadata())
	}
	statics := make([]*value.Value, 0, len(cls.staticAttrs))
	for _, a := range cls.staticAttrs {
		statics = append(statics, a.Metadata())
	}
	methods := make([]*value.Value, 0, len(cls.methodOrder))
	for _, name := range cls.methodOrder {
		for _, m := range cls.methods[name] {
			methods = append(methods, m.Metadata())
		}
	}
	ctors := make([]*value.Value, 0, len(cls.constructors))
	for _, c := range cls.constructors {
		ctors = append(ctors, c.Metadata())
	}
	return value.NewMap(
		value.NewMapPair(value.NewString("name"), value.NewString(cls.name)),
		value.NewMapPair(value.NewString("visibility"), value.NewString(cls.visibility.String())),
		value.NewMapPair(value.NewString("attributes"), value.NewArray(attrs...)),
		value.NewMapPair(value.NewString("static_attributes"), value.NewArray(statics...)),
		value.NewMapPair(value.NewString("methods"), value.NewArray(methods...)),
		value.NewMapPair(value.NewString("constructors"), value.NewArray(ctors...)),
	)
}
