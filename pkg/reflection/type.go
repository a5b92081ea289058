package reflection

import "github.com/omnicall/omnicall/pkg/value"

// TypeInterface lets an adapter attach construction and destruction hooks
// to the runtime representation behind a Type.
type TypeInterface interface {
	Create(t *Type) error
	Destroy(t *Type)
}

// Type is a runtime type descriptor: a kind tag, a name, and an optional
// adapter-owned implementation (for example a guest-runtime type object).
type Type struct {
	kind  value.Kind
	name  string
	impl  any
	iface TypeInterface
}

// NewType creates a type descriptor. iface may be nil for types with no
// adapter-side state.
func NewType(kind value.Kind, name string, impl any, iface TypeInterface) (*Type, error) {
	t := &Type{kind: kind, name: name, impl: impl, iface: iface}
	if iface != nil {
		if err := iface.Create(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Kind returns the kind tag.
func (t *Type) Kind() value.Kind {
	if t == nil {
		return value.Invalid
	}
	return t.kind
}

// Name returns the type name.
func (t *Type) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Impl returns the adapter-owned implementation pointer.
func (t *Type) Impl() any {
	if t == nil {
		return nil
	}
	return t.impl
}

// Destroy tears down the adapter-side state, if any.
func (t *Type) Destroy() {
	if t == nil {
		return
	}
	if t.iface != nil {
		t.iface.Destroy(t)
	}
	t.impl = nil
}

// Metadata returns the type as a pure-data value tree.
func (t *Type) Metadata() *value.Value {
	if t == nil {
		return value.NewNull()
	}
	return value.NewString(t.name)
}
