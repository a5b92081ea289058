package reflection

import "github.com/omnicall/omnicall/pkg/value"

// Attribute describes one named, typed field of a class, static or
// per-instance.
type Attribute struct {
	name       string
	typ        *Type
	visibility Visibility
	impl       any
}

// NewAttribute creates an attribute descriptor.
func NewAttribute(name string, typ *Type, visibility Visibility, impl any) *Attribute {
	return &Attribute{name: name, typ: typ, visibility: visibility, impl: impl}
}

// Name returns the attribute name.
func (a *Attribute) Name() string { return a.name }

// Type returns the declared type, nil when untyped.
func (a *Attribute) Type() *Type { return a.typ }

// Visibility returns the declared visibility.
func (a *Attribute) Visibility() Visibility { return a.visibility }

// Impl returns the adapter-owned blob.
func (a *Attribute) Impl() any { return a.impl }

// Metadata returns the attribute as a pure-data value tree.
func (a *Attribute) Metadata() *value.Value {
	typeName := ""
	if a.typ != nil {
		typeName = a.typ.Name()
	}
	return value.NewMap(
		value.NewMapPair(value.NewString("name"), value.NewString(a.name)),
		value.NewMapPair(value.NewString("type"), value.NewString(typeName)),
		value.NewMapPair(value.NewString("visibility"), value.NewString(a.visibility.String())),
	)
}
