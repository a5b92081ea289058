package reflection

import "github.com/omnicall/omnicall/pkg/value"

// Method is a callable member of a class. Invocation goes through the
// owning object's vtable, not the method itself.
type Method struct {
	cls        *Class
	name       string
	sig        *Signature
	visibility Visibility
	async      bool
	impl       any
}

// NewMethod creates a method descriptor bound to its class.
func NewMethod(cls *Class, name string, sig *Signature, visibility Visibility, async bool, impl any) *Method {
	return &Method{cls: cls, name: name, sig: sig, visibility: visibility, async: async, impl: impl}
}

// Class returns the owning class.
func (m *Method) Class() *Class { return m.cls }

// Name returns the method name.
func (m *Method) Name() string { return m.name }

// Signature returns the declared signature.
func (m *Method) Signature() *Signature { return m.sig }

// Visibility returns the declared visibility.
func (m *Method) Visibility() Visibility { return m.visibility }

// Async reports whether the adapter marked the method asynchronous.
func (m *Method) Async() bool { return m.async }

// Impl returns the adapter-owned blob.
func (m *Method) Impl() any { return m.impl }

// Metadata returns the method as a pure-data value tree.
func (m *Method) Metadata() *value.Value {
	return value.NewMap(
		value.NewMapPair(value.NewString("name"), value.NewString(m.name)),
		value.NewMapPair(value.NewString("signature"), m.sig.Metadata()),
		value.NewMapPair(value.NewString("async"), value.NewBool(m.async)),
		value.NewMapPair(value.NewString("visibility"), value.NewString(m.visibility.String())),
	)
}
