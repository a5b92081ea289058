package reflection

import (
	"strings"

	"github.com/omnicall/omnicall/pkg/value"
)

// Param is one named, typed parameter slot of a signature.
type Param struct {
	Name string
	Type *Type
}

// Signature is an ordered parameter tuple plus a return type. Slots are
// filled in order by the adapter during discover and read generically by
// the dispatcher afterwards.
type Signature struct {
	params []Param
	ret    *Type
}

// NewSignature allocates a signature with count parameter slots.
func NewSignature(count int) *Signature {
	return &Signature{params: make([]Param, count)}
}

// Count returns the declared arity.
func (s *Signature) Count() int {
	if s == nil {
		return 0
	}
	return len(s.params)
}

// Set fills parameter slot i. Out-of-range indices are ignored.
func (s *Signature) Set(i int, name string, t *Type) {
	if s == nil || i < 0 || i >= len(s.params) {
		return
	}
	s.params[i] = Param{Name: name, Type: t}
}

// Name returns the name of parameter i, empty if out of range.
func (s *Signature) Name(i int) string {
	if s == nil || i < 0 || i >= len(s.params) {
		return ""
	}
	return s.params[i].Name
}

// Type returns the type of parameter i, nil if out of range.
func (s *Signature) Type(i int) *Type {
	if s == nil || i < 0 || i >= len(s.params) {
		return nil
	}
	return s.params[i].Type
}

// Index returns the position of the named parameter, -1 if absent. Used to
// reorder named-argument calls into positional slots.
func (s *Signature) Index(name string) int {
	if s == nil {
		return -1
	}
	for i, p := range s.params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// SetReturn records the return type.
func (s *Signature) SetReturn(t *Type) {
	if s != nil {
		s.ret = t
	}
}

// Return reports the return type, nil when undeclared.
func (s *Signature) Return() *Type {
	if s == nil {
		return nil
	}
	return s.ret
}

// String renders the signature for logs: "(a int, b int) -> long".
func (s *Signature) String() string {
	if s == nil {
		return "()"
	}
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range s.params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		if p.Type != nil {
			b.WriteByte(' ')
			b.WriteString(p.Type.Name())
		}
	}
	b.WriteByte(')')
	if s.ret != nil {
		b.WriteString(" -> ")
		b.WriteString(s.ret.Name())
	}
	return b.String()
}

// Metadata returns the signature as a pure-data value tree: an args list of
// {name, type} maps plus the return type name.
func (s *Signature) Metadata() *value.Value {
	args := make([]*value.Value, 0, s.Count())
	for i := 0; i < s.Count(); i++ {
		t := s.Type(i)
		typeName := ""
		if t != nil {
			typeName = t.Name()
		}
		args = append(args, value.NewMap(
			value.NewMapPair(value.NewString("name"), value.NewString(s.Name(i))),
			value.NewMapPair(value.NewString("type"), value.NewString(typeName)),
		))
	}
	retName := ""
	if s.Return() != nil {
		retName = s.Return().Name()
	}
	return value.NewMap(
		value.NewMapPair(value.NewString("args"), value.NewArray(args...)),
		value.NewMapPair(value.NewString("ret"), value.NewString(retName)),
	)
}
