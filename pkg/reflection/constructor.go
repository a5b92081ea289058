package reflection

import "github.com/omnicall/omnicall/pkg/value"

// Constructor is an indexed parameter list for building instances of a
// class. Constructors are comparable by their positional type sequence,
// which drives overload resolution.
type Constructor struct {
	visibility Visibility
	params     []Param
	impl       any
}

// NewConstructor creates a constructor descriptor with count parameter
// slots, filled in order via Set.
func NewConstructor(count int, visibility Visibility, impl any) *Constructor {
	return &Constructor{
		visibility: visibility,
		params:     make([]Param, count),
		impl:       impl,
	}
}

// Count returns the arity.
func (c *Constructor) Count() int { return len(c.params) }

// Set fills parameter slot i.
func (c *Constructor) Set(i int, name string, t *Type) {
	if i < 0 || i >= len(c.params) {
		return
	}
	c.params[i] = Param{Name: name, Type: t}
}

// Name returns the name of parameter i.
func (c *Constructor) Name(i int) string {
	if i < 0 || i >= len(c.params) {
		return ""
	}
	return c.params[i].Name
}

// Type returns the type of parameter i.
func (c *Constructor) Type(i int) *Type {
	if i < 0 || i >= len(c.params) {
		return nil
	}
	return c.params[i].Type
}

// Visibility returns the declared visibility.
func (c *Constructor) Visibility() Visibility { return c.visibility }

// Impl returns the adapter-owned blob.
func (c *Constructor) Impl() any { return c.impl }

// Compare reports whether the constructor matches the supplied positional
// argument kinds: arity equal and every slot's declared kind equal to the
// argument's kind.
func (c *Constructor) Compare(kinds []value.Kind) bool {
	if len(kinds) != len(c.params) {
		return false
	}
	for i, k := range kinds {
		t := c.params[i].Type
		if t == nil || t.Kind() != k {
			return false
		}
	}
	return true
}

// Metadata returns the constructor as a pure-data value tree.
func (c *Constructor) Metadata() *value.Value {
	args := make([]*value.Value, 0, len(c.params))
	for i := range c.params {
		typeName := ""
		if c.params[i].Type != nil {
			typeName = c.params[i].Type.Name()
		}
		args = append(args, value.NewMap(
			value.NewMapPair(value.NewString("name"), value.NewString(c.params[i].Name)),
			value.NewMapPair(value.NewString("type"), value.NewString(typeName)),
		))
	}
	return value.NewMap(
		value.NewMapPair(value.NewString("args"), value.NewArray(args...)),
		value.NewMapPair(value.NewString("visibility"), value.NewString(c.visibility.String())),
	)
}
