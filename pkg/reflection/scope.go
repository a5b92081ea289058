package reflection

import (
	"github.com/omnicall/omnicall/pkg/value"
)

// Scope is a named symbol table mapping names to Values it owns. Iteration
// order is registration order.
type Scope struct {
	name   string
	values map[string]*value.Value
	order  []string
}

// NewScope creates an empty scope.
func NewScope(name string) *Scope {
	return &Scope{
		name:   name,
		values: make(map[string]*value.Value),
	}
}

// Name returns the scope name.
func (s *Scope) Name() string { return s.name }

// Size returns the number of defined symbols.
func (s *Scope) Size() int { return len(s.values) }

// Define binds a name to a value, taking ownership. Redefinition returns
// ErrAlreadyDefined.
func (s *Scope) Define(name string, v *value.Value) error {
	if _, exists := s.values[name]; exists {
		return ErrAlreadyDefined
	}
	s.values[name] = v
	s.order = append(s.order, name)
	return nil
}

// Get returns the value bound to name, nil when absent. The scope keeps
// ownership.
func (s *Scope) Get(name string) *value.Value {
	return s.values[name]
}

// Undefine removes a binding and returns its value; the caller assumes
// ownership. Returns nil when absent.
func (s *Scope) Undefine(name string) *value.Value {
	v, exists := s.values[name]
	if !exists {
		return nil
	}
	delete(s.values, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return v
}

// Names returns the defined names in registration order.
func (s *Scope) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Range iterates bindings in registration order until fn returns false.
func (s *Scope) Range(fn func(name string, v *value.Value) bool) {
	for _, name := range s.order {
		if !fn(name, s.values[name]) {
			return
		}
	}
}

// Destroy releases every owned value and empties the scope.
func (s *Scope) Destroy() {
	for _, name := range s.order {
		s.values[name].Destroy()
	}
	s.values = make(map[string]*value.Value)
	s.order = nil
}

// Metadata renders the scope's functions and classes as a pure-data tree
// for inspection output.
func (s *Scope) Metadata() *value.Value {
	funcs := make([]*value.Value, 0)
	classes := make([]*value.Value, 0)
	objects := make([]*value.Value, 0)
	for _, name := range s.order {
		v := s.values[name]
		switch v.Kind() {
		case value.Function:
			if fn, ok := v.FunctionValue().(*Function); ok {
				funcs = append(funcs, fn.Metadata())
			}
		case value.Class:
			if cls, ok := v.ClassValue().(*Class); ok {
				classes = append(classes, cls.Metadata())
			}
		case value.Object:
			if obj, ok := v.ObjectValue().(*Object); ok {
				objects = append(objects, obj.Metadata())
			}
		}
	}
	return value.NewMap(
		value.NewMapPair(value.NewString("name"), value.NewString(s.name)),
		value.NewMapPair(value.NewString("funcs"), value.NewArray(funcs...)),
		value.NewMapPair(value.NewString("classes"), value.NewArray(classes...)),
		value.NewMapPair(value.NewString("objects"), value.NewArray(objects...)),
	)
}
