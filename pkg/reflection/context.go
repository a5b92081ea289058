package reflection

import "github.com/omnicall/omnicall/pkg/value"

// Context is the namespace of one loaded handle: exactly one scope, named
// after the handle or adapter that produced it.
type Context struct {
	name  string
	scope *Scope
}

// NewContext creates a context with a fresh scope of the same name.
func NewContext(name string) *Context {
	return &Context{name: name, scope: NewScope(name)}
}

// Name returns the context name.
func (c *Context) Name() string { return c.name }

// Scope returns the context's scope.
func (c *Context) Scope() *Scope { return c.scope }

// Merge copies every binding of src into dst's scope, failing on the first
// duplicate name. On failure the partially merged names are rolled back.
func (c *Context) Merge(src *Context) error {
	var merged []string
	var failed error
	src.scope.Range(func(name string, v *value.Value) bool {
		if err := c.scope.Define(name, v.Retain()); err != nil {
			v.Destroy()
			failed = err
			return false
		}
		merged = append(merged, name)
		return true
	})
	if failed != nil {
		for _, name := range merged {
			if v := c.scope.Undefine(name); v != nil {
				v.Destroy()
			}
		}
		return failed
	}
	return nil
}

// Remove drops every binding of src from c's scope, used when a handle
// unloads.
func (c *Context) Remove(src *Context) {
	src.scope.Range(func(name string, _ *value.Value) bool {
		if v := c.scope.Undefine(name); v != nil {
			v.Destroy()
		}
		return true
	})
}

// Destroy tears down the scope and its values.
func (c *Context) Destroy() {
	c.scope.Destroy()
}
