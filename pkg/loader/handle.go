package loader

import (
	"github.com/google/uuid"

	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

// Handle represents one loaded compilation unit: a file set, a memory
// buffer or a package. The inner handle is adapter-owned and opaque; the
// context holds the symbols discover produced for this unit. Handles
// loaded transitively (configuration children) hang off their parent.
type Handle struct {
	id       string
	name     string
	impl     *Impl
	inner    any
	ctx      *reflection.Context
	paths    []string
	children []*Handle
	cleared  bool
}

func newHandle(name string, impl *Impl, inner any, paths []string) *Handle {
	return &Handle{
		id:    uuid.NewString(),
		name:  name,
		impl:  impl,
		inner: inner,
		ctx:   reflection.NewContext(name),
		paths: paths,
	}
}

// ID returns the handle's unique identifier.
func (h *Handle) ID() string { return h.id }

// Name returns the logical name: the first path, the memory-load name or
// the package path.
func (h *Handle) Name() string { return h.name }

// Impl returns the owning adapter record.
func (h *Handle) Impl() *Impl { return h.impl }

// Inner returns the adapter-owned handle.
func (h *Handle) Inner() any { return h.inner }

// Context returns the handle's namespace.
func (h *Handle) Context() *reflection.Context { return h.ctx }

// Paths returns the source paths this handle was loaded from, empty for
// memory loads.
func (h *Handle) Paths() []string {
	ps := make([]string, len(h.paths))
	copy(ps, h.paths)
	return ps
}

// Children returns handles loaded transitively under this one.
func (h *Handle) Children() []*Handle {
	cs := make([]*Handle, len(h.children))
	copy(cs, h.children)
	return cs
}

// AddChild attaches a transitively loaded handle.
func (h *Handle) AddChild(child *Handle) {
	h.children = append(h.children, child)
}

// Get resolves a symbol inside this handle only.
func (h *Handle) Get(name string) *value.Value {
	return h.ctx.Scope().Get(name)
}

// retained reports whether any symbol of the handle is still referenced
// from outside the handle's own context. Clear defers adapter finalization
// while values remain live.
func (h *Handle) retained() bool {
	held := false
	h.ctx.Scope().Range(func(_ string, v *value.Value) bool {
		// One reference is the handle context's own; a second one belongs
		// to the adapter's aggregate context until unloaded, anything
		// beyond that is an external holder.
		if v.Refs() > 2 {
			held = true
			return false
		}
		return true
	})
	return held
}

// Metadata renders the handle's name and scope as a pure-data tree.
func (h *Handle) Metadata() *value.Value {
	return value.NewMap(
		value.NewMapPair(value.NewString("name"), value.NewString(h.name)),
		value.NewMapPair(value.NewString("scope"), h.ctx.Scope().Metadata()),
	)
}
