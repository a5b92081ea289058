package loader

import (
	"fmt"

	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

// Impl is the manager's per-adapter record: the adapter itself, its
// aggregate context (every discovered symbol across its handles), the
// types it defines and the handles it has produced.
type Impl struct {
	tag         string
	loader      Loader
	ctx         *reflection.Context
	types       map[string]*reflection.Type
	handles     map[string]*Handle
	handleOrder []string
	execPaths   []string
	initialized bool
}

func newImpl(tag string, l Loader) *Impl {
	return &Impl{
		tag:     tag,
		loader:  l,
		ctx:     reflection.NewContext(tag),
		types:   make(map[string]*reflection.Type),
		handles: make(map[string]*Handle),
	}
}

// Tag returns the adapter tag.
func (im *Impl) Tag() string { return im.tag }

// Loader returns the adapter callbacks.
func (im *Impl) Loader() Loader { return im.loader }

// Context returns the adapter's aggregate context.
func (im *Impl) Context() *reflection.Context { return im.ctx }

// Initialized reports whether Initialize has run.
func (im *Impl) Initialized() bool { return im.initialized }

// DefineType records a type this adapter understands. Host pre-defines a
// type per builtin kind so numeric lookups by name succeed before any
// language adapter loads.
func (im *Impl) DefineType(t *reflection.Type) error {
	if _, exists := im.types[t.Name()]; exists {
		return fmt.Errorf("type %q already defined by adapter %q", t.Name(), im.tag)
	}
	im.types[t.Name()] = t
	return nil
}

// Type looks up a defined type by name, nil when absent.
func (im *Impl) Type(name string) *reflection.Type {
	return im.types[name]
}

// ExecPaths returns the accumulated execution paths.
func (im *Impl) ExecPaths() []string {
	paths := make([]string, len(im.execPaths))
	copy(paths, im.execPaths)
	return paths
}

// Handles returns the live handles in load order.
func (im *Impl) Handles() []*Handle {
	hs := make([]*Handle, 0, len(im.handleOrder))
	for _, id := range im.handleOrder {
		if h := im.handles[id]; h != nil {
			hs = append(hs, h)
		}
	}
	return hs
}

func (im *Impl) addHandle(h *Handle) {
	im.handles[h.id] = h
	im.handleOrder = append(im.handleOrder, h.id)
}

func (im *Impl) removeHandle(h *Handle) {
	delete(im.handles, h.id)
	for i, id := range im.handleOrder {
		if id == h.id {
			im.handleOrder = append(im.handleOrder[:i], im.handleOrder[i+1:]...)
			break
		}
	}
}

// Metadata renders the adapter's handles and their symbols as a pure-data
// tree, keyed for the inspection surface.
func (im *Impl) Metadata() *value.Value {
	handles := make([]*value.Value, 0, len(im.handleOrder))
	for _, h := range im.Handles() {
		handles = append(handles, h.Metadata())
	}
	return value.NewArray(handles...)
}
