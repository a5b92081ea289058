// Package mock implements a dependency-free adapter used by tests and
// demos. It accepts .mock sources, pretends to load them, and discovers a
// fixed set of functions whose invocations return canned values driven by
// the declared return kind.
package mock

import (
	"fmt"
	"path/filepath"

	"github.com/omnicall/omnicall/internal/logger"
	"github.com/omnicall/omnicall/pkg/loader"
	"github.com/omnicall/omnicall/pkg/plugin"
	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

// Tag is the adapter tag the loader manager resolves this adapter under.
const Tag = "mock"

// Register wires the adapter into the static plugin registry.
func Register() {
	plugin.Register(loader.ManagerName, Tag, func() any { return New() })
}

// Loader is the mock adapter state.
type Loader struct {
	impl    *loader.Impl
	handles map[string]*handle
}

type handle struct {
	name  string
	files []string
}

// funcSpec declares one discovered function: parameter kinds and the
// return kind driving the canned result.
type funcSpec struct {
	name   string
	params []param
	ret    value.Kind
	async  bool
}

type param struct {
	name string
	kind value.Kind
}

// The discovery set mirrors what a tiny dynamic script would export.
var specs = []funcSpec{
	{name: "my_empty_func", ret: value.Int},
	{name: "my_empty_func_str", ret: value.String},
	{name: "two_doubles", params: []param{{"first_parameter", value.Double}, {"second_parameter", value.Double}}, ret: value.Double},
	{name: "mixed_args", params: []param{{"a_char", value.Char}, {"b_int", value.Int}, {"c_long", value.Long}, {"d_double", value.Double}, {"e_ptr", value.Ptr}}, ret: value.Char},
	{name: "new_args", params: []param{{"a_str", value.String}}, ret: value.String},
	{name: "two_str", params: []param{{"a_str", value.String}, {"b_str", value.String}}, ret: value.String},
	{name: "my_await_func", params: []param{{"a_long", value.Long}}, ret: value.Long, async: true},
}

// New creates an uninitialized mock adapter.
func New() *Loader {
	return &Loader{handles: make(map[string]*handle)}
}

// Initialize records the owning impl.
func (l *Loader) Initialize(impl *loader.Impl, _ map[string]any) error {
	l.impl = impl
	return nil
}

// ExecutionPath accepts and ignores search paths; mock sources are never
// read from disk.
func (l *Loader) ExecutionPath(string) error { return nil }

// LoadFromFile accepts any set of .mock files.
func (l *Loader) LoadFromFile(paths []string) (any, error) {
	for _, p := range paths {
		if ext := filepath.Ext(p); ext != ".mock" {
			return nil, fmt.Errorf("mock adapter cannot load %q: unsupported extension %q", p, ext)
		}
	}
	h := &handle{name: paths[0], files: paths}
	l.handles[h.name] = h
	return h, nil
}

// LoadFromMemory accepts any buffer under its logical name.
func (l *Loader) LoadFromMemory(name string, _ []byte) (any, error) {
	h := &handle{name: name}
	l.handles[h.name] = h
	return h, nil
}

// LoadFromPackage loads a .mock artifact like a file.
func (l *Loader) LoadFromPackage(path string) (any, error) {
	return l.LoadFromFile([]string{path})
}

// Clear forgets a handle. Repeated calls are no-ops.
func (l *Loader) Clear(h any) error {
	mh, ok := h.(*handle)
	if !ok {
		return fmt.Errorf("mock adapter cannot clear foreign handle %T", h)
	}
	delete(l.handles, mh.name)
	return nil
}

// Discover populates ctx with the canned function set.
func (l *Loader) Discover(h any, ctx *reflection.Context) error {
	if _, ok := h.(*handle); !ok {
		return fmt.Errorf("mock adapter cannot discover foreign handle %T", h)
	}

	for _, spec := range specs {
		sig := reflection.NewSignature(len(spec.params))
		for i, p := range spec.params {
			sig.Set(i, p.name, l.typeOf(p.kind))
		}
		sig.SetReturn(l.typeOf(spec.ret))

		fn, err := reflection.NewFunction(spec.name, sig, spec, &functionInterface{})
		if err != nil {
			return err
		}
		fn.SetAsync(spec.async)

		wrapped := value.NewFunction(fn)
		fn.Release()
		if err := ctx.Scope().Define(spec.name, wrapped); err != nil {
			wrapped.Destroy()
			return err
		}
	}
	return l.discoverClass(ctx)
}

func (l *Loader) typeOf(k value.Kind) *reflection.Type {
	if l.impl != nil {
		if t := l.impl.Type(k.String()); t != nil {
			return t
		}
	}
	t, _ := reflection.NewType(k, k.String(), nil, nil)
	return t
}

// Destroy drops all handles.
func (l *Loader) Destroy() error {
	l.handles = make(map[string]*handle)
	return nil
}

// functionInterface returns canned values keyed on the declared return
// kind, logging the supplied arguments at debug level.
type functionInterface struct{}

func (functionInterface) Create(*reflection.Function) error { return nil }

func (functionInterface) Invoke(fn *reflection.Function, args []*value.Value) (*value.Value, error) {
	for i, a := range args {
		logger.Debug("mock argument",
			logger.KeyFunction, fn.Name(),
			logger.KeyArgc, i,
			logger.KeyKind, a.Kind().String())
	}

	ret := fn.Signature().Return()
	if ret == nil {
		return value.NewNull(), nil
	}
	switch ret.Kind() {
	case value.Bool:
		return value.NewBool(true), nil
	case value.Char:
		return value.NewChar('A'), nil
	case value.Short:
		return value.NewShort(124), nil
	case value.Int:
		return value.NewInt(1234), nil
	case value.Long:
		return value.NewLong(90000), nil
	case value.Float:
		return value.NewFloat(0.2), nil
	case value.Double:
		return value.NewDouble(3.1416), nil
	case value.String:
		return value.NewString("Hello World"), nil
	case value.Ptr:
		return value.NewPtr(nil), nil
	default:
		return nil, fmt.Errorf("mock adapter has no canned value for kind %q", ret.Kind())
	}
}

func (fi functionInterface) Await(fn *reflection.Function, args []*value.Value, resolve reflection.ResolveCallback, reject reflection.RejectCallback, ctx any) (*reflection.Future, error) {
	f := reflection.NewPendingFuture()
	out, err := fi.Invoke(fn, args)
	if err != nil {
		_ = f.Reject(value.FromError(err))
	} else {
		_ = f.Resolve(out)
	}
	return f.Await(resolve, reject, ctx), nil
}

func (functionInterface) Destroy(*reflection.Function) {}
