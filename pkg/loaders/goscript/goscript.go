// Package goscript embeds the yaegi interpreter as a language adapter: Go
// source files load as scripts, their exported functions become polyglot
// functions invoked through reflection.
package goscript

import (
	"fmt"
	"os"
	goreflect "reflect"
	"regexp"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/omnicall/omnicall/internal/logger"
	"github.com/omnicall/omnicall/pkg/loader"
	"github.com/omnicall/omnicall/pkg/plugin"
	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

// Tag is the adapter tag.
const Tag = "goscript"

// Register wires the adapter into the static plugin registry.
func Register() {
	plugin.Register(loader.ManagerName, Tag, func() any { return New() })
}

var packageRe = regexp.MustCompile(`(?m)^package\s+(\w+)`)

// Loader embeds one yaegi interpreter shared by every handle.
type Loader struct {
	impl     *loader.Impl
	interp   *interp.Interpreter
	exported map[string]bool // symbols already handed to a context
}

type handle struct {
	name     string
	packages []string
}

// New creates an uninitialized adapter.
func New() *Loader {
	return &Loader{exported: make(map[string]bool)}
}

// Initialize creates the interpreter with the standard library available
// to scripts.
func (l *Loader) Initialize(impl *loader.Impl, _ map[string]any) error {
	l.impl = impl
	l.interp = interp.New(interp.Options{})
	if err := l.interp.Use(stdlib.Symbols); err != nil {
		return fmt.Errorf("goscript stdlib: %w", err)
	}
	return nil
}

// ExecutionPath only logs the path at debug level; it does not add a
// source root for script imports.
func (l *Loader) ExecutionPath(path string) error {
	// yaegi resolves imports against the GoPath set at construction; a
	// path noted here does not change it.
	logger.Debug("goscript execution path noted", logger.KeyPath, path)
	return nil
}

// LoadFromFile evaluates each source file in the shared interpreter.
func (l *Loader) LoadFromFile(paths []string) (any, error) {
	h := &handle{name: paths[0]}
	for _, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("goscript read %q: %w", p, err)
		}
		if err := l.evalInto(h, string(src), p); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// LoadFromMemory evaluates an in-memory source.
func (l *Loader) LoadFromMemory(name string, buffer []byte) (any, error) {
	h := &handle{name: name}
	if err := l.evalInto(h, string(buffer), name); err != nil {
		return nil, err
	}
	return h, nil
}

// LoadFromPackage is unsupported: scripts are always source.
func (l *Loader) LoadFromPackage(path string) (any, error) {
	return nil, fmt.Errorf("goscript adapter loads source files, not packages (%q)", path)
}

func (l *Loader) evalInto(h *handle, src, origin string) error {
	match := packageRe.FindStringSubmatch(src)
	if match == nil {
		return fmt.Errorf("goscript %q: missing package clause", origin)
	}
	if _, err := l.interp.Eval(src); err != nil {
		return fmt.Errorf("goscript eval %q: %w", origin, err)
	}
	h.packages = append(h.packages, match[1])
	return nil
}

// Clear forgets a handle; interpreter state stays, the symbols simply stop
// being referenced.
func (l *Loader) Clear(h any) error {
	if _, ok := h.(*handle); !ok {
		return fmt.Errorf("goscript adapter cannot clear foreign handle %T", h)
	}
	return nil
}

// Discover walks the script packages' exported symbols and defines every
// function not yet exported by an earlier handle.
func (l *Loader) Discover(raw any, ctx *reflection.Context) error {
	h, ok := raw.(*handle)
	if !ok {
		return fmt.Errorf("goscript adapter cannot discover foreign handle %T", raw)
	}

	for _, pkg := range h.packages {
		for name, rv := range l.interp.Symbols(pkg)[pkg] {
			if rv.Kind() != goreflect.Func {
				continue
			}
			if l.exported[name] {
				continue
			}

			fn, err := l.describe(name, rv)
			if err != nil {
				logger.Warn("goscript symbol skipped",
					logger.KeyFunction, name, logger.KeyError, err.Error())
				continue
			}

			wrapped := value.NewFunction(fn)
			fn.Release()
			if err := ctx.Scope().Define(name, wrapped); err != nil {
				wrapped.Destroy()
				return err
			}
			l.exported[name] = true
		}
	}
	return nil
}

// describe builds a function descriptor from a reflected script function.
func (l *Loader) describe(name string, rv goreflect.Value) (*reflection.Function, error) {
	rt := rv.Type()
	if rt.IsVariadic() {
		return nil, fmt.Errorf("variadic script functions are not callable across the boundary")
	}

	sig := reflection.NewSignature(rt.NumIn())
	for i := 0; i < rt.NumIn(); i++ {
		kind, err := kindOfGoType(rt.In(i))
		if err != nil {
			return nil, err
		}
		sig.Set(i, fmt.Sprintf("arg%d", i), l.typeOf(kind))
	}

	switch rt.NumOut() {
	case 0:
		sig.SetReturn(l.typeOf(value.Null))
	case 1, 2:
		kind, err := kindOfGoType(rt.Out(0))
		if err != nil {
			return nil, err
		}
		sig.SetReturn(l.typeOf(kind))
		if rt.NumOut() == 2 && !rt.Out(1).Implements(errorInterface) {
			return nil, fmt.Errorf("second return value must be error")
		}
	default:
		return nil, fmt.Errorf("too many return values (%d)", rt.NumOut())
	}

	return reflection.NewFunction(name, sig, rv, &functionInterface{})
}

func (l *Loader) typeOf(k value.Kind) *reflection.Type {
	if t := l.impl.Type(k.String()); t != nil {
		return t
	}
	t, _ := reflection.NewType(k, k.String(), nil, nil)
	return t
}

// Destroy drops the interpreter.
func (l *Loader) Destroy() error {
	l.interp = nil
	l.exported = make(map[string]bool)
	return nil
}
