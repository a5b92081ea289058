// Package wasm embeds the wazero runtime as a language adapter:
// WebAssembly modules load from files, buffers or packaged artifacts, and
// their exported functions become polyglot functions with numeric
// signatures lifted from the wasm type section.
package wasm

import (
	"context"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/omnicall/omnicall/internal/logger"
	"github.com/omnicall/omnicall/pkg/loader"
	"github.com/omnicall/omnicall/pkg/plugin"
	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

// Tag is the adapter tag.
const Tag = "wasm"

// Register wires the adapter into the static plugin registry.
func Register() {
	plugin.Register(loader.ManagerName, Tag, func() any { return New() })
}

// Loader owns one wazero runtime shared by every module.
type Loader struct {
	impl    *loader.Impl
	ctx     context.Context
	runtime wazero.Runtime
	modules int
}

type handle struct {
	name     string
	compiled wazero.CompiledModule
	module   api.Module
}

// New creates an uninitialized adapter.
func New() *Loader {
	return &Loader{}
}

// Initialize creates the runtime with WASI imports available, so modules
// built against wasi_snapshot_preview1 instantiate cleanly.
func (l *Loader) Initialize(impl *loader.Impl, _ map[string]any) error {
	l.impl = impl
	l.ctx = context.Background()
	l.runtime = wazero.NewRuntime(l.ctx)
	wasi_snapshot_preview1.MustInstantiate(l.ctx, l.runtime)
	return nil
}

// ExecutionPath is a no-op: wasm modules carry no search path concept.
func (l *Loader) ExecutionPath(string) error { return nil }

// LoadFromFile loads one wasm binary. Multi-file units are not a wasm
// concept; exactly one path is accepted.
func (l *Loader) LoadFromFile(paths []string) (any, error) {
	if len(paths) != 1 {
		return nil, fmt.Errorf("wasm adapter loads exactly one module per handle, got %d", len(paths))
	}
	binary, err := os.ReadFile(paths[0])
	if err != nil {
		return nil, fmt.Errorf("wasm read %q: %w", paths[0], err)
	}
	return l.instantiate(paths[0], binary)
}

// LoadFromMemory instantiates a module from an in-memory binary.
func (l *Loader) LoadFromMemory(name string, buffer []byte) (any, error) {
	return l.instantiate(name, buffer)
}

// LoadFromPackage loads a packaged .wasm artifact.
func (l *Loader) LoadFromPackage(path string) (any, error) {
	return l.LoadFromFile([]string{path})
}

func (l *Loader) instantiate(name string, binary []byte) (any, error) {
	compiled, err := l.runtime.CompileModule(l.ctx, binary)
	if err != nil {
		return nil, fmt.Errorf("wasm compile %q: %w", name, err)
	}

	l.modules++
	cfg := wazero.NewModuleConfig().WithName(fmt.Sprintf("%s-%d", name, l.modules))
	module, err := l.runtime.InstantiateModule(l.ctx, compiled, cfg)
	if err != nil {
		_ = compiled.Close(l.ctx)
		return nil, fmt.Errorf("wasm instantiate %q: %w", name, err)
	}

	return &handle{name: name, compiled: compiled, module: module}, nil
}

// Clear closes the module instance. Safe to repeat.
func (l *Loader) Clear(raw any) error {
	h, ok := raw.(*handle)
	if !ok {
		return fmt.Errorf("wasm adapter cannot clear foreign handle %T", raw)
	}
	if h.module != nil {
		_ = h.module.Close(l.ctx)
		h.module = nil
	}
	if h.compiled != nil {
		_ = h.compiled.Close(l.ctx)
		h.compiled = nil
	}
	return nil
}

// Discover lifts every exported function with a liftable signature into
// the context. Exports with reference-typed parameters are skipped with a
// warning, matching the numeric subset the value plane can represent.
func (l *Loader) Discover(raw any, ctx *reflection.Context) error {
	h, ok := raw.(*handle)
	if !ok {
		return fmt.Errorf("wasm adapter cannot discover foreign handle %T", raw)
	}

	for name, def := range h.compiled.ExportedFunctions() {
		sig, err := l.liftSignature(def)
		if err != nil {
			logger.Warn("wasm export skipped",
				logger.KeyFunction, name, logger.KeyError, err.Error())
			continue
		}

		fn, err := reflection.NewFunction(name, sig, h, &functionInterface{adapter: l})
		if err != nil {
			return err
		}

		wrapped := value.NewFunction(fn)
		fn.Release()
		if err := ctx.Scope().Define(name, wrapped); err != nil {
			wrapped.Destroy()
			return err
		}
	}
	return nil
}

func (l *Loader) liftSignature(def api.FunctionDefinition) (*reflection.Signature, error) {
	params := def.ParamTypes()
	sig := reflection.NewSignature(len(params))
	for i, vt := range params {
		kind, err := kindOfValueType(vt)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("arg%d", i)
		if names := def.ParamNames(); i < len(names) {
			name = names[i]
		}
		sig.Set(i, name, l.typeOf(kind))
	}

	results := def.ResultTypes()
	switch len(results) {
	case 0:
		sig.SetReturn(l.typeOf(value.Null))
	case 1:
		kind, err := kindOfValueType(results[0])
		if err != nil {
			return nil, err
		}
		sig.SetReturn(l.typeOf(kind))
	default:
		// Multi-value results lower to an array.
		sig.SetReturn(l.typeOf(value.Array))
	}
	return sig, nil
}

func (l *Loader) typeOf(k value.Kind) *reflection.Type {
	if t := l.impl.Type(k.String()); t != nil {
		return t
	}
	t, _ := reflection.NewType(k, k.String(), nil, nil)
	return t
}

// Destroy closes the runtime and every module with it.
func (l *Loader) Destroy() error {
	if l.runtime != nil {
		err := l.runtime.Close(l.ctx)
		l.runtime = nil
		return err
	}
	return nil
}

func kindOfValueType(vt api.ValueType) (value.Kind, error) {
	switch vt {
	case api.ValueTypeI32:
		return value.Int, nil
	case api.ValueTypeI64:
		return value.Long, nil
	case api.ValueTypeF32:
		return value.Float, nil
	case api.ValueTypeF64:
		return value.Double, nil
	default:
		return value.Invalid, fmt.Errorf("unsupported wasm value type %s", api.ValueTypeName(vt))
	}
}
