// Package omnicall is the public surface of the polyglot function-call
// runtime: initialize the host, load guest code through language adapters,
// register native callbacks, and call anything loaded — positionally, by
// named arguments, or asynchronously — with values that cross runtime
// boundaries without copies when kinds line up.
package omnicall

import (
	"fmt"
	"sync"

	"github.com/omnicall/omnicall/pkg/forksafe"
	"github.com/omnicall/omnicall/pkg/loader"
	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/serial/jsonserial"
	"github.com/omnicall/omnicall/pkg/value"
)

// Host is one polyglot runtime instance. The zero Host is unusable; call
// Initialize first. The dispatch surface assumes the caller serializes
// invocations; loads and unloads take the manager's own lock.
type Host struct {
	mu          sync.Mutex
	manager     *loader.Manager
	serialName  string
	libraryPath string
	active      *loader.Handle
	initialized bool
}

// Option configures a Host at initialization.
type Option func(*Host)

// WithSerial selects the serial back-end for named-argument calls and
// inspection output. Default "json".
func WithSerial(name string) Option {
	return func(h *Host) { h.serialName = name }
}

// WithLibraryPath sets the compile-time default adapter library path; the
// LOADER_LIBRARY_PATH environment variable still wins.
func WithLibraryPath(path string) Option {
	return func(h *Host) { h.libraryPath = path }
}

// Initialize starts the host: the serial back-end, the plugin manager and
// the host adapter. Idempotent.
func (h *Host) Initialize(opts ...Option) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initialized {
		return nil
	}

	for _, opt := range opts {
		opt(h)
	}
	if h.serialName == "" {
		h.serialName = jsonserial.Name
	}
	jsonserial.Register()

	manager, err := loader.NewManager(h.libraryPath)
	if err != nil {
		return fmt.Errorf("initialize host: %w", err)
	}
	h.manager = manager
	h.initialized = true
	return nil
}

// Destroy tears the host down in strict reverse initialization order.
// Idempotent.
func (h *Host) Destroy() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.initialized {
		return
	}
	h.manager.Destroy()
	h.manager = nil
	h.active = nil
	h.initialized = false
}

// Manager exposes the loader manager for advanced integrations.
func (h *Host) Manager() *loader.Manager { return h.manager }

func (h *Host) ensure() error {
	if !h.initialized {
		return fmt.Errorf("host not initialized")
	}
	return nil
}

// LoadFromFile loads source files through the adapter named by tag.
func (h *Host) LoadFromFile(tag string, paths ...string) (*loader.Handle, error) {
	if err := h.ensure(); err != nil {
		return nil, err
	}
	return h.manager.LoadFromFile(tag, paths)
}

// LoadFromMemory loads an in-memory buffer under a logical name.
func (h *Host) LoadFromMemory(tag, name string, buffer []byte) (*loader.Handle, error) {
	if err := h.ensure(); err != nil {
		return nil, err
	}
	return h.manager.LoadFromMemory(tag, name, buffer)
}

// LoadFromPackage loads a packaged artifact.
func (h *Host) LoadFromPackage(tag, path string) (*loader.Handle, error) {
	if err := h.ensure(); err != nil {
		return nil, err
	}
	return h.manager.LoadFromPackage(tag, path)
}

// LoadFromConfiguration loads a manifest document, children first.
func (h *Host) LoadFromConfiguration(path string) (*loader.Handle, error) {
	if err := h.ensure(); err != nil {
		return nil, err
	}
	return h.manager.LoadFromConfiguration(path)
}

// Clear releases a handle; finalization defers while its values are
// externally retained.
func (h *Host) Clear(handle *loader.Handle) error {
	if err := h.ensure(); err != nil {
		return err
	}
	return h.manager.Clear(handle)
}

// Register exposes a native callback as a first-class function.
func (h *Host) Register(name string, callback loader.HostCallback, ret value.Kind, params ...value.Kind) error {
	return h.RegisterWithData(name, callback, nil, ret, params...)
}

// RegisterWithData registers a callback with an opaque data pointer handed
// back on every invocation.
func (h *Host) RegisterWithData(name string, callback loader.HostCallback, data any, ret value.Kind, params ...value.Kind) error {
	if err := h.ensure(); err != nil {
		return err
	}
	return h.manager.RegisterFunction(name, callback, ret, params, data)
}

// Function resolves a function descriptor by name, nil when absent.
func (h *Host) Function(name string) *reflection.Function {
	if h.manager == nil {
		return nil
	}
	if h.active != nil {
		if v := h.active.Get(name); v != nil && v.Kind() == value.Function {
			fn, _ := v.FunctionValue().(*reflection.Function)
			return fn
		}
	}
	return h.manager.Function(name)
}

// Class resolves a class descriptor by name, nil when absent.
func (h *Host) Class(name string) *reflection.Class {
	if h.manager == nil {
		return nil
	}
	return h.manager.Class(name)
}

// ClassNew constructs an instance of the named class and wraps it in a
// value the caller owns.
func (h *Host) ClassNew(className, instanceName string, args ...*value.Value) (*value.Value, error) {
	cls := h.Class(className)
	if cls == nil {
		return nil, fmt.Errorf("class %q: %w", className, reflection.ErrNotFound)
	}
	obj, err := cls.New(instanceName, args)
	if err != nil {
		return nil, err
	}
	wrapped := value.NewObject(obj)
	obj.Release()
	return wrapped, nil
}

// EnableWatch turns on script hot-reload for handles loaded afterwards.
func (h *Host) EnableWatch() error {
	if err := h.ensure(); err != nil {
		return err
	}
	return h.manager.EnableWatch()
}

// std is the process-default host the package-level functions delegate to,
// mirroring the embedding-friendly C surface.
var std = &Host{}

// Initialize starts the default host and binds the fork-safety layer to
// it.
func Initialize(opts ...Option) error {
	if err := std.Initialize(opts...); err != nil {
		return err
	}
	forksafe.Bind(
		func() error { std.Destroy(); return nil },
		func() error { return std.Initialize() },
	)
	return nil
}

// Destroy tears down the default host.
func Destroy() { std.Destroy() }

// Default returns the default host.
func Default() *Host { return std }

// LoadFromFile loads files into the default host.
func LoadFromFile(tag string, paths ...string) (*loader.Handle, error) {
	return std.LoadFromFile(tag, paths...)
}

// LoadFromMemory loads a buffer into the default host.
func LoadFromMemory(tag, name string, buffer []byte) (*loader.Handle, error) {
	return std.LoadFromMemory(tag, name, buffer)
}

// LoadFromPackage loads a package into the default host.
func LoadFromPackage(tag, path string) (*loader.Handle, error) {
	return std.LoadFromPackage(tag, path)
}

// LoadFromConfiguration loads a manifest into the default host.
func LoadFromConfiguration(path string) (*loader.Handle, error) {
	return std.LoadFromConfiguration(path)
}

// Register registers a native callback on the default host.
func Register(name string, callback loader.HostCallback, ret value.Kind, params ...value.Kind) error {
	return std.Register(name, callback, ret, params...)
}

// Function resolves a function on the default host.
func Function(name string) *reflection.Function { return std.Function(name) }

// Class resolves a class on the default host.
func Class(name string) *reflection.Class { return std.Class(name) }
