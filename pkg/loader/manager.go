package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/omnicall/omnicall/internal/logger"
	prommetrics "github.com/omnicall/omnicall/pkg/metrics/prometheus"
	"github.com/omnicall/omnicall/pkg/plugin"
	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

const (
	// ManagerName names the plugin manager family adapters register under.
	ManagerName = "loader"

	// LibraryPathEnv overrides the adapter library search directory.
	LibraryPathEnv = "LOADER_LIBRARY_PATH"

	// ScriptPathEnv lists script search directories, separated by the
	// platform path delimiter.
	ScriptPathEnv = "LOADER_SCRIPT_PATH"
)

// Manager sits atop the plugin manager and owns every adapter record, the
// initialization-order stack and the destroy map. The scopes it aggregates
// are mutated only during load/unload; dispatch-time readers take the read
// lock.
type Manager struct {
	mu        sync.RWMutex
	plugins   *plugin.Manager
	impls     map[string]*Impl
	initOrder []string
	destroyed map[*Impl]struct{}
	handles   map[string]*Handle
	host      *Impl
	watcher   *Watcher
}

// NewManager creates a manager with the host adapter already initialized.
// The host is always first on the initialization-order stack, so it is
// destroyed last.
func NewManager(defaultLibraryPath string) (*Manager, error) {
	plugins, err := plugin.NewManager(ManagerName, LibraryPathEnv, defaultLibraryPath, nil)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		plugins:   plugins,
		impls:     make(map[string]*Impl),
		destroyed: make(map[*Impl]struct{}),
		handles:   make(map[string]*Handle),
	}

	host, err := m.initializeHost()
	if err != nil {
		plugins.Destroy()
		return nil, err
	}
	m.host = host

	return m, nil
}

// Host returns the host adapter record.
func (m *Manager) Host() *Impl { return m.host }

// Plugins exposes the underlying plugin manager.
func (m *Manager) Plugins() *plugin.Manager { return m.plugins }

// Impl returns the adapter record for tag, creating and initializing the
// adapter on first use. Initialization is lazy: the first load operation
// for a tag pays the runtime bootstrap cost.
func (m *Manager) Impl(tag string) (*Impl, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.implLocked(tag)
}

func (m *Manager) implLocked(tag string) (*Impl, error) {
	if im, exists := m.impls[tag]; exists {
		return im, nil
	}

	p := m.plugins.Get(tag)
	if p == nil {
		created, err := m.plugins.Create(tag, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("adapter %q: %w", tag, err)
		}
		p = created
	}

	l, ok := p.Interface().(Loader)
	if !ok {
		return nil, fmt.Errorf("adapter %q singleton has type %T, want loader.Loader", tag, p.Interface())
	}

	im := newImpl(tag, l)
	if err := l.Initialize(im, nil); err != nil {
		_ = m.plugins.Clear(p)
		return nil, fmt.Errorf("adapter %q initialization: %w", tag, err)
	}
	im.initialized = true
	p.SetImpl(im)

	m.impls[tag] = im
	m.initOrder = append(m.initOrder, tag)
	prommetrics.Loader().AdapterInitialized(1)
	logger.Info("adapter initialized", logger.KeyTag, tag)
	return im, nil
}

// ExecutionPath appends a script search path for the adapter, initializing
// it if needed.
func (m *Manager) ExecutionPath(tag, path string) error {
	im, err := m.Impl(tag)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	im.execPaths = append(im.execPaths, path)
	return im.loader.ExecutionPath(path)
}

// LoadFromFile loads one or more source files through the adapter for tag
// and discovers their symbols.
func (m *Manager) LoadFromFile(tag string, paths []string) (*Handle, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("load from file requires at least one path")
	}

	im, err := m.Impl(tag)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	resolved := make([]string, len(paths))
	for i, p := range paths {
		resolved[i] = m.resolveScriptPath(im, p)
	}

	inner, err := im.loader.LoadFromFile(resolved)
	if err != nil {
		prommetrics.Loader().RecordLoadError(tag)
		return nil, fmt.Errorf("adapter %q load %v: %w", tag, paths, err)
	}

	return m.registerHandle(im, resolved[0], inner, resolved)
}

// LoadFromMemory loads an in-memory source under a logical name.
func (m *Manager) LoadFromMemory(tag, name string, buffer []byte) (*Handle, error) {
	im, err := m.Impl(tag)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	inner, err := im.loader.LoadFromMemory(name, buffer)
	if err != nil {
		prommetrics.Loader().RecordLoadError(tag)
		return nil, fmt.Errorf("adapter %q load buffer %q: %w", tag, name, err)
	}

	return m.registerHandle(im, name, inner, nil)
}

// LoadFromPackage loads a packaged artifact.
func (m *Manager) LoadFromPackage(tag, path string) (*Handle, error) {
	im, err := m.Impl(tag)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	resolved := m.resolveScriptPath(im, path)
	inner, err := im.loader.LoadFromPackage(resolved)
	if err != nil {
		return nil, fmt.Errorf("adapter %q load package %q: %w", tag, path, err)
	}

	return m.registerHandle(im, resolved, inner, []string{resolved})
}

// registerHandle runs discover, checks cross-adapter collisions, merges
// the handle context into the adapter's aggregate context and records the
// handle. Called with the manager lock held.
func (m *Manager) registerHandle(im *Impl, name string, inner any, paths []string) (*Handle, error) {
	h := newHandle(name, im, inner, paths)

	if err := im.loader.Discover(inner, h.ctx); err != nil {
		_ = im.loader.Clear(inner)
		return nil, fmt.Errorf("adapter %q discover %q: %w", im.tag, name, err)
	}

	if err := m.checkCollisions(im, h.ctx); err != nil {
		h.ctx.Destroy()
		_ = im.loader.Clear(inner)
		return nil, err
	}

	if err := im.ctx.Merge(h.ctx); err != nil {
		h.ctx.Destroy()
		_ = im.loader.Clear(inner)
		return nil, fmt.Errorf("adapter %q merge %q: %w", im.tag, name, err)
	}

	im.addHandle(h)
	m.handles[h.id] = h
	prommetrics.Loader().HandleLoaded(im.tag, 1)

	if m.watcher != nil {
		m.watcher.watch(h)
	}

	logger.Info("handle loaded",
		logger.KeyTag, im.tag,
		logger.KeyHandle, h.id,
		logger.KeyPath, name,
		"symbols", h.ctx.Scope().Size())
	return h, nil
}

// checkCollisions rejects symbols already defined by any other adapter.
// Shadowing across adapters is a load-time failure, not a silent override.
func (m *Manager) checkCollisions(im *Impl, ctx *reflection.Context) error {
	var collision error
	ctx.Scope().Range(func(name string, _ *value.Value) bool {
		for tag, other := range m.impls {
			if other == im {
				continue
			}
			if other.ctx.Scope().Get(name) != nil {
				collision = fmt.Errorf("symbol %q already defined by adapter %q: %w", name, tag, reflection.ErrAlreadyDefined)
				return false
			}
		}
		return true
	})
	return collision
}

// Clear releases a handle. It may be called repeatedly; adapter
// finalization is deferred while values originating from the handle are
// still referenced externally.
func (m *Manager) Clear(h *Handle) error {
	if h == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearLocked(h)
}

func (m *Manager) clearLocked(h *Handle) error {
	if h.cleared {
		return nil
	}
	if h.retained() {
		logger.Debug("handle clear deferred, values still referenced",
			logger.KeyTag, h.impl.tag, logger.KeyHandle, h.id)
		return nil
	}

	for _, child := range h.children {
		if err := m.clearLocked(child); err != nil {
			return err
		}
	}

	if m.watcher != nil {
		m.watcher.unwatch(h)
	}

	h.impl.ctx.Remove(h.ctx)
	h.ctx.Destroy()
	h.impl.removeHandle(h)
	delete(m.handles, h.id)
	h.cleared = true
	prommetrics.Loader().HandleLoaded(h.impl.tag, -1)

	if err := h.impl.loader.Clear(h.inner); err != nil {
		return fmt.Errorf("adapter %q clear %q: %w", h.impl.tag, h.name, err)
	}
	return nil
}

// Handle returns a live handle by id, nil when absent.
func (m *Manager) Handle(id string) *Handle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handles[id]
}

// Resolve looks a symbol up across every adapter's aggregate context, in
// initialization order. The returned value stays owned by its scope.
func (m *Manager) Resolve(name string) *value.Value {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, tag := range m.initOrder {
		im := m.impls[tag]
		if im == nil {
			continue
		}
		if v := im.ctx.Scope().Get(name); v != nil {
			return v
		}
	}
	return nil
}

// Function resolves a symbol and narrows it to a function descriptor, nil
// when absent or not a function.
func (m *Manager) Function(name string) *reflection.Function {
	v := m.Resolve(name)
	if v == nil || v.Kind() != value.Function {
		return nil
	}
	fn, _ := v.FunctionValue().(*reflection.Function)
	return fn
}

// Class resolves a symbol and narrows it to a class descriptor.
func (m *Manager) Class(name string) *reflection.Class {
	v := m.Resolve(name)
	if v == nil || v.Kind() != value.Class {
		return nil
	}
	cls, _ := v.ClassValue().(*reflection.Class)
	return cls
}

// TypeByName resolves a named type for the adapter, falling back to the
// host's builtin types.
func (m *Manager) TypeByName(tag, name string) *reflection.Type {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if im := m.impls[tag]; im != nil {
		if t := im.Type(name); t != nil {
			return t
		}
	}
	return m.host.Type(name)
}

// Metadata renders every adapter's handles as one pure-data tree keyed by
// adapter tag, the shape the inspection surface serializes.
func (m *Manager) Metadata() *value.Value {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pairs := make([]*value.Value, 0, len(m.initOrder))
	for _, tag := range m.initOrder {
		im := m.impls[tag]
		if im == nil {
			continue
		}
		pairs = append(pairs, value.NewMapPair(value.NewString(tag), im.Metadata()))
	}
	return value.NewMap(pairs...)
}

// unloadChildren clears every handle the adapter loaded, including
// transitive children. Called with the lock held during teardown.
func (m *Manager) unloadChildren(im *Impl) {
	// Teardown ignores external retention: the process is going away.
	for _, h := range im.Handles() {
		if err := m.forceClear(h); err != nil {
			logger.Error("handle clear failed during teardown",
				logger.KeyTag, im.tag, logger.KeyHandle, h.id, logger.KeyError, err.Error())
		}
	}
}

func (m *Manager) forceClear(h *Handle) error {
	if h.cleared {
		return nil
	}
	for _, child := range h.children {
		_ = m.forceClear(child)
	}
	if m.watcher != nil {
		m.watcher.unwatch(h)
	}
	h.impl.ctx.Remove(h.ctx)
	h.ctx.Destroy()
	h.impl.removeHandle(h)
	delete(m.handles, h.id)
	h.cleared = true
	prommetrics.Loader().HandleLoaded(h.impl.tag, -1)
	return h.impl.loader.Clear(h.inner)
}

// destroyImpl tears one adapter down, guarded by the destroy map so
// cross-references between adapters cannot double-destroy.
func (m *Manager) destroyImpl(im *Impl) {
	if _, done := m.destroyed[im]; done {
		return
	}
	m.destroyed[im] = struct{}{}

	m.unloadChildren(im)
	im.ctx.Destroy()
	for _, t := range im.types {
		t.Destroy()
	}

	if err := im.loader.Destroy(); err != nil {
		logger.Error("adapter destroy failed", logger.KeyTag, im.tag, logger.KeyError, err.Error())
	}
	prommetrics.Loader().AdapterInitialized(-1)
	logger.Info("adapter destroyed", logger.KeyTag, im.tag)
}

// Destroy tears down every adapter in strict reverse initialization order,
// then the plugin manager. Idempotent.
func (m *Manager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watcher != nil {
		m.watcher.close()
		m.watcher = nil
	}

	for i := len(m.initOrder) - 1; i >= 0; i-- {
		if im := m.impls[m.initOrder[i]]; im != nil {
			m.destroyImpl(im)
		}
	}
	m.initOrder = nil
	m.impls = make(map[string]*Impl)
	m.handles = make(map[string]*Handle)

	m.plugins.Destroy()
}

// resolveScriptPath resolves a relative script path against the adapter's
// execution paths and the LOADER_SCRIPT_PATH entries. Absolute or directly
// reachable paths pass through unchanged.
func (m *Manager) resolveScriptPath(im *Impl, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}

	candidates := im.execPaths
	if env := os.Getenv(ScriptPathEnv); env != "" {
		candidates = append(candidates, filepath.SplitList(env)...)
	}
	for _, dir := range candidates {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return path
}
