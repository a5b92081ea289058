package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/omnicall/omnicall/internal/logger"
)

// Manager owns a named family of plugins and the search path their shared
// libraries are resolved against.
type Manager struct {
	mu          sync.RWMutex
	name        string
	libraryPath string
	plugins     map[string]*Plugin
	order       []string
	impl        any
}

// NewManager creates a manager and resolves its library search path. The
// order of precedence is:
//  1. The environment variable, when set.
//  2. The directory containing the host executable.
//  3. The compile-time default path.
func NewManager(name, envVar, defaultPath string, impl any) (*Manager, error) {
	if name == "" {
		return nil, fmt.Errorf("plugin manager requires a name")
	}

	var libraryPath string
	if envVar != "" {
		libraryPath = os.Getenv(envVar)
	}
	if libraryPath == "" {
		if exe, err := os.Executable(); err == nil {
			libraryPath = filepath.Dir(exe)
		}
	}
	if libraryPath == "" {
		libraryPath = defaultPath
	}

	return &Manager{
		name:        name,
		libraryPath: libraryPath,
		plugins:     make(map[string]*Plugin),
		impl:        impl,
	}, nil
}

// Name returns the manager name.
func (m *Manager) Name() string { return m.name }

// LibraryPath returns the resolved search directory.
func (m *Manager) LibraryPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.libraryPath
}

// Impl returns the blob attached at creation.
func (m *Manager) Impl() any { return m.impl }

// libraryFile mangles a plugin name into its shared library file name:
// <name>_<manager>[d].so, with the debug suffix appended in debug builds.
func (m *Manager) libraryFile(name string) string {
	return filepath.Join(m.libraryPath, fmt.Sprintf("%s_%s%s%s", name, m.name, debugSuffix, libraryExt))
}

// Create resolves the named plugin's singleton and registers it. The
// static registry wins; otherwise the mangled shared library is opened and
// its Singleton symbol called once with no arguments.
func (m *Manager) Create(name string, impl any, dtor Destructor) (*Plugin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.plugins[name]; exists {
		return nil, fmt.Errorf("plugin %q already registered in manager %q", name, m.name)
	}

	var (
		iface   any
		dynamic bool
	)
	if factory, ok := lookupFactory(m.name, name); ok {
		iface = factory()
	} else {
		loaded, err := openSingleton(m.libraryFile(name))
		if err != nil {
			return nil, fmt.Errorf("plugin %q not registered and not loadable from %q: %w", name, m.libraryPath, err)
		}
		iface = loaded
		dynamic = true
	}
	if iface == nil {
		return nil, fmt.Errorf("plugin %q singleton returned nil", name)
	}

	p := &Plugin{name: name, iface: iface, impl: impl, dynamic: dynamic, dtor: dtor}
	m.plugins[name] = p
	m.order = append(m.order, name)

	logger.Debug("plugin registered", logger.KeyTag, name, "manager", m.name, "dynamic", dynamic)
	return p, nil
}

// Get returns a registered plugin, nil when absent.
func (m *Manager) Get(name string) *Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.plugins[name]
}

// Iterate walks plugins in registration order until fn returns false.
func (m *Manager) Iterate(fn func(p *Plugin) bool) {
	m.mu.RLock()
	names := make([]string, len(m.order))
	copy(names, m.order)
	m.mu.RUnlock()

	for _, name := range names {
		p := m.Get(name)
		if p == nil {
			continue
		}
		if !fn(p) {
			return
		}
	}
}

// Clear unregisters and tears down a single plugin.
func (m *Manager) Clear(p *Plugin) error {
	if p == nil {
		return fmt.Errorf("cannot clear nil plugin")
	}

	m.mu.Lock()
	registered, exists := m.plugins[p.name]
	if !exists || registered != p {
		m.mu.Unlock()
		return fmt.Errorf("plugin %q not registered in manager %q", p.name, m.name)
	}
	delete(m.plugins, p.name)
	for i, n := range m.order {
		if n == p.name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	p.destroy()
	return nil
}

// Destroy tears down every plugin in reverse registration order.
func (m *Manager) Destroy() {
	m.mu.Lock()
	order := m.order
	plugins := m.plugins
	m.order = nil
	m.plugins = make(map[string]*Plugin)
	m.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		if p := plugins[order[i]]; p != nil {
			p.destroy()
		}
	}
}
