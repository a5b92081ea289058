// Package plugin maps plugin names to live interface implementations. A
// named Manager resolves its library search path once, then serves plugins
// either from the process-wide static registry (adapters compiled into the
// binary register a factory) or by opening a shared library whose mangled
// name and exported Singleton symbol follow the manager's convention.
package plugin

// Destructor runs when a plugin is cleared or its manager is destroyed.
type Destructor func(p *Plugin)

// Plugin is one registered plugin: its name, the interface implementation
// obtained from its singleton, an optional implementation blob attached by
// the manager's user, and the destructor.
type Plugin struct {
	name    string
	iface   any
	impl    any
	dynamic bool // loaded via plugin.Open rather than the static registry
	dtor    Destructor
}

// Name returns the plugin name.
func (p *Plugin) Name() string { return p.name }

// Interface returns the implementation obtained from the singleton.
func (p *Plugin) Interface() any { return p.iface }

// Impl returns the blob attached at creation.
func (p *Plugin) Impl() any { return p.impl }

// SetImpl replaces the attached blob.
func (p *Plugin) SetImpl(impl any) { p.impl = impl }

// Dynamic reports whether the plugin came from a shared library.
func (p *Plugin) Dynamic() bool { return p.dynamic }

func (p *Plugin) destroy() {
	if p.dtor != nil {
		p.dtor(p)
	}
	// Dynamically opened libraries stay mapped; Go offers no dlclose.
	p.iface = nil
	p.impl = nil
}
