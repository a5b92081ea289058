package loader

import (
	"fmt"
	"path/filepath"

	"github.com/omnicall/omnicall/internal/logger"
	"github.com/omnicall/omnicall/pkg/config"
)

// LoadFromConfiguration loads a manifest document: every child manifest
// loads first, then the manifest's own scripts through its adapter. The
// returned handle owns the child handles; clearing it clears them too.
func (m *Manager) LoadFromConfiguration(path string) (*Handle, error) {
	return m.loadConfiguration(path, make(map[string]bool))
}

func (m *Manager) loadConfiguration(path string, visited map[string]bool) (*Handle, error) {
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	if visited[path] {
		return nil, fmt.Errorf("configuration %q references itself", path)
	}
	visited[path] = true

	manifest, err := config.LoadManifest(path)
	if err != nil {
		return nil, err
	}

	var children []*Handle
	for name, childPath := range manifest.Children {
		child, err := m.loadConfiguration(childPath, visited)
		if err != nil {
			for _, loaded := range children {
				_ = m.Clear(loaded)
			}
			return nil, fmt.Errorf("child configuration %q: %w", name, err)
		}
		children = append(children, child)
	}

	var h *Handle
	if manifest.LanguageID != "" {
		for _, ep := range manifest.ExecutionPaths {
			resolved := ep
			if !filepath.IsAbs(ep) {
				resolved = filepath.Join(manifest.Dir, ep)
			}
			if err := m.ExecutionPath(manifest.LanguageID, resolved); err != nil {
				return nil, err
			}
		}

		h, err = m.LoadFromFile(manifest.LanguageID, manifest.ResolvePaths())
		if err != nil {
			for _, loaded := range children {
				_ = m.Clear(loaded)
			}
			return nil, err
		}
	} else {
		// A grouping manifest with children only: a host-owned handle ties
		// their lifetimes together.
		m.mu.Lock()
		h = newHandle(path, m.host, nil, nil)
		m.host.addHandle(h)
		m.handles[h.id] = h
		m.mu.Unlock()
	}

	for _, child := range children {
		h.AddChild(child)
	}

	logger.Info("configuration loaded",
		logger.KeyPath, path,
		logger.KeyHandle, h.ID(),
		logger.KeyChildren, len(children))
	return h, nil
}
