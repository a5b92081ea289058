package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Manifest is one load manifest: which adapter, which scripts, which
// execution paths, and any nested child manifests. Child paths resolve
// relative to the manifest's own directory; every child loads before the
// parent's scripts discover.
type Manifest struct {
	// LanguageID is the adapter tag.
	LanguageID string

	// Paths are the script files to load as one unit.
	Paths []string

	// ExecutionPaths are extra search directories for the adapter.
	ExecutionPaths []string

	// Children maps child name to the child manifest's resolved path. As a
	// Go map it keeps no order: document key order is not preserved.
	Children map[string]string

	// Dir is the directory the manifest was read from; relative script
	// paths resolve against it.
	Dir string
}

// Reserved manifest keys; every other string-valued key naming a document
// with a recognized extension is treated as a child manifest reference.
const (
	keyLanguageID     = "language_id"
	keyPath           = "path"
	keyExecutionPaths = "execution_paths"
)

var manifestExts = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
	".toml": true,
}

// LoadManifest parses a manifest document (JSON, YAML or TOML by
// extension).
func LoadManifest(path string) (*Manifest, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read manifest %q: %w", path, err)
	}

	dir := filepath.Dir(path)
	m := &Manifest{
		LanguageID: v.GetString(keyLanguageID),
		Dir:        dir,
		Children:   make(map[string]string),
	}

	switch raw := v.Get(keyPath).(type) {
	case nil:
	case string:
		m.Paths = []string{raw}
	case []any:
		for _, entry := range raw {
			s, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("manifest %q: path entries must be strings, got %T", path, entry)
			}
			m.Paths = append(m.Paths, s)
		}
	default:
		return nil, fmt.Errorf("manifest %q: path must be a string or list, got %T", path, raw)
	}

	m.ExecutionPaths = v.GetStringSlice(keyExecutionPaths)

	for _, key := range v.AllKeys() {
		switch key {
		case keyLanguageID, keyPath, keyExecutionPaths:
			continue
		}
		child, ok := v.Get(key).(string)
		if !ok || !manifestExts[strings.ToLower(filepath.Ext(child))] {
			continue
		}
		resolved := child
		if !filepath.IsAbs(child) {
			resolved = filepath.Join(dir, child)
		}
		m.Children[key] = resolved
	}

	if m.LanguageID == "" && len(m.Children) == 0 {
		return nil, fmt.Errorf("manifest %q: language_id required when no child configurations are present", path)
	}
	if m.LanguageID != "" && len(m.Paths) == 0 {
		return nil, fmt.Errorf("manifest %q: path required when language_id is set", path)
	}

	return m, nil
}

// ResolvePaths returns the script paths resolved against the manifest
// directory.
func (m *Manifest) ResolvePaths() []string {
	out := make([]string, len(m.Paths))
	for i, p := range m.Paths {
		if filepath.IsAbs(p) {
			out[i] = p
			continue
		}
		out[i] = filepath.Join(m.Dir, p)
	}
	return out
}
