//go:build linux || darwin

package plugin

import (
	"fmt"
	goplugin "plugin"
)

const libraryExt = ".so"

// openSingleton opens a shared library built with -buildmode=plugin and
// calls its exported Singleton symbol, which must be a func() any returning
// the plugin's interface implementation.
func openSingleton(path string) (any, error) {
	lib, err := goplugin.Open(path)
	if err != nil {
		return nil, err
	}
	sym, err := lib.Lookup("Singleton")
	if err != nil {
		return nil, err
	}
	singleton, ok := sym.(func() any)
	if !ok {
		return nil, fmt.Errorf("symbol Singleton in %q has type %T, want func() any", path, sym)
	}
	return singleton(), nil
}
