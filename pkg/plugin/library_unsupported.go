//go:build !linux && !darwin

package plugin

import "fmt"

const libraryExt = ".dll"

// Dynamic plugin loading is unavailable on this platform; only the static
// registry serves plugins.
func openSingleton(path string) (any, error) {
	return nil, fmt.Errorf("dynamic plugin loading not supported on this platform (%s)", path)
}
