// Package serial defines the polymorphic bridge between values and wire
// text. Named back-ends register themselves; the dispatcher's
// named-argument call surface and the inspection output both go through
// the configured back-end.
package serial

import (
	"fmt"
	"sync"

	"github.com/omnicall/omnicall/pkg/value"
)

// Serial is one serialization back-end.
type Serial interface {
	// Name identifies the back-end in configuration.
	Name() string

	// Serialize renders a value tree to bytes.
	Serialize(v *value.Value) ([]byte, error)

	// Deserialize parses bytes into a value tree the caller owns.
	Deserialize(data []byte) (*value.Value, error)
}

var (
	mu       sync.RWMutex
	backends = make(map[string]Serial)
	fallback string
)

// Register adds a back-end. The first registration becomes the default.
func Register(s Serial) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := backends[s.Name()]; !exists && fallback == "" {
		fallback = s.Name()
	}
	backends[s.Name()] = s
}

// Get returns a back-end by name; the empty name selects the default.
func Get(name string) (Serial, error) {
	mu.RLock()
	defer mu.RUnlock()
	if name == "" {
		name = fallback
	}
	s, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("serial back-end %q not registered", name)
	}
	return s, nil
}
