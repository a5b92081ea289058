package omnicall

import (
	"github.com/omnicall/omnicall/pkg/serial"
)

// Inspect renders every loaded scope — adapter tag to handles to function
// and class records with full signature metadata — through the configured
// serial back-end.
func (h *Host) Inspect() (string, error) {
	if err := h.ensure(); err != nil {
		return "", err
	}

	backend, err := serial.Get(h.serialName)
	if err != nil {
		return "", err
	}

	tree := h.manager.Metadata()
	defer tree.Destroy()

	data, err := backend.Serialize(tree)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Inspect renders the default host's scopes.
func Inspect() (string, error) { return std.Inspect() }
