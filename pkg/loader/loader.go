// Package loader tracks language adapters and the compilation units they
// load. It owns adapter initialization order, the destroy map that keeps
// cross-referencing adapters from double-freeing each other, the handle and
// context model, and the synthetic host adapter exposing natively
// registered callbacks.
package loader

import (
	"github.com/omnicall/omnicall/pkg/reflection"
)

// Loader is the callback set every language adapter implements. Each
// adapter embeds one guest runtime: a scripting VM, a managed runtime, a
// WebAssembly engine. The manager drives the lifecycle: Initialize once on
// first load, Load* per compilation unit, Discover to populate the
// handle's context, Clear per handle, Destroy at most once at teardown.
//
// Every method may block; adapters serialize their runtime internally and
// must be safe against calls from the manager's goroutine at any point
// between Initialize and Destroy.
type Loader interface {
	// Initialize creates the runtime state. It runs lazily on the first
	// load operation naming the adapter's tag. A non-nil error fails that
	// load and leaves the adapter unregistered.
	Initialize(impl *Impl, options map[string]any) error

	// ExecutionPath appends a script search path understood by this
	// runtime.
	ExecutionPath(path string) error

	// LoadFromFile loads one or more source files as a single unit and
	// returns an adapter-owned handle.
	LoadFromFile(paths []string) (any, error)

	// LoadFromMemory loads an in-memory buffer under a logical name.
	LoadFromMemory(name string, buffer []byte) (any, error)

	// LoadFromPackage loads a prebuilt or packaged artifact.
	LoadFromPackage(path string) (any, error)

	// Clear releases an adapter handle. It must tolerate repeated calls
	// for the same handle.
	Clear(handle any) error

	// Discover populates ctx's scope with the functions and classes found
	// in the handle.
	Discover(handle any, ctx *reflection.Context) error

	// Destroy tears down the runtime. The manager guarantees at most one
	// call, in reverse initialization order across adapters.
	Destroy() error
}
