// Package reflection holds the runtime descriptors every adapter produces
// during discover and the dispatcher consumes generically: types,
// signatures, functions, classes, objects, methods, attributes,
// constructors, futures, scopes and contexts.
package reflection

import "errors"

var (
	// ErrAlreadyDefined is returned when a symbol name is defined twice in
	// the same scope. Shadowing across adapters is not automatic.
	ErrAlreadyDefined = errors.New("symbol already defined")

	// ErrNotFound is returned when a symbol, attribute or method lookup
	// fails.
	ErrNotFound = errors.New("symbol not found")

	// ErrFutureSettled is returned when resolving or rejecting a future
	// that has already transitioned to a terminal state.
	ErrFutureSettled = errors.New("future already settled")

	// ErrNotAsync is returned when awaiting a method whose adapter did not
	// mark it asynchronous. Function awaits do not check the flag.
	ErrNotAsync = errors.New("function is not asynchronous")

	// ErrNoMatchingConstructor is returned when no registered constructor
	// matches the supplied argument kinds.
	ErrNoMatchingConstructor = errors.New("no matching constructor")

	// ErrSealed is returned when registering members on a class after
	// discover finished populating it.
	ErrSealed = errors.New("class is sealed")
)
