package omnicall

import (
	"fmt"

	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

// Signature accessors over resolved function descriptors, for callers that
// inspect before dispatching.

// FunctionSize returns the declared arity.
func FunctionSize(fn *reflection.Function) int {
	return fn.Signature().Count()
}

// FunctionParameterKind returns the kind of parameter i.
func FunctionParameterKind(fn *reflection.Function, i int) (value.Kind, error) {
	t := fn.Signature().Type(i)
	if t == nil {
		return value.Invalid, fmt.Errorf("function %q has no parameter %d", fn.Name(), i)
	}
	return t.Kind(), nil
}

// FunctionReturnKind returns the declared return kind, Invalid when
// undeclared.
func FunctionReturnKind(fn *reflection.Function) value.Kind {
	t := fn.Signature().Return()
	if t == nil {
		return value.Invalid
	}
	return t.Kind()
}

// FunctionIsAsync reports the adapter's async flag.
func FunctionIsAsync(fn *reflection.Function) bool {
	return fn.Async()
}
