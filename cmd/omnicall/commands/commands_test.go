package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omnicall/omnicall/pkg/value"
)

func TestParseArg(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(42), parseArg("42"))
	assert.Equal(t, int64(-7), parseArg("-7"))
	assert.Equal(t, 3.5, parseArg("3.5"))
	assert.Equal(t, true, parseArg("true"))
	assert.Equal(t, "hello", parseArg("hello"))
	assert.Equal(t, "55x", parseArg("55x"))
	assert.Equal(t, "quoted", parseArg(`"quoted"`))
}

func TestRenderSignature(t *testing.T) {
	t.Parallel()

	sig := value.NewMap(
		value.NewMapPair(value.NewString("args"), value.NewArray(
			value.NewMap(
				value.NewMapPair(value.NewString("name"), value.NewString("a")),
				value.NewMapPair(value.NewString("type"), value.NewString("long")),
			),
			value.NewMap(
				value.NewMapPair(value.NewString("name"), value.NewString("b")),
				value.NewMapPair(value.NewString("type"), value.NewString("double")),
			),
		)),
		value.NewMapPair(value.NewString("ret"), value.NewString("double")),
	)
	defer sig.Destroy()

	assert.Equal(t, "(a long, b double) -> double", renderSignature(sig))
	assert.Equal(t, "()", renderSignature(nil))
}

func TestRootCommandWiring(t *testing.T) {
	t.Parallel()

	root := GetRootCmd()
	for _, name := range []string{"run", "call", "inspect", "repl", "config", "version"} {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "command %q must be registered", name)
	}
}
