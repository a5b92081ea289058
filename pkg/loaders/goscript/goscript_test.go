package goscript_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnicall/omnicall/pkg/loader"
	"github.com/omnicall/omnicall/pkg/loaders/goscript"
	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

const multiplyScript = `package scripts

func Multiply(a, b int) int {
	return a * b
}

func Greet(name string) string {
	return "hello " + name
}
`

const failingScript = `package scripts

import "errors"

func Fail() (int, error) {
	return 0, errors.New("Hi")
}
`

func newManager(t *testing.T) *loader.Manager {
	t.Helper()
	goscript.Register()

	m, err := loader.NewManager("")
	require.NoError(t, err)
	t.Cleanup(m.Destroy)
	return m
}

func TestDiscoverExportedFunctions(t *testing.T) {
	m := newManager(t)

	h, err := m.LoadFromMemory(goscript.Tag, "multiply.go", []byte(multiplyScript))
	require.NoError(t, err)

	v := h.Get("Multiply")
	require.NotNil(t, v)
	require.Equal(t, value.Function, v.Kind())

	fn, _ := v.FunctionValue().(*reflection.Function)
	require.NotNil(t, fn)
	assert.Equal(t, 2, fn.Signature().Count())
	assert.Equal(t, value.Long, fn.Signature().Type(0).Kind())
	assert.Equal(t, value.Long, fn.Signature().Return().Kind())
}

func TestInvokeScriptFunction(t *testing.T) {
	m := newManager(t)

	_, err := m.LoadFromMemory(goscript.Tag, "multiply.go", []byte(multiplyScript))
	require.NoError(t, err)

	fn := m.Function("Multiply")
	require.NotNil(t, fn)

	args := []*value.Value{value.NewLong(5), value.NewLong(15)}
	out, err := fn.Invoke(args)
	require.NoError(t, err)
	assert.Equal(t, value.Long, out.Kind())
	assert.Equal(t, int64(75), out.LongValue())

	strOut, err := m.Function("Greet").Invoke([]*value.Value{value.NewString("world")})
	require.NoError(t, err)
	assert.Equal(t, "hello world", strOut.StringValue())
}

func TestScriptErrorBecomesThrowable(t *testing.T) {
	m := newManager(t)

	_, err := m.LoadFromMemory(goscript.Tag, "failing.go", []byte(failingScript))
	require.NoError(t, err)

	out, err := m.Function("Fail").Invoke(nil)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, out.IsError())
	require.NotNil(t, out.Unwrap())
	assert.Equal(t, "Hi", out.Unwrap().Message)
}

func TestAwaitScriptFunction(t *testing.T) {
	m := newManager(t)

	_, err := m.LoadFromMemory(goscript.Tag, "multiply.go", []byte(multiplyScript))
	require.NoError(t, err)

	done := make(chan int64, 1)
	args := []*value.Value{value.NewLong(6), value.NewLong(7)}
	_, err = m.Function("Multiply").Await(args, func(v *value.Value, _ any) *value.Value {
		done <- v.LongValue()
		return nil
	}, func(v *value.Value, _ any) *value.Value {
		done <- -1
		return nil
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(42), <-done)
}

func TestLoadInvalidSourceFails(t *testing.T) {
	m := newManager(t)

	_, err := m.LoadFromMemory(goscript.Tag, "broken.go", []byte("package scripts\nfunc {"))
	assert.Error(t, err)

	_, err = m.LoadFromMemory(goscript.Tag, "nopkg.go", []byte("func X() {}"))
	assert.Error(t, err)
}
