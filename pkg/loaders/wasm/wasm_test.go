package wasm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnicall/omnicall/pkg/loader"
	"github.com/omnicall/omnicall/pkg/loaders/wasm"
	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

// addModule is the binary encoding of:
//
//	(module
//	  (func (export "add") (param i32 i32) (result i32)
//	    local.get 0
//	    local.get 1
//	    i32.add))
var addModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic + version
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f, // type (i32,i32)->i32
	0x03, 0x02, 0x01, 0x00, // function section
	0x07, 0x07, 0x01, 0x03, 0x61, 0x64, 0x64, 0x00, 0x00, // export "add"
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b, // code
}

func newManager(t *testing.T) *loader.Manager {
	t.Helper()
	wasm.Register()

	m, err := loader.NewManager("")
	require.NoError(t, err)
	t.Cleanup(m.Destroy)
	return m
}

func TestDiscoverExports(t *testing.T) {
	m := newManager(t)

	h, err := m.LoadFromMemory(wasm.Tag, "add.wasm", addModule)
	require.NoError(t, err)

	v := h.Get("add")
	require.NotNil(t, v)
	require.Equal(t, value.Function, v.Kind())

	fn, _ := v.FunctionValue().(*reflection.Function)
	require.NotNil(t, fn)
	assert.Equal(t, 2, fn.Signature().Count())
	assert.Equal(t, value.Int, fn.Signature().Type(0).Kind())
	assert.Equal(t, value.Int, fn.Signature().Return().Kind())
}

func TestInvokeExport(t *testing.T) {
	m := newManager(t)

	_, err := m.LoadFromMemory(wasm.Tag, "add.wasm", addModule)
	require.NoError(t, err)

	fn := m.Function("add")
	require.NotNil(t, fn)

	out, err := fn.Invoke([]*value.Value{value.NewInt(3), value.NewInt(4)})
	require.NoError(t, err)
	assert.Equal(t, value.Int, out.Kind())
	assert.Equal(t, int32(7), out.IntValue())
}

func TestInvokeAcceptsWidenedLong(t *testing.T) {
	m := newManager(t)

	_, err := m.LoadFromMemory(wasm.Tag, "add.wasm", addModule)
	require.NoError(t, err)

	out, err := m.Function("add").Invoke([]*value.Value{value.NewLong(10), value.NewLong(2)})
	require.NoError(t, err)
	assert.Equal(t, int32(12), out.IntValue())
}

func TestAwaitExport(t *testing.T) {
	m := newManager(t)

	_, err := m.LoadFromMemory(wasm.Tag, "add.wasm", addModule)
	require.NoError(t, err)

	done := make(chan int32, 1)
	_, err = m.Function("add").Await(
		[]*value.Value{value.NewInt(20), value.NewInt(22)},
		func(v *value.Value, _ any) *value.Value {
			done <- v.IntValue()
			return nil
		},
		func(v *value.Value, _ any) *value.Value {
			done <- -1
			return nil
		}, nil)
	require.NoError(t, err)

	assert.Equal(t, int32(42), <-done)
}

func TestLoadInvalidBinaryFails(t *testing.T) {
	m := newManager(t)

	_, err := m.LoadFromMemory(wasm.Tag, "junk.wasm", []byte("not wasm"))
	assert.Error(t, err)
}
