package omnicall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnicall/omnicall/pkg/loaders/mock"
	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

func newTestHost(t *testing.T) *Host {
	t.Helper()
	mock.Register()

	h := &Host{}
	require.NoError(t, h.Initialize())
	t.Cleanup(h.Destroy)
	return h
}

func TestCallMockFunction(t *testing.T) {
	h := newTestHost(t)

	_, err := h.LoadFromMemory(mock.Tag, "scripts.mock", []byte("mock"))
	require.NoError(t, err)

	out, err := h.Call("two_doubles", 3.0, 4.0)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, value.Double, out.Kind())
	assert.Equal(t, 3.1416, out.DoubleValue())
	out.Destroy()
}

func TestCallCoercesAdjacentNumericKinds(t *testing.T) {
	h := newTestHost(t)

	var seen value.Kind
	err := h.Register("wants_long", func(args []*value.Value, _ any) (*value.Value, error) {
		seen = args[0].Kind()
		return value.NewLong(args[0].LongValue() * 5), nil
	}, value.Long, value.Long)
	require.NoError(t, err)

	// The caller supplies an int; the callee must see a long.
	out, err := h.Call("wants_long", int32(15))
	require.NoError(t, err)
	assert.Equal(t, value.Long, seen)
	assert.Equal(t, int64(75), out.LongValue())
	out.Destroy()
}

func TestStringParameterAcceptsAnyKind(t *testing.T) {
	h := newTestHost(t)

	err := h.Register("wants_string", func(args []*value.Value, _ any) (*value.Value, error) {
		return value.NewString(args[0].StringValue()), nil
	}, value.String, value.String)
	require.NoError(t, err)

	out, err := h.Call("wants_string", 75)
	require.NoError(t, err)
	assert.Equal(t, "75", out.StringValue())
	out.Destroy()
}

func TestArrayDoesNotImplicitlyConvert(t *testing.T) {
	h := newTestHost(t)

	err := h.Register("wants_array", func(args []*value.Value, _ any) (*value.Value, error) {
		return value.NewNull(), nil
	}, value.Null, value.Array)
	require.NoError(t, err)

	out, err := h.Call("wants_array", 42)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, value.Exception, out.Kind(), "array parameters reject non-array arguments")
	assert.Equal(t, "SignatureMismatch", out.Unwrap().Label)
	out.Destroy()
}

func TestCallUnknownSymbol(t *testing.T) {
	h := newTestHost(t)

	out, err := h.Call("no_such_function")
	assert.Nil(t, out)
	assert.ErrorIs(t, err, reflection.ErrNotFound)
}

func TestArityMismatchReturnsException(t *testing.T) {
	h := newTestHost(t)

	require.NoError(t, h.Register("unary", func(args []*value.Value, _ any) (*value.Value, error) {
		return value.NewNull(), nil
	}, value.Null, value.Long))

	out, err := h.Call("unary", 1, 2, 3)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, value.Exception, out.Kind())
	out.Destroy()
}

func TestCallTExplicitKinds(t *testing.T) {
	h := newTestHost(t)

	require.NoError(t, h.Register("typed_sum", func(args []*value.Value, _ any) (*value.Value, error) {
		return value.NewLong(args[0].LongValue() + args[1].LongValue()), nil
	}, value.Long, value.Long, value.Long))

	out, err := h.CallT("typed_sum", []value.Kind{value.Long, value.Long}, int32(5), 15.0)
	require.NoError(t, err)
	assert.Equal(t, int64(20), out.LongValue())
	out.Destroy()
}

func TestCallMVReordersNamedArguments(t *testing.T) {
	h := newTestHost(t)

	require.NoError(t, h.Register("divide", func(args []*value.Value, _ any) (*value.Value, error) {
		return value.NewLong(args[0].LongValue() / args[1].LongValue()), nil
	}, value.Long, value.Long, value.Long))

	// Keys arrive scrambled relative to the positional slots.
	keys := []*value.Value{value.NewString("arg1"), value.NewString("arg0")}
	vals := []*value.Value{value.NewLong(2), value.NewLong(10)}
	defer destroyAll(keys)
	defer destroyAll(vals)

	out, err := h.CallMV("divide", keys, vals)
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.LongValue())
	out.Destroy()
}

func TestCallMSDeserializesAndDispatches(t *testing.T) {
	h := newTestHost(t)

	require.NoError(t, h.Register("hello_sum", func(args []*value.Value, _ any) (*value.Value, error) {
		return value.NewLong(args[0].LongValue() + args[1].LongValue()), nil
	}, value.Long, value.Long, value.Long))

	out, err := h.CallMS("hello_sum", []byte(`{"a0":10,"arg0":10,"arg1":2}`))
	require.NoError(t, err)
	assert.Equal(t, int64(12), out.LongValue())
	out.Destroy()
}

func TestCallMSMissingParameterReturnsException(t *testing.T) {
	h := newTestHost(t)

	require.NoError(t, h.Register("needs_two", func(args []*value.Value, _ any) (*value.Value, error) {
		return value.NewNull(), nil
	}, value.Null, value.Long, value.Long))

	out, err := h.CallMS("needs_two", []byte(`{"arg0":1}`))
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, value.Exception, out.Kind())
	out.Destroy()
}

func TestNativeCallbackReenteringDispatcher(t *testing.T) {
	h := newTestHost(t)

	require.NoError(t, h.Register("sum_callback", func(args []*value.Value, _ any) (*value.Value, error) {
		return value.NewInt(args[0].IntValue() + args[1].IntValue()), nil
	}, value.Int, value.Int, value.Int))

	// A native callback that re-enters the dispatcher mid-call.
	require.NoError(t, h.Register("c_callback", func(_ []*value.Value, _ any) (*value.Value, error) {
		return h.Call("sum_callback", int32(3), int32(4))
	}, value.Int))

	out, err := h.Call("c_callback")
	require.NoError(t, err)
	assert.Equal(t, int32(7), out.IntValue())
	out.Destroy()
}

func TestCallHandleRestrictsLookup(t *testing.T) {
	h := newTestHost(t)

	handle, err := h.LoadFromMemory(mock.Tag, "restricted.mock", []byte("mock"))
	require.NoError(t, err)

	out, err := h.CallHandle(handle, "my_empty_func")
	require.NoError(t, err)
	assert.Equal(t, int32(1234), out.IntValue())
	out.Destroy()

	_, err = h.CallHandle(handle, "not_in_handle")
	assert.ErrorIs(t, err, reflection.ErrNotFound)
}

func TestAwaitResolves(t *testing.T) {
	h := newTestHost(t)

	_, err := h.LoadFromMemory(mock.Tag, "async.mock", []byte("mock"))
	require.NoError(t, err)

	var got int64
	args := []*value.Value{value.NewLong(10)}
	defer destroyAll(args)

	f, err := h.Await("my_await_func", args, func(v *value.Value, _ any) *value.Value {
		got = v.LongValue()
		return v.Retain()
	}, func(v *value.Value, _ any) *value.Value {
		t.Fatal("reject must not fire")
		return nil
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, reflection.FutureResolved, f.State())
	assert.Equal(t, int64(90000), got)
}

func TestAwaitFutureChains(t *testing.T) {
	h := newTestHost(t)

	_, err := h.LoadFromMemory(mock.Tag, "chain.mock", []byte("mock"))
	require.NoError(t, err)

	args := []*value.Value{value.NewLong(1)}
	defer destroyAll(args)

	first, err := h.Await("my_await_func", args, func(v *value.Value, _ any) *value.Value {
		return v.Retain()
	}, nil, nil)
	require.NoError(t, err)

	chained := h.AwaitFuture(first, func(v *value.Value, _ any) *value.Value {
		return value.NewLong(155)
	}, nil, nil)

	require.Equal(t, reflection.FutureResolved, chained.State())
	assert.Equal(t, int64(155), chained.Result().LongValue())
}

func TestAwaitRejectsOnGuestError(t *testing.T) {
	h := newTestHost(t)

	require.NoError(t, h.Register("throws", func([]*value.Value, any) (*value.Value, error) {
		return value.NewException(value.NewThrow("Hi", "Error", 0)), nil
	}, value.Exception))

	var rejected *value.Value
	resolved := false
	_, err := h.Await("throws", nil, func(v *value.Value, _ any) *value.Value {
		resolved = true
		return nil
	}, func(v *value.Value, _ any) *value.Value {
		rejected = v
		return nil
	}, nil)
	require.NoError(t, err)

	assert.False(t, resolved, "resolve must never fire on a guest throw")
	require.NotNil(t, rejected)
	require.NotNil(t, rejected.Unwrap())
	assert.Equal(t, "Hi", rejected.Unwrap().Message)
}

func TestInspectListsLoadedSymbols(t *testing.T) {
	h := newTestHost(t)

	_, err := h.LoadFromMemory(mock.Tag, "inspect.mock", []byte("mock"))
	require.NoError(t, err)

	out, err := h.Inspect()
	require.NoError(t, err)
	assert.Contains(t, out, mock.Tag)
	assert.Contains(t, out, "two_doubles")
	assert.Contains(t, out, "my_empty_func")
}
