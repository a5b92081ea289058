package reflection

import (
	"testing"

	"github.com/omnicall/omnicall/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubIface is a minimal function vtable for descriptor tests.
type stubIface struct {
	invoked   int
	destroyed int
}

func (s *stubIface) Create(_ *Function) error { return nil }

func (s *stubIface) Invoke(_ *Function, args []*value.Value) (*value.Value, error) {
	s.invoked++
	var sum int64
	for _, a := range args {
		sum += a.LongValue()
	}
	return value.NewLong(sum), nil
}

func (s *stubIface) Await(fn *Function, args []*value.Value, resolve ResolveCallback, reject RejectCallback, ctx any) (*Future, error) {
	f := NewPendingFuture()
	out, err := s.Invoke(fn, args)
	if err != nil {
		_ = f.Reject(value.FromError(err))
		return f.Await(resolve, reject, ctx), nil
	}
	_ = f.Resolve(out)
	return f.Await(resolve, reject, ctx), nil
}

func (s *stubIface) Destroy(_ *Function) { s.destroyed++ }

func newLongSignature(t *testing.T, names ...string) *Signature {
	t.Helper()
	longType, err := NewType(value.Long, "long", nil, nil)
	require.NoError(t, err)
	sig := NewSignature(len(names))
	for i, n := range names {
		sig.Set(i, n, longType)
	}
	sig.SetReturn(longType)
	return sig
}

func TestSignatureInvariant(t *testing.T) {
	t.Parallel()

	sig := newLongSignature(t, "a", "b", "c")
	assert.Equal(t, 3, sig.Count())
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, sig.Name(i))
		require.NotNil(t, sig.Type(i))
		assert.Equal(t, value.Long, sig.Type(i).Kind())
	}
	assert.Equal(t, 1, sig.Index("b"))
	assert.Equal(t, -1, sig.Index("missing"))
	assert.Equal(t, "(a long, b long, c long) -> long", sig.String())
}

func TestFunctionInvoke(t *testing.T) {
	t.Parallel()

	iface := &stubIface{}
	fn, err := NewFunction("sum", newLongSignature(t, "a", "b"), nil, iface)
	require.NoError(t, err)

	args := []*value.Value{value.NewLong(5), value.NewLong(15)}
	out, err := fn.Invoke(args)
	require.NoError(t, err)
	assert.Equal(t, int64(20), out.LongValue())
	assert.Equal(t, 1, iface.invoked)
}

func TestFunctionRefcountDestroyOnce(t *testing.T) {
	t.Parallel()

	iface := &stubIface{}
	fn, err := NewFunction("f", newLongSignature(t), nil, iface)
	require.NoError(t, err)

	wrapped := value.NewFunction(fn)
	require.Equal(t, int64(2), fn.Refs(), "wrapping retains the descriptor")

	wrapped.Destroy()
	assert.Equal(t, int64(1), fn.Refs())
	assert.Zero(t, iface.destroyed)

	fn.Release()
	assert.Equal(t, 1, iface.destroyed)
}

func TestFunctionMetadataIsPureData(t *testing.T) {
	t.Parallel()

	fn, err := NewFunction("multiply", newLongSignature(t, "a", "b"), nil, &stubIface{})
	require.NoError(t, err)

	meta := fn.Metadata()
	defer meta.Destroy()

	require.Equal(t, value.Map, meta.Kind())
	assert.Equal(t, "multiply", meta.MapGet("name").StringValue())
	assert.False(t, meta.MapGet("async").BoolValue())

	sig := meta.MapGet("signature")
	require.NotNil(t, sig)
	args := sig.MapGet("args").ArrayValue()
	require.Len(t, args, 2)
	assert.Equal(t, "a", args[0].MapGet("name").StringValue())
	assert.Equal(t, "long", args[0].MapGet("type").StringValue())
}
