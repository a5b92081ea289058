package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsAndAccessors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		v    *Value
		kind Kind
		get  func(*Value) any
		want any
	}{
		{"bool", NewBool(true), Bool, func(v *Value) any { return v.BoolValue() }, true},
		{"char", NewChar('A'), Char, func(v *Value) any { return v.CharValue() }, byte('A')},
		{"short", NewShort(-7), Short, func(v *Value) any { return v.ShortValue() }, int16(-7)},
		{"int", NewInt(42), Int, func(v *Value) any { return v.IntValue() }, int32(42)},
		{"long", NewLong(90000), Long, func(v *Value) any { return v.LongValue() }, int64(90000)},
		{"float", NewFloat(1.5), Float, func(v *Value) any { return v.FloatValue() }, float32(1.5)},
		{"double", NewDouble(3.1416), Double, func(v *Value) any { return v.DoubleValue() }, 3.1416},
		{"string", NewString("hello"), String, func(v *Value) any { return v.StringValue() }, "hello"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.kind, tc.v.Kind())
			assert.Equal(t, tc.want, tc.get(tc.v))
			assert.Equal(t, int64(1), tc.v.Refs())
		})
	}
}

func TestAccessorMismatchReturnsSentinel(t *testing.T) {
	v := NewString("not a number")

	assert.Equal(t, int32(0), v.IntValue())
	assert.Equal(t, int64(0), v.LongValue())
	assert.False(t, v.BoolValue())
	assert.Nil(t, v.ArrayValue())
	assert.Nil(t, v.BufferValue())
}

func TestDeepCopyIndependence(t *testing.T) {
	t.Parallel()

	inner := NewArray(NewInt(1), NewInt(2))
	original := NewArray(inner, NewString("x"))

	clone := original.Copy()
	require.Equal(t, Array, clone.Kind())
	require.True(t, original.Equal(clone))

	// Destroying the original must not touch the clone's payload.
	original.Destroy()

	elems := clone.ArrayValue()
	require.Len(t, elems, 2)
	assert.Equal(t, int32(1), elems[0].ArrayValue()[0].IntValue())
	assert.Equal(t, "x", elems[1].StringValue())

	clone.Destroy()
}

func TestBufferCopyDoesNotAlias(t *testing.T) {
	t.Parallel()

	original := NewBuffer([]byte{0xde, 0xad})
	clone := original.Copy()

	original.BufferValue()[0] = 0x00
	assert.Equal(t, byte(0xde), clone.BufferValue()[0])
}

func TestReferenceDoesNotOwnTarget(t *testing.T) {
	t.Parallel()

	target := NewLong(75)
	ref := target.Reference()

	require.True(t, ref.IsReference())
	assert.Same(t, target, ref.Dereference())

	// Destroying the reference leaves the target alive.
	ref.Destroy()
	assert.Equal(t, Long, target.Kind())
	assert.Equal(t, int64(75), target.LongValue())

	target.Destroy()
	assert.Equal(t, Invalid, target.Kind())
}

func TestRetainDestroyDiscipline(t *testing.T) {
	t.Parallel()

	v := NewString("shared")
	v.Retain()
	require.Equal(t, int64(2), v.Refs())

	v.Destroy()
	assert.Equal(t, String, v.Kind(), "payload must survive while references remain")

	v.Destroy()
	assert.Equal(t, Invalid, v.Kind())
}

func TestMapGet(t *testing.T) {
	t.Parallel()

	m := NewMap(
		NewMapPair(NewString("a"), NewInt(10)),
		NewMapPair(NewString("b"), NewInt(2)),
	)
	defer m.Destroy()

	require.NotNil(t, m.MapGet("a"))
	assert.Equal(t, int32(10), m.MapGet("a").IntValue())
	assert.Equal(t, int32(2), m.MapGet("b").IntValue())
	assert.Nil(t, m.MapGet("missing"))
}

func TestThrowableWrapsException(t *testing.T) {
	t.Parallel()

	ex := NewException(NewThrow("Hi", "Error", 0))
	th := NewThrowable(ex)

	require.True(t, th.IsError())
	require.NotNil(t, th.Unwrap())
	assert.Equal(t, "Hi", th.Unwrap().Message)

	th.Destroy()
}

func TestKindByNameRoundTrip(t *testing.T) {
	t.Parallel()

	for _, k := range Kinds() {
		assert.Equal(t, k, KindByName(k.String()))
	}
	assert.Equal(t, Invalid, KindByName("no-such-kind"))
}
