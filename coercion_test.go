package omnicall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnicall/omnicall/pkg/value"
)

func TestCoerceSameKindPassesThrough(t *testing.T) {
	t.Parallel()

	v := value.NewLong(5)
	out, fresh, err := coerce(v, value.Long)
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Same(t, v, out)
}

func TestCoerceWideningIsLossless(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   *value.Value
		want value.Kind
		get  func(*value.Value) any
		out  any
	}{
		{"bool->char", value.NewBool(true), value.Char, func(v *value.Value) any { return v.CharValue() }, byte(1)},
		{"char->short", value.NewChar('A'), value.Short, func(v *value.Value) any { return v.ShortValue() }, int16(65)},
		{"short->int", value.NewShort(-7), value.Int, func(v *value.Value) any { return v.IntValue() }, int32(-7)},
		{"int->long", value.NewInt(42), value.Long, func(v *value.Value) any { return v.LongValue() }, int64(42)},
		{"long->double", value.NewLong(75), value.Double, func(v *value.Value) any { return v.DoubleValue() }, 75.0},
		{"float->double", value.NewFloat(1.5), value.Double, func(v *value.Value) any { return v.DoubleValue() }, 1.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out, fresh, err := coerce(tc.in, tc.want)
			require.NoError(t, err)
			assert.True(t, fresh)
			assert.Equal(t, tc.want, out.Kind())
			assert.Equal(t, tc.out, tc.get(out))
		})
	}
}

func TestCoerceNarrowingProceedsLossy(t *testing.T) {
	t.Parallel()

	// long -> int with overflow: proceeds, payload truncated.
	big := value.NewLong(1 << 40)
	out, fresh, err := coerce(big, value.Int)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, value.Int, out.Kind())

	// double -> long drops the fraction.
	frac := value.NewDouble(3.75)
	out2, _, err := coerce(frac, value.Long)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out2.LongValue())
}

func TestConvertNumericFlagsLoss(t *testing.T) {
	t.Parallel()

	_, lossy := convertNumeric(value.NewDouble(3.5), value.Long)
	assert.True(t, lossy)

	_, lossless := convertNumeric(value.NewInt(7), value.Long)
	assert.False(t, lossless)

	_, charLoss := convertNumeric(value.NewLong(500), value.Char)
	assert.True(t, charLoss)
}

func TestCoerceToStringStringifies(t *testing.T) {
	t.Parallel()

	out, fresh, err := coerce(value.NewDouble(3.1416), value.String)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, "3.1416", out.StringValue())
}

func TestCoerceRejectsNonAdjacent(t *testing.T) {
	t.Parallel()

	arr := value.NewArray(value.NewLong(1))
	defer arr.Destroy()

	_, _, err := coerce(arr, value.Long)
	assert.Error(t, err)

	_, _, err = coerce(value.NewLong(1), value.Map)
	assert.Error(t, err)
}

func TestPtrPassesThrough(t *testing.T) {
	t.Parallel()

	p := value.NewPtr("anything")
	out, fresh, err := coerce(p, value.Ptr)
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Same(t, p, out)
}

func TestFromAndToRoundTrip(t *testing.T) {
	t.Parallel()

	assert.Equal(t, value.Long, From(5).Kind())
	assert.Equal(t, value.Double, From(2.5).Kind())
	assert.Equal(t, value.String, From("s").Kind())
	assert.Equal(t, value.Bool, From(true).Kind())
	assert.Equal(t, value.Null, From(nil).Kind())
	assert.Equal(t, value.Buffer, From([]byte{1}).Kind())

	assert.Equal(t, int64(5), To(value.NewLong(5)))
	assert.Equal(t, "s", To(value.NewString("s")))
	assert.Equal(t, []any{int64(1), "x"}, To(value.NewArray(value.NewLong(1), value.NewString("x"))))
}
