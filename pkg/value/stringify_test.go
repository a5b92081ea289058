package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringifyScalars(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "true", NewBool(true).String())
	assert.Equal(t, "A", NewChar('A').String())
	assert.Equal(t, "-32", NewShort(-32).String())
	assert.Equal(t, "75", NewLong(75).String())
	assert.Equal(t, "3.1416", NewDouble(3.1416).String())
	assert.Equal(t, "hello", NewString("hello").String())
	assert.Equal(t, "(null)", NewNull().String())
}

func TestStringifyComposites(t *testing.T) {
	t.Parallel()

	arr := NewArray(NewInt(1), NewString("two"), NewBool(false))
	defer arr.Destroy()
	assert.Equal(t, "[1,two,false]", arr.String())

	m := NewMap(
		NewMapPair(NewString("a"), NewInt(10)),
		NewMapPair(NewString("b"), NewArray(NewInt(1), NewInt(2))),
	)
	defer m.Destroy()
	assert.Equal(t, "{a:10,b:[1,2]}", m.String())
}

func TestStringifyBufferHex(t *testing.T) {
	t.Parallel()

	buf := NewBuffer([]byte{0x00, 0xab, 0xff})
	defer buf.Destroy()
	assert.Equal(t, "00abff", buf.String())
}

func TestStringifyReportsRequiredLength(t *testing.T) {
	t.Parallel()

	v := NewString("abcdef")
	defer v.Destroy()

	need := v.Stringify(nil)
	assert.Equal(t, 6, need)

	dst := make([]byte, need)
	n := v.Stringify(dst)
	assert.Equal(t, need, n)
	assert.Equal(t, "abcdef", string(dst))
}

func TestEqualByKindAndContent(t *testing.T) {
	t.Parallel()

	assert.True(t, NewInt(5).Equal(NewInt(5)))
	assert.False(t, NewInt(5).Equal(NewLong(5)), "different kinds never compare equal")
	assert.True(t, NewArray(NewInt(1)).Equal(NewArray(NewInt(1))))
	assert.False(t, NewArray(NewInt(1)).Equal(NewArray(NewInt(2))))
	assert.True(t, NewNull().Equal(NewNull()))
}
