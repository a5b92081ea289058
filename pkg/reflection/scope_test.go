package reflection

import (
	"testing"

	"github.com/omnicall/omnicall/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeDefineGetUndefine(t *testing.T) {
	t.Parallel()

	s := NewScope("test")
	require.NoError(t, s.Define("a", value.NewLong(1)))
	require.NoError(t, s.Define("b", value.NewLong(2)))

	assert.Equal(t, 2, s.Size())
	assert.Equal(t, int64(1), s.Get("a").LongValue())
	assert.Nil(t, s.Get("missing"))

	assert.ErrorIs(t, s.Define("a", value.NewLong(3)), ErrAlreadyDefined)

	v := s.Undefine("a")
	require.NotNil(t, v)
	v.Destroy()
	assert.Equal(t, []string{"b"}, s.Names())

	s.Destroy()
	assert.Zero(t, s.Size())
}

func TestContextMergeRollsBackOnCollision(t *testing.T) {
	t.Parallel()

	global := NewContext("global")
	require.NoError(t, global.Scope().Define("dup", value.NewLong(1)))

	incoming := NewContext("handle")
	require.NoError(t, incoming.Scope().Define("fresh", value.NewLong(2)))
	require.NoError(t, incoming.Scope().Define("dup", value.NewLong(3)))

	err := global.Merge(incoming)
	assert.ErrorIs(t, err, ErrAlreadyDefined)
	assert.Nil(t, global.Scope().Get("fresh"), "partial merge must roll back")
	assert.Equal(t, int64(1), global.Scope().Get("dup").LongValue())
}

func TestContextMergeAndRemove(t *testing.T) {
	t.Parallel()

	global := NewContext("global")
	incoming := NewContext("handle")
	require.NoError(t, incoming.Scope().Define("f", value.NewLong(7)))

	require.NoError(t, global.Merge(incoming))
	assert.Equal(t, int64(7), global.Scope().Get("f").LongValue())

	global.Remove(incoming)
	assert.Nil(t, global.Scope().Get("f"))
}
