package jsonserial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnicall/omnicall/pkg/serial"
	"github.com/omnicall/omnicall/pkg/value"
)

func TestRegisterBecomesDefault(t *testing.T) {
	Register()

	s, err := serial.Get("")
	require.NoError(t, err)
	assert.Equal(t, Name, s.Name())

	_, err = serial.Get("protobuf")
	assert.Error(t, err)
}

func TestSerializeValueTree(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	v := value.NewMap(
		value.NewMapPair(value.NewString("name"), value.NewString("multiply")),
		value.NewMapPair(value.NewString("async"), value.NewBool(false)),
		value.NewMapPair(value.NewString("args"), value.NewArray(value.NewLong(5), value.NewDouble(1.5))),
	)
	defer v.Destroy()

	data, err := b.Serialize(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"multiply","async":false,"args":[5,1.5]}`, string(data))
}

func TestSerializeKeepsMapOrder(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	v := value.NewMap(
		value.NewMapPair(value.NewString("zebra"), value.NewLong(1)),
		value.NewMapPair(value.NewString("alpha"), value.NewLong(2)),
	)
	defer v.Destroy()

	data, err := b.Serialize(v)
	require.NoError(t, err)
	assert.Equal(t, `{"zebra":1,"alpha":2}`, string(data))
}

func TestDeserializeNumbers(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	v, err := b.Deserialize([]byte(`{"a":10,"b":2.5,"c":"x","d":null,"e":[true,false]}`))
	require.NoError(t, err)
	defer v.Destroy()

	require.Equal(t, value.Map, v.Kind())
	assert.Equal(t, value.Long, v.MapGet("a").Kind())
	assert.Equal(t, int64(10), v.MapGet("a").LongValue())
	assert.Equal(t, value.Double, v.MapGet("b").Kind())
	assert.Equal(t, 2.5, v.MapGet("b").DoubleValue())
	assert.Equal(t, "x", v.MapGet("c").StringValue())
	assert.Equal(t, value.Null, v.MapGet("d").Kind())

	arr := v.MapGet("e").ArrayValue()
	require.Len(t, arr, 2)
	assert.True(t, arr[0].BoolValue())
}

func TestDeserializeInvalidDocument(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	_, err := b.Deserialize([]byte(`{"unterminated"`))
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	original := value.NewMap(
		value.NewMapPair(value.NewString("xs"), value.NewArray(value.NewLong(1), value.NewLong(2))),
		value.NewMapPair(value.NewString("label"), value.NewString("ok")),
	)
	defer original.Destroy()

	data, err := b.Serialize(original)
	require.NoError(t, err)

	parsed, err := b.Deserialize(data)
	require.NoError(t, err)
	defer parsed.Destroy()

	assert.Equal(t, int64(2), parsed.MapGet("xs").ArrayValue()[1].LongValue())
	assert.Equal(t, "ok", parsed.MapGet("label").StringValue())
}
