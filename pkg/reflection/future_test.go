package reflection

import (
	"sync"
	"testing"

	"github.com/omnicall/omnicall/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureResolveFiresOnce(t *testing.T) {
	t.Parallel()

	f := NewPendingFuture()
	var resolved, rejected int

	f.Await(func(v *value.Value, _ any) *value.Value {
		resolved++
		return v.Retain()
	}, func(v *value.Value, _ any) *value.Value {
		rejected++
		return nil
	}, nil)

	require.NoError(t, f.Resolve(value.NewLong(34)))
	assert.Equal(t, 1, resolved)
	assert.Zero(t, rejected)

	assert.ErrorIs(t, f.Resolve(value.NewLong(1)), ErrFutureSettled)
	assert.ErrorIs(t, f.Reject(value.NewNull()), ErrFutureSettled)
	assert.Equal(t, 1, resolved, "continuations never fire twice")
}

func TestFutureAwaitAfterSettledRunsSynchronously(t *testing.T) {
	t.Parallel()

	f := NewPendingFuture()
	require.NoError(t, f.Resolve(value.NewLong(34)))

	var got int64
	f.Await(func(v *value.Value, _ any) *value.Value {
		got = v.LongValue()
		return nil
	}, nil, nil)

	assert.Equal(t, int64(34), got)
}

func TestFutureChaining(t *testing.T) {
	t.Parallel()

	f := NewPendingFuture()
	chained := f.Await(func(v *value.Value, _ any) *value.Value {
		return value.NewLong(155)
	}, nil, nil)

	require.NoError(t, f.Resolve(value.NewLong(34)))

	assert.Equal(t, FutureResolved, chained.State())
	assert.Equal(t, int64(155), chained.Result().LongValue())
}

func TestFutureRejectPropagatesWithoutHandler(t *testing.T) {
	t.Parallel()

	f := NewPendingFuture()
	chained := f.Await(func(v *value.Value, _ any) *value.Value {
		t.Fatal("resolve must not run on rejection")
		return nil
	}, nil, nil)

	ex := value.NewException(value.NewThrow("Hi", "Error", 0))
	require.NoError(t, f.Reject(ex))

	assert.Equal(t, FutureRejected, chained.State())
	require.NotNil(t, chained.Result().Unwrap())
	assert.Equal(t, "Hi", chained.Result().Unwrap().Message)
}

func TestFutureConcurrentSettleExactlyOne(t *testing.T) {
	t.Parallel()

	f := NewPendingFuture()
	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.Resolve(value.NewLong(int64(i)))
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
}
