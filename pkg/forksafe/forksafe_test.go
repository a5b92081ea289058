package forksafe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withFakeFork swaps the raw fork for a stub returning pid, restoring it
// when the test ends.
func withFakeFork(t *testing.T, pid int) {
	t.Helper()
	original := forkFn
	forkFn = func() (int, error) { return pid, nil }
	t.Cleanup(func() {
		forkFn = original
		SetCallback(nil, nil)
		Bind(nil, nil)
		mu.Lock()
		prepare = nil
		mu.Unlock()
	})
}

func TestForkSequenceInParent(t *testing.T) {
	withFakeFork(t, 4242)

	var events []string
	OnPrepare(func() { events = append(events, "prepare") })
	Bind(
		func() error { events = append(events, "destroy"); return nil },
		func() error { events = append(events, "init"); return nil },
	)
	SetCallback(func(pid int, ctx any) error {
		events = append(events, "callback")
		return nil
	}, nil)

	pid, err := Fork()
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)

	// Parent side: prepare, teardown, re-init; callback is child-only.
	assert.Equal(t, []string{"prepare", "destroy", "init"}, events)
}

func TestForkSequenceInChild(t *testing.T) {
	withFakeFork(t, 0)

	var calls int
	var gotCtx any
	SetCallback(func(pid int, ctx any) error {
		calls++
		gotCtx = ctx
		assert.NotZero(t, pid, "child callback receives its own pid")
		return nil
	}, "user-context")

	var initialized bool
	Bind(func() error { return nil }, func() error { initialized = true; return nil })

	pid, err := Fork()
	require.NoError(t, err)
	assert.Zero(t, pid)
	assert.Equal(t, 1, calls, "callback fires exactly once in the child")
	assert.Equal(t, "user-context", gotCtx)
	assert.True(t, initialized, "child re-initializes the loader stack")
}

func TestForkCallbackSurvivesTeardown(t *testing.T) {
	withFakeFork(t, 7)

	SetCallback(func(int, any) error { return nil }, nil)

	// Teardown wiping the registration must not lose the snapshot.
	Bind(func() error { SetCallback(nil, nil); return nil }, func() error { return nil })

	_, err := Fork()
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.NotNil(t, callback, "registration is re-armed after fork")
}
