// Package forksafe coordinates process forking with the loader stack.
// Embedded guest runtimes keep thread-local scheduler state that does not
// survive fork, so the sequence is: quiesce every live adapter, tear the
// whole loader stack down, perform the raw fork, re-initialize on both
// sides and finally invoke the user callback in the child.
//
// Go cannot interpose libc fork the way a native detour library can; the
// trampoline is therefore explicit: call Fork instead of forking directly.
package forksafe

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/omnicall/omnicall/internal/logger"
)

// Callback runs in the child after re-initialization, receiving the child
// pid and the opaque context registered with it.
type Callback func(pid int, ctx any) error

// ErrUnsupported is returned on every platform other than Linux.
var ErrUnsupported = errors.New("fork is not supported on this platform")

var (
	mu       sync.Mutex
	callback Callback
	cbCtx    any
	prepare  []func()
	destroy  func() error
	initFn   func() error

	// forkFn is the raw fork entry; tests swap it to simulate the child.
	forkFn = rawFork
)

// SetCallback registers the continuation invoked in the child. A nil
// callback clears the registration.
func SetCallback(cb Callback, ctx any) {
	mu.Lock()
	defer mu.Unlock()
	callback = cb
	cbCtx = ctx
}

// OnPrepare appends a quiesce hook that runs before teardown on every
// fork. Adapters with background threads register one.
func OnPrepare(hook func()) {
	mu.Lock()
	defer mu.Unlock()
	prepare = append(prepare, hook)
}

// Bind installs the loader stack's teardown and bootstrap entry points.
// The host facade calls this once during initialization.
func Bind(destroyStack, initializeStack func() error) {
	mu.Lock()
	defer mu.Unlock()
	destroy = destroyStack
	initFn = initializeStack
}

// Fork performs the safe fork sequence. In the parent it returns the child
// pid; in the child it returns zero after the callback has run.
func Fork() (int, error) {
	mu.Lock()
	// Snapshot the registration before teardown wipes any state.
	cb, ctx := callback, cbCtx
	hooks := append([]func(){}, prepare...)
	destroyStack, initializeStack := destroy, initFn
	mu.Unlock()

	for _, hook := range hooks {
		hook()
	}

	if destroyStack != nil {
		if err := destroyStack(); err != nil {
			logger.Error("loader stack teardown before fork failed", logger.KeyError, err.Error())
		}
	}

	pid, err := forkFn()
	if err != nil {
		if initializeStack != nil {
			_ = initializeStack()
		}
		return 0, fmt.Errorf("fork: %w", err)
	}

	if initializeStack != nil {
		if err := initializeStack(); err != nil {
			logger.Error("loader stack re-initialization after fork failed",
				logger.KeyPID, os.Getpid(), logger.KeyError, err.Error())
		}
	}

	// Re-arm the registration on both sides; a fork callback survives the
	// fork the same way the original system's snapshot does.
	SetCallback(cb, ctx)

	if pid == 0 && cb != nil {
		if err := cb(os.Getpid(), ctx); err != nil {
			logger.Error("fork callback failed", logger.KeyPID, os.Getpid(), logger.KeyError, err.Error())
		}
	}

	return pid, nil
}
