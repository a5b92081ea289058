package omnicall

import (
	"github.com/omnicall/omnicall/pkg/forksafe"
)

// SetForkCallback registers the continuation invoked in the child process
// after a safe fork re-initializes the loader stack.
func SetForkCallback(cb forksafe.Callback, ctx any) {
	forksafe.SetCallback(cb, ctx)
}

// Fork tears the runtime down, forks, re-initializes both sides and runs
// the registered callback in the child. See pkg/forksafe for the exact
// sequence.
func Fork() (int, error) {
	return forksafe.Fork()
}
