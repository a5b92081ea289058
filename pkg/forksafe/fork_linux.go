//go:build linux

package forksafe

import "golang.org/x/sys/unix"

// rawFork issues the fork system call directly. The Go runtime officially
// supports only fork+exec; a bare fork leaves just the calling thread in
// the child, which is exactly why the loader stack is rebuilt from scratch
// on both sides before anything else runs.
func rawFork() (int, error) {
	pid, _, errno := unix.Syscall(unix.SYS_FORK, 0, 0, 0)
	if errno != 0 {
		return 0, errno
	}
	return int(pid), nil
}
