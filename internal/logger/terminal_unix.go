//go:build linux || darwin

package logger

import "golang.org/x/sys/unix"

// isTerminal checks if the file descriptor is a terminal on Unix systems
func isTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), ioctlTermiosReq)
	return err == nil
}
