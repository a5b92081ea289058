//go:build darwin

package logger

import "golang.org/x/sys/unix"

// macOS reads terminal attributes with TIOCGETA
const ioctlTermiosReq = unix.TIOCGETA
