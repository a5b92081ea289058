//go:build linux

package logger

import "golang.org/x/sys/unix"

// Linux reads terminal attributes with TCGETS
const ioctlTermiosReq = unix.TCGETS
