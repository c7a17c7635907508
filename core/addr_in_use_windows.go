//go:build windows

package core

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
)

// IsAddrInUse reports whether a listen error means the port is taken.
// Winsock reports WSAEADDRINUSE rather than the POSIX errno.
func IsAddrInUse(err error) bool {
	return errors.Is(err, windows.WSAEADDRINUSE) || errors.Is(err, syscall.EADDRINUSE)
}
