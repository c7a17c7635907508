//go:build !windows

package core

import (
	"errors"
	"syscall"
)

// IsAddrInUse reports whether a listen error means the port is taken.
func IsAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}
