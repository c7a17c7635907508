package core

import (
	"fmt"
	"net"
	"strconv"
)

// ListenFirstFree listens on host:port, moving to the next port while the
// current one is in use. Any other listen error is returned as is.
func ListenFirstFree(host string, port, attempts int) (net.Listener, int, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for p := port; p < port+attempts; p++ {
		l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(p)))
		if err == nil {
			return l, p, nil
		}
		if !IsAddrInUse(err) {
			return nil, 0, err
		}
		lastErr = err
	}
	return nil, 0, fmt.Errorf("no free port in %d-%d: %w", port, port+attempts-1, lastErr)
}
