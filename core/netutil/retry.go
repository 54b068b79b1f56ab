package netutil

import (
	"errors"
	"net"
	"net/http"
	"syscall"
)

// ShouldRetry reports whether err looks like a transient transport failure:
// a timeout, a failed dial or a connection reset by the peer.
func ShouldRetry(err error) bool {
	var (
		netErr net.Error
		opErr  *net.OpError
	)
	switch {
	case err == nil:
		return false
	case errors.As(err, &netErr) && netErr.Timeout():
		return true
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return true
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED):
		return true
	}
	return false
}

// RetryableStatus reports whether an HTTP status signals a transient upstream condition.
func RetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
