package crawl

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// errorCategory maps a transport error and HTTP status to the label
// recorded on the crawl error counter.
func errorCategory(err error, status int) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status >= http.StatusBadRequest:
		return "client_error"
	case err != nil:
		return "network"
	default:
		return "unknown"
	}
}
