package httpclient

import (
	"net/http"
	"time"
)

// New returns the shared outbound HTTP client. Both the upstream API client
// and the gateway script prober go through here so timeouts stay uniform.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
