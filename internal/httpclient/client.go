// Package httpclient builds the shared *http.Client used by every upstream
// feed client, following the timeout/context pattern of
// libs/marketdata/provider_ib_bridge.go.
package httpclient

import (
	"net/http"
	"time"
)

// DefaultTimeout is the per-call wall-clock timeout spec.md §5 requires
// ("every external call has a wall-clock timeout, default 30s").
const DefaultTimeout = 30 * time.Second

// New builds an *http.Client with the given timeout. A zero timeout falls
// back to DefaultTimeout.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
