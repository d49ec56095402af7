package stac

import (
	"errors"
	"fmt"
)

// ErrRateLimited marks a search refused because the catalog asked us to back off
var ErrRateLimited = errors.New("catalog is rate limiting requests")

// TransportError wraps every failure talking to the catalog: connection
// errors, timeouts, non-2xx responses and undecodable payloads
type TransportError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog request to %s failed with status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("catalog request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
