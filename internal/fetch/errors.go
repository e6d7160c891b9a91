package fetch

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the upstream answers 404.
var ErrNotFound = errors.New("upstream resource not found")

// ErrBodyTooLarge is wrapped in a FetchError when a body exceeds MaxBodySize.
var ErrBodyTooLarge = errors.New("response body too large")

// FetchError describes a transport failure or an unexpected HTTP status.
type FetchError struct {
	URL        string
	StatusCode int // zero for transport failures
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status code %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
