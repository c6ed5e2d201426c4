package suggest

import (
	"errors"
	"fmt"
)

// ErrFetchFailed marks a failed call to the places service.
var ErrFetchFailed = errors.New("places fetch failed")

// FetchError is an external fetch failure of one operation.
type FetchError struct {
	Op    string // "search", "details"
	Input string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Input, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailed, e.Err}
}
