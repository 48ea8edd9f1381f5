package speclistparser

import (
	"errors"
	"fmt"
)

// ErrSourceNotFound is returned when the local speclist file does not exist
var ErrSourceNotFound = errors.New("speclist source file not found")

// FetchError reports a failed download, either a transport error or a non-2xx response
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to download %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to download %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
