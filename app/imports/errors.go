package imports

import (
	"errors"
	"fmt"
)

type Reason string

const (
	ReasonFetchFailed        Reason = "fetch_failed"
	ReasonStoreFailed        Reason = "store_failed"
	ReasonMalformedReference Reason = "malformed_reference"
)

// ImportError is a reference-level failure. It never escalates past the
// rewriter; the affected tag is simply left as authored.
type ImportError struct {
	Reason Reason
	URL    string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.URL)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// ErrAlreadyRunning is returned when a bulk import start is rejected because
// another run holds the lock.
var ErrAlreadyRunning = errors.New("bulk image import already running")
