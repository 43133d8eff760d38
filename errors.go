package host

import "fmt"

// BackendUnavailableError aborts a turn when a required backend (memory,
// cache write path during persistence) cannot be reached. The turn fails as
// a unit; no partial writes are left behind.
type BackendUnavailableError struct {
	Backend string
	Err     error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("%s backend unavailable: %v", e.Backend, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }
