package contract

import "fmt"

// BackendError wraps any failure coming back from the storage backend.
// Callers decide whether it is fatal.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("storage backend: %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func NewBackendError(op string, err error) *BackendError {
	return &BackendError{Op: op, Err: err}
}
