package apperror

import "errors"

// Sentinel errors shared between the service layer and the HTTP error
// handler. Kept in their own package so both sides can depend on them
// without depending on each other.
var (
	ErrSessionNotFound           = errors.New("session not found")
	ErrSessionNotActive          = errors.New("session is not active")
	ErrSessionExpired            = errors.New("session has expired")
	ErrDuplicateCompletedSession = errors.New("a completed session already exists for this email")
)
