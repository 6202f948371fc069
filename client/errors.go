package client

import (
	"fmt"

	"iris-api/services"
)

// APIError is a structured error answered by the server. It matches the
// services sentinels with errors.Is, so callers can branch on the same
// taxonomy as the server side.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch e.Code {
	case "VALIDATION":
		return target == services.ErrValidation
	case "INVALID_TRANSITION":
		return target == services.ErrInvalidTransition
	case "CAPACITY":
		return target == services.ErrCapacity
	case "NOT_FOUND":
		return target == services.ErrNotFound
	case "AMBIGUOUS_LOOKUP":
		return target == services.ErrAmbiguousLookup
	case "FORBIDDEN":
		return target == services.ErrForbidden
	case "UNAUTHORIZED":
		return target == services.ErrUnauthorized
	}
	return false
}

// TransportError covers network failures and responses that are not a
// well-formed API answer (5xx, non-JSON bodies).
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: http %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
