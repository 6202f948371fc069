package services

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is by the HTTP layer.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrCapacity          = errors.New("capacity exceeded")
	ErrNotFound          = errors.New("not found")
	ErrAmbiguousLookup   = errors.New("ambiguous lookup")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("invalid credentials")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError reports a status change the entity's current state
// does not allow, including a compare-and-set that lost a race.
type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("%s %s cannot be changed while %s", e.Entity, e.ID, e.From)
	}
	return fmt.Sprintf("%s %s cannot move from %s to %s", e.Entity, e.ID, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

type CapacityError struct {
	ChallengeID string
	Round       int
	Limit       int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("challenge %s already has the maximum of %d round %d panels", e.ChallengeID, e.Limit, e.Round)
}

func (e *CapacityError) Is(target error) bool { return target == ErrCapacity }

type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type AmbiguousLookupError struct {
	Email   string
	Matches int
}

func (e *AmbiguousLookupError) Error() string {
	return fmt.Sprintf("%d users match %q", e.Matches, e.Email)
}

func (e *AmbiguousLookupError) Is(target error) bool { return target == ErrAmbiguousLookup }

type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return e.Reason }

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }
