package services

import "fmt"

// Identity is the authenticated caller. It is passed explicitly into every
// workflow operation; handlers build it from the verified token claims.
type Identity struct {
	UserID   string
	FullName string
	Email    string
}

func (id Identity) require() error {
	if id.UserID == "" {
		return fmt.Errorf("missing identity: %w", ErrUnauthorized)
	}
	return nil
}

func (id Identity) ref() *string {
	v := id.UserID
	return &v
}
