// Package credentials persists the access token under a fixed
// service+account pair. Unlike network failures elsewhere, credential-store
// failures propagate to callers, tagged with which operation failed.
package credentials

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when no token is stored.
var ErrNotFound = errors.New("no stored credential")

// Error wraps a credential-store failure with the operation that caused it
// ("save", "load", or "delete").
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("credential store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Store persists one opaque secret value.
type Store interface {
	// Save stores the token, replacing any previous value. Saving an empty
	// token is an error.
	Save(token string) error

	// Load returns the stored token, or ErrNotFound.
	Load() (string, error)

	// Delete removes the stored token. Deleting a missing token is not an
	// error.
	Delete() error
}
