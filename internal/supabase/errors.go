package supabase

import (
	"errors"
	"fmt"
)

// ErrMissingIdentity indicates that a token exchange succeeded but the
// response never carried a subject identity.
var ErrMissingIdentity = errors.New("token exchange response did not include a user identity")

// AuthUnavailableError indicates that no usable primary credential could be
// obtained: configuration is missing or the interactive flow failed.
type AuthUnavailableError struct {
	Err error
}

func (e *AuthUnavailableError) Error() string {
	return fmt.Sprintf("authentication unavailable: %v", e.Err)
}

func (e *AuthUnavailableError) Unwrap() error {
	return e.Err
}

// ExchangeFailedError indicates that the secondary token exchange was
// rejected, unreachable, or returned a malformed response.
type ExchangeFailedError struct {
	// Status is the HTTP status of the exchange response, or 0 when the
	// request never completed.
	Status int

	// Detail describes what went wrong.
	Detail string

	// Err is the underlying transport error, if any.
	Err error
}

func (e *ExchangeFailedError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("token exchange failed with status %d: %s", e.Status, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("token exchange failed: %v", e.Err)
	}
	return fmt.Sprintf("token exchange failed: %s", e.Detail)
}

func (e *ExchangeFailedError) Unwrap() error {
	return e.Err
}
