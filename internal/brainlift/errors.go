package brainlift

import (
	"fmt"
	"time"
)

// NotFoundError indicates the requested record does not exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("BrainLift with ID %q not found", e.ID)
}

// ForbiddenError indicates the ownership check for a record failed.
type ForbiddenError struct {
	ID string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("access to BrainLift %q denied", e.ID)
}

// RequestFailedError indicates the API returned an unexpected error status,
// or the request failed for a reason not covered by the other error kinds.
type RequestFailedError struct {
	// Status is the HTTP status, or 0 for non-HTTP failures.
	Status int
	Detail string
}

func (e *RequestFailedError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("request failed: %s", e.Detail)
}

// UnreachableError indicates the API endpoint could not be connected to.
type UnreachableError struct {
	BaseURL string
	Err     error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("failed to connect to BrainLift API at %s: %v", e.BaseURL, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// TimedOutError indicates the request did not complete within the bounded
// timeout.
type TimedOutError struct {
	Timeout time.Duration
}

func (e *TimedOutError) Error() string {
	return fmt.Sprintf("request timed out after %s", e.Timeout)
}
