package resolver

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuery     = errors.New("invalid location query")
	ErrLocationNotFound = errors.New("location not found")
	ErrStoreUnavailable = errors.New("location store unavailable")
)

// ValidationError reports unusable input. It is never retried.
type ValidationError struct {
	Query  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid location query %q: %s", e.Query, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidQuery }

// NotFoundError reports that no tier produced a usable match.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not resolve location %q: try a 3-letter airport code (e.g. YYZ) or a known city name", e.Query)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrLocationNotFound }

// TransientError reports that the repository failed and the fallback table
// had no entry for the query either.
type TransientError struct {
	Query string
	Err   error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("location lookup for %q failed: %v", e.Query, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func (e *TransientError) Is(target error) bool { return target == ErrStoreUnavailable }
