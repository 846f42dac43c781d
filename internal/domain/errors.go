package domain

import "fmt"

// ValidationError represents a missing or empty required field.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	if e.Message == "" {
		return "validation failed"
	}
	return e.Message
}

// Is enables errors.Is matching on ValidationError.
func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// AuthenticationError represents a missing or invalid credential.
type AuthenticationError struct {
	Message string
}

func (e AuthenticationError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return e.Message
}

func (e AuthenticationError) Is(target error) bool {
	_, ok := target.(AuthenticationError)
	if ok {
		return true
	}
	_, ok = target.(*AuthenticationError)
	return ok
}

// AuthorizationError represents a principal acting on a resource it does
// not own.
type AuthorizationError struct {
	Message string
}

func (e AuthorizationError) Error() string {
	if e.Message == "" {
		return "forbidden"
	}
	return e.Message
}

func (e AuthorizationError) Is(target error) bool {
	_, ok := target.(AuthorizationError)
	if ok {
		return true
	}
	_, ok = target.(*AuthorizationError)
	return ok
}

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// StorageError wraps an underlying store failure. The cause is logged,
// never returned to clients.
type StorageError struct {
	Cause error
}

func (e StorageError) Error() string {
	if e.Cause == nil {
		return "storage failure"
	}
	return fmt.Sprintf("storage failure: %v", e.Cause)
}

func (e StorageError) Unwrap() error { return e.Cause }

func (e StorageError) Is(target error) bool {
	_, ok := target.(StorageError)
	if ok {
		return true
	}
	_, ok = target.(*StorageError)
	return ok
}

// Sentinel errors for errors.Is matching.
var (
	ErrValidation     = ValidationError{}
	ErrAuthentication = AuthenticationError{}
	ErrAuthorization  = AuthorizationError{}
	ErrNotFound       = NotFoundError{}
	ErrStorage        = StorageError{}
)
