package errors

import "fmt"

// ErrorCode represents a sidenote error code.
type ErrorCode string

const (
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"      // 400
	ErrNotFound            ErrorCode = "NOT_FOUND"            // 404
	ErrStoreUnavailable    ErrorCode = "STORE_UNAVAILABLE"    // 503
	ErrMirrorUnavailable   ErrorCode = "MIRROR_UNAVAILABLE"   // 503
	ErrIdentityUnavailable ErrorCode = "IDENTITY_UNAVAILABLE" // 503
	ErrSaveFailed          ErrorCode = "SAVE_FAILED"          // 500
	ErrInternal            ErrorCode = "INTERNAL"             // 500
)

// NoteError represents a structured error with code, status, and details.
type NoteError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *NoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *NoteError {
	return &NoteError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when no note exists at a location.
func NewNotFound(location string) *NoteError {
	return &NoteError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("no note at: %s", location),
		Details: map[string]any{"location": location},
	}
}

// NewStoreUnavailable creates a 503 error for when the record store
// failed to initialize and remains unusable for the process lifetime.
func NewStoreUnavailable() *NoteError {
	return &NoteError{
		Code:    ErrStoreUnavailable,
		Status:  503,
		Message: "record store unavailable",
	}
}

// NewMirrorUnavailable creates a 503 error for when every mirror
// write or read strategy failed.
func NewMirrorUnavailable(msg string) *NoteError {
	return &NoteError{
		Code:    ErrMirrorUnavailable,
		Status:  503,
		Message: msg,
	}
}

// NewIdentityUnavailable creates a 503 error for when the platform
// cannot produce an identity token or resolve a reference.
// Callers degrade to path-only matching on this code.
func NewIdentityUnavailable(location string) *NoteError {
	return &NoteError{
		Code:    ErrIdentityUnavailable,
		Status:  503,
		Message: fmt.Sprintf("identity unresolvable for: %s", location),
		Details: map[string]any{"location": location},
	}
}

// NewSaveFailed creates a 500 error for when both storage channels
// rejected a write.
func NewSaveFailed(location string) *NoteError {
	return &NoteError{
		Code:    ErrSaveFailed,
		Status:  500,
		Message: fmt.Sprintf("save failed: %s", location),
		Details: map[string]any{"location": location},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *NoteError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &NoteError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a NoteError with the given code.
func Is(err error, code ErrorCode) bool {
	if nErr, ok := err.(*NoteError); ok {
		return nErr.Code == code
	}
	return false
}
