package domain

import (
	"errors"
	"strings"
)

// Error kinds. Every error surfaced to a client unwraps to exactly one of
// these; the HTTP layer maps the kind to a status code.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrRateLimited     = errors.New("rate limited")
)

// Error is a client-facing failure with a stable machine code.
type Error struct {
	Kind    error
	Code    string
	Message string
	Fields  []FieldError
}

// FieldError describes why a single input field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrItemNotFound       = &Error{Kind: ErrNotFound, Code: "item_not_found", Message: "Item not found."}
	ErrUserNotFound       = &Error{Kind: ErrNotFound, Code: "user_not_found", Message: "User not found."}
	ErrFileNotFound       = &Error{Kind: ErrNotFound, Code: "file_not_found", Message: "File not found."}
	ErrUserExists         = &Error{Kind: ErrConflict, Code: "user_exists", Message: "User already exists."}
	ErrInvalidCredentials = &Error{Kind: ErrUnauthenticated, Code: "invalid_credentials", Message: "Incorrect username or password."}
	ErrNotAuthenticated   = &Error{Kind: ErrUnauthenticated, Code: "not_authenticated", Message: "Could not validate credentials."}
	ErrTokenMalformed     = &Error{Kind: ErrUnauthenticated, Code: "token_malformed", Message: "Token is malformed."}
	ErrTokenExpired       = &Error{Kind: ErrUnauthenticated, Code: "token_expired", Message: "Token has expired."}
	ErrTooManyRequests    = &Error{Kind: ErrRateLimited, Code: "rate_limited", Message: "Too many requests."}
)

// NewValidationError builds a ValidationError carrying per-field details.
func NewValidationError(message string, fields ...FieldError) *Error {
	if message == "" {
		message = "Request validation failed."
	}
	return &Error{Kind: ErrValidation, Code: "validation_error", Message: message, Fields: fields}
}

// ForbiddenError is returned when a valid token lacks a required scope.
type ForbiddenError struct {
	Required []string
}

func (e *ForbiddenError) Error() string { return "Insufficient scopes." }

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }
