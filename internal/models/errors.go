package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried by AppError.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError represents a custom application error.
type AppError struct {
	Code    string
	Reason  string
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError carrying the same non-empty Reason.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Reason != "" && t.Reason == e.Reason
}

// Status maps the error code to an HTTP status.
func (e *AppError) Status() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Domain errors compared with errors.Is.
var (
	ErrInvalidCredentials = &AppError{Code: CodeUnauthorized, Reason: "invalid_credentials", Message: "Invalid email or password."}
	ErrUnverifiedLogin    = &AppError{Code: CodeUnauthorized, Reason: "invalid_credentials", Message: "Email address has not been verified."}
	ErrUnverifiedAccount  = &AppError{Code: CodeForbidden, Reason: "unverified_account", Message: "Email address has not been verified."}
	ErrInvalidToken       = &AppError{Code: CodeValidation, Reason: "invalid_token", Message: "Invalid or expired verification token."}
	ErrAlreadyVerified    = &AppError{Code: CodeConflict, Reason: "already_verified", Message: "Email address is already verified."}
	ErrInvalidLink        = &AppError{Code: CodeValidation, Reason: "invalid_link", Message: "The reset link is invalid or has expired."}
	ErrCannotFollowSelf   = &AppError{Code: CodeValidation, Reason: "cannot_follow_self", Message: "You cannot follow or unfollow yourself."}
	ErrAlreadyFollowing   = &AppError{Code: CodeConflict, Reason: "already_following", Message: "You are already following this user."}
	ErrAlreadyUnfollowed  = &AppError{Code: CodeConflict, Reason: "already_unfollowed", Message: "You are not following this user."}
	ErrAlreadyLiked       = &AppError{Code: CodeConflict, Reason: "already_liked", Message: "You have already liked this."}
	ErrInvalidParent      = &AppError{Code: CodeValidation, Reason: "invalid_parent", Message: "Exactly one of parent comment or parent reply must be set."}
	ErrNotOwner           = &AppError{Code: CodeForbidden, Reason: "not_owner", Message: "You do not have permission to modify this resource."}
	ErrFeatureDisabled    = &AppError{Code: CodeForbidden, Reason: "feature_disabled", Message: "This feature is currently disabled."}
)

// NewNotFoundError builds a NOT_FOUND error for resource identified by id.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewNotFoundMessage is NewNotFoundError with a caller-supplied message.
func NewNotFoundMessage(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewFieldError builds a validation error carrying field-level detail.
func NewFieldError(field, message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: "Invalid input.",
		Fields:  map[string][]string{field: {message}},
	}
}

// FieldErrors accumulates field-level validation messages.
type FieldErrors map[string][]string

// Add records message for field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Err returns a VALIDATION_ERROR when any field failed, otherwise nil.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &AppError{Code: CodeValidation, Message: "Invalid input.", Fields: map[string][]string(f)}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewConflictError(reason, message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Reason:  reason,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// AsAppError unwraps err into an AppError when it is one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a NOT_FOUND AppError.
func IsNotFound(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == CodeNotFound
}
