// Package domainerrors provides coded, caller-visible errors for the youth
// membership service. Services construct these directly for business-rule
// failures and wrap store/transport errors with an appropriate code; handlers
// translate codes to HTTP statuses with ToHTTPStatus.
//
// All codes are stable and part of the API contract. Errors propagate unchanged
// to the caller; there is no retry or suppression layer in between.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the class of failure.
type Code string

const (
	CodeBadRequest     Code = "bad_request"
	CodeUnauthorized   Code = "unauthorized"
	CodeNotFound       Code = "not_found"
	CodeForbidden      Code = "forbidden"
	CodeConflict       Code = "conflict"
	CodeAgeRestriction Code = "age_restriction"
	CodeCannotRenew    Code = "cannot_renew"
	CodeTokenExpired   Code = "token_expired"
	CodeTimeout        Code = "timeout"
	CodeUnavailable    Code = "unavailable"
	CodeInternal       Code = "internal"
)

// Error carries a stable code alongside a human-readable message and an
// optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs a coded error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the code from err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps an error's code to an HTTP status.
func ToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeBadRequest, CodeAgeRestriction, CodeCannotRenew:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden, CodeTokenExpired:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
