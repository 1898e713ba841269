package services

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to HTTP statuses with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("rate limited")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	ErrUserNotFound   = kindError(ErrNotFound, "user not found")
	ErrDriverNotFound = kindError(ErrNotFound, "driver not found")
	ErrReviewNotFound = kindError(ErrNotFound, "review not found")
	ErrReportNotFound = kindError(ErrNotFound, "report not found")

	ErrSelfReview = kindError(ErrConflict, "you cannot review yourself")
	ErrSelfReport = kindError(ErrConflict, "cannot report yourself")
	ErrSelfBlock  = kindError(ErrConflict, "cannot block yourself")

	ErrReviewWindow = kindError(ErrRateLimited, "you can only leave one review per driver per 24 hours")
	ErrOTPAttempts  = kindError(ErrRateLimited, "too many attempts, request a new code")

	ErrNotOwner         = kindError(ErrForbidden, "can only update your own driver profile")
	ErrRoleNotAllowed   = kindError(ErrForbidden, "your role cannot perform this action")
	ErrAccountSuspended = kindError(ErrForbidden, "this account has been suspended")

	ErrInvalidOTP = kindError(ErrUnauthorized, "invalid or expired OTP code")
)

type kindErr struct {
	kind error
	msg  string
}

func (e *kindErr) Error() string { return e.msg }
func (e *kindErr) Unwrap() error { return e.kind }

func kindError(kind error, msg string) error {
	return &kindErr{kind: kind, msg: msg}
}

// ValidationError reports bad input. Handlers answer 400 with Message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
