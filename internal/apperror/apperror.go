package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ApiError is an error that carries the HTTP status and the body sent to the caller.
type ApiError struct {
	Status    int    `json:"-"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Cause     error  `json:"-"`
}

// New fills the message template with the given arguments.
func (e ApiError) New(messages ...string) ApiError {
	args := make([]any, len(messages))
	for i, msg := range messages {
		args[i] = msg
	}

	return ApiError{
		Status:    e.Status,
		ErrorCode: e.ErrorCode,
		Message:   fmt.Sprintf(e.Message, args...),
	}
}

func (e ApiError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.ErrorCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

func (e ApiError) Unwrap() error {
	return e.Cause
}

// StatusCode falls back to 500 for errors built without a status.
func (e ApiError) StatusCode() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

var (
	ErrBadRequest      = ApiError{Status: http.StatusBadRequest, ErrorCode: "BAD_REQUEST", Message: "%s"}
	ErrUnauthorized    = ApiError{Status: http.StatusUnauthorized, ErrorCode: "UNAUTHORIZED", Message: "%s"}
	ErrForbidden       = ApiError{Status: http.StatusForbidden, ErrorCode: "FORBIDDEN", Message: "%s"}
	ErrNotFound        = ApiError{Status: http.StatusNotFound, ErrorCode: "NOT_FOUND", Message: "%s"}
	ErrConflict        = ApiError{Status: http.StatusConflict, ErrorCode: "CONFLICT", Message: "%s"}
	ErrTooManyRequests = ApiError{Status: http.StatusTooManyRequests, ErrorCode: "TOO_MANY_REQUESTS", Message: "%s"}
	ErrInternal        = ApiError{Status: http.StatusInternalServerError, ErrorCode: "INTERNAL_SERVER_ERROR", Message: "%s"}
)

func BadRequest(message string) ApiError      { return ErrBadRequest.New(message) }
func Unauthorized(message string) ApiError    { return ErrUnauthorized.New(message) }
func Forbidden(message string) ApiError       { return ErrForbidden.New(message) }
func NotFound(message string) ApiError        { return ErrNotFound.New(message) }
func Conflict(message string) ApiError        { return ErrConflict.New(message) }
func TooManyRequests(message string) ApiError { return ErrTooManyRequests.New(message) }

// Wrap keeps ApiErrors as they are and turns anything else into a 500 with
// the given public message. The original error stays reachable via Unwrap.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var apiErr ApiError
	if errors.As(err, &apiErr) {
		return err
	}
	wrapped := ErrInternal.New(message)
	wrapped.Cause = err
	return wrapped
}

// As extracts the ApiError carried by err, if any.
func As(err error) (ApiError, bool) {
	var apiErr ApiError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
