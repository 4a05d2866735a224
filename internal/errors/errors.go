// Package errors defines the error taxonomy shared by the engine, the stores and the
// HTTP layer. Errors are marked with one of the sentinels below and matched with Is*.
package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrGenerationLimit  = new(ErrCodeGenerationLimit, "generation limit exceeded")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrBadRequest       = new(ErrCodeBadRequest, "malformed request")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrValidation:       http.StatusUnprocessableEntity,
		ErrNotFound:         http.StatusNotFound,
		ErrInvalidOperation: http.StatusConflict,
		ErrDatabase:         http.StatusInternalServerError,
		ErrGenerationLimit:  http.StatusOK,
		ErrBadRequest:       http.StatusBadRequest,
	}
)

const (
	ErrCodeValidation       = "validation_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeGenerationLimit  = "generation_limit_exceeded"
	ErrCodeDatabase         = "database_error"
	ErrCodeInvalidOperation = "invalid_operation"
	ErrCodeBadRequest       = "bad_request"
	ErrCodeInternal         = "internal_error"
)

// InternalError is a sentinel carrying a machine-readable code.
type InternalError struct {
	Code    string
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is matches on code so sentinels survive wrapping.
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsGenerationLimit reports whether err carries the 1000-iteration truncation warning.
// Operations returning it also return a usable, consistent result.
func IsGenerationLimit(err error) bool {
	return errors.Is(err, ErrGenerationLimit)
}

func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// Code returns the taxonomy code of err, or ErrCodeInternal when it carries none.
func Code(err error) string {
	for _, sentinel := range []*InternalError{ErrValidation, ErrNotFound, ErrGenerationLimit, ErrDatabase, ErrInvalidOperation, ErrBadRequest} {
		if errors.Is(err, sentinel) {
			return sentinel.Code
		}
	}
	return ErrCodeInternal
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
