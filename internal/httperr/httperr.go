// Package httperr maps bunquery errors onto standardized HTTP error
// responses.
package httperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kartikbazzad/bunbase/bunquery"
)

// AppError is a standardized application error with an HTTP status code.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"` // internal error, kept for logging
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// New creates a new AppError.
func New(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// BadRequest creates a 400 error.
func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

// NotFound creates a 404 error.
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "internal server error", err)
}

// FromError classifies a bunquery pipeline error. Validation, operator and
// field-name rejections are client errors; everything else, including backend
// failures, is internal.
func FromError(err error) *AppError {
	var (
		validationErr *bunquery.ValidationError
		operatorErr   *bunquery.UnsupportedOperatorError
		fieldErr      *bunquery.FieldNameError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &operatorErr),
		errors.As(err, &fieldErr):
		return BadRequest(err.Error())
	case errors.Is(err, bunquery.ErrNotFound):
		return NotFound(err.Error())
	default:
		return Internal(err)
	}
}
