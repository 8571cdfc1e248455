package bunquery

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by backends when a document lookup misses.
var ErrNotFound = errors.New("document not found")

// ValidationError reports a filter value or pagination parameter that could
// corrupt the resulting query. It is always raised before any backend call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UnsupportedOperatorError reports an operator literal outside the fixed
// compilation table.
type UnsupportedOperatorError struct {
	Operator Operator
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported filter operator: %q", string(e.Operator))
}

// FieldNameError reports a field name carrying the reserved operator prefix.
// Such names could smuggle a raw operator key into the compiled conditions.
type FieldNameError struct {
	Field string
}

func (e *FieldNameError) Error() string {
	return fmt.Sprintf("invalid field name %q: field names must not contain %q", e.Field, OperatorPrefix)
}

// BackendError is the opaque carrier backends use for store-side failures.
// It holds the original message only; the Service re-raises backend failures
// verbatim and never wraps them further.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}
