package queryir

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes filter and sort compile errors.
type ErrorCode string

const (
	// ErrCodeUnknownProperty indicates the property is not registered for the record type.
	ErrCodeUnknownProperty ErrorCode = "UNKNOWN_PROPERTY"

	// ErrCodeUnsupportedOperator indicates the operator does not apply to the field's kind.
	ErrCodeUnsupportedOperator ErrorCode = "UNSUPPORTED_OPERATOR_FOR_TYPE"

	// ErrCodeNotSortable indicates the field is neither ordered nor textual.
	ErrCodeNotSortable ErrorCode = "NOT_SORTABLE"

	// ErrCodeNotImplemented indicates an unhandled operator or combination.
	ErrCodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// ErrCodeInvalidArgument indicates a missing or malformed argument.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Error is a compile-time failure of a filter group or sort spec.
//
// Errors are raised when a filter or sort is compiled, never while it is
// evaluated, so callers can reject a request before touching a view.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Property is the offending property name, if any.
	Property string

	// Operator is the offending operator, if any.
	Operator Operator

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Property != "" && e.Operator != "":
		return fmt.Sprintf("%s: %s (property=%s, operator=%s)", e.Code, e.Message, e.Property, e.Operator)
	case e.Property != "":
		return fmt.Sprintf("%s: %s (property=%s)", e.Code, e.Message, e.Property)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err (or anything it wraps) is an *Error with code.
func HasCode(err error, code ErrorCode) bool {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code == code
	}
	return false
}

// IsUnknownProperty returns true for ErrCodeUnknownProperty errors.
func IsUnknownProperty(err error) bool { return HasCode(err, ErrCodeUnknownProperty) }

// IsUnsupportedOperator returns true for ErrCodeUnsupportedOperator errors.
func IsUnsupportedOperator(err error) bool { return HasCode(err, ErrCodeUnsupportedOperator) }

// IsNotSortable returns true for ErrCodeNotSortable errors.
func IsNotSortable(err error) bool { return HasCode(err, ErrCodeNotSortable) }

// IsNotImplemented returns true for ErrCodeNotImplemented errors.
func IsNotImplemented(err error) bool { return HasCode(err, ErrCodeNotImplemented) }

// IsInvalidArgument returns true for ErrCodeInvalidArgument errors.
func IsInvalidArgument(err error) bool { return HasCode(err, ErrCodeInvalidArgument) }

// NewUnknownPropertyError creates an Error for an unregistered property.
func NewUnknownPropertyError(property string) *Error {
	return &Error{
		Code:     ErrCodeUnknownProperty,
		Property: property,
		Message:  "property is not defined on the record type",
	}
}

// NewUnsupportedOperatorError creates an Error for an operator that does not
// apply to a field of the given kind.
func NewUnsupportedOperatorError(property string, op Operator, kind string) *Error {
	return &Error{
		Code:     ErrCodeUnsupportedOperator,
		Property: property,
		Operator: op,
		Message:  fmt.Sprintf("operator not supported for %s fields", kind),
	}
}

// NewNotSortableError creates an Error for a field that cannot be ordered.
func NewNotSortableError(property, kind string) *Error {
	return &Error{
		Code:     ErrCodeNotSortable,
		Property: property,
		Message:  fmt.Sprintf("%s fields are neither ordered nor comparable as text", kind),
	}
}

// NewNotImplementedError creates an Error for an unhandled combination.
func NewNotImplementedError(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeNotImplemented,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewInvalidArgumentError creates an Error for a missing or malformed argument.
func NewInvalidArgumentError(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf(format, args...),
	}
}
