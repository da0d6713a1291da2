package root

import (
	"errors"
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Configuration errors: bad attributes, undeclared tensors, invalid
	// parameter ranges
	ErrTypeConfig ErrorType = iota
	// Shape errors: rank or dimension mismatches
	ErrTypeShape
	// Numerical errors
	ErrTypeNumerical
	// Code generation errors
	ErrTypeCodegen
	// Not implemented errors
	ErrTypeNotImplemented
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConfig:
		return "Configuration"
	case ErrTypeShape:
		return "Shape"
	case ErrTypeNumerical:
		return "Numerical"
	case ErrTypeCodegen:
		return "Codegen"
	case ErrTypeNotImplemented:
		return "NotImplemented"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewConfigError creates a configuration-related error
func NewConfigError(op, message string, err error) error {
	return &Error{
		Type:    ErrTypeConfig,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewShapeError creates a shape or rank mismatch error
func NewShapeError(op, message string, err error) error {
	return &Error{
		Type:    ErrTypeShape,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewNumericalError creates a numerical computation error
func NewNumericalError(op, message string, err error) error {
	return &Error{
		Type:    ErrTypeNumerical,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewCodegenError creates a code generation error
func NewCodegenError(op, message string, err error) error {
	return &Error{
		Type:    ErrTypeCodegen,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewNotImplementedError creates an error for unimplemented features
func NewNotImplementedError(op, feature string) error {
	return &Error{
		Type:    ErrTypeNotImplemented,
		Op:      op,
		Message: fmt.Sprintf("%s is not implemented", feature),
	}
}

// Predefined errors for common conditions

var (
	// ErrUndeclaredTensor is returned when an operator references a tensor
	// that was never declared in the enclosing model
	ErrUndeclaredTensor = &Error{
		Type:    ErrTypeConfig,
		Op:      "ShapeInference",
		Message: "tensor is not declared in the model",
	}

	// ErrUnsupportedRank is returned for tensor ranks outside the 3-5 range
	ErrUnsupportedRank = &Error{
		Type:    ErrTypeShape,
		Op:      "ShapeInference",
		Message: "tensor rank must be 3, 4 or 5",
	}

	// ErrBadGroup is returned when the group count does not divide the
	// channel counts
	ErrBadGroup = &Error{
		Type:    ErrTypeConfig,
		Op:      "Validate",
		Message: "group count must divide input and output channels",
	}

	// ErrNonFloat is returned when an operator is asked to work on a
	// non-float tensor
	ErrNonFloat = &Error{
		Type:    ErrTypeConfig,
		Op:      "Validate",
		Message: "only float tensors are supported",
	}
)

// Type-check helpers

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	return isErrorType(err, ErrTypeConfig)
}

// IsShapeError checks if an error is a shape error
func IsShapeError(err error) bool {
	return isErrorType(err, ErrTypeShape)
}

// IsNumericalError checks if an error is a numerical error
func IsNumericalError(err error) bool {
	return isErrorType(err, ErrTypeNumerical)
}

// IsCodegenError checks if an error is a code generation error
func IsCodegenError(err error) bool {
	return isErrorType(err, ErrTypeCodegen)
}

// IsNotImplementedError checks if an error is a not-implemented error
func IsNotImplementedError(err error) bool {
	return isErrorType(err, ErrTypeNotImplemented)
}

func isErrorType(err error, errType ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == errType
	}
	return false
}
