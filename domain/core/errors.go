package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)
	ErrModelNotFound   = fmt.Errorf("%w: model", ErrNotFound)

	// Input errors
	ErrVariableNotFound = errors.New("variable not found in dataset")
	ErrNoPredictors     = errors.New("at least one independent variable is required")

	// Fit errors
	ErrInsufficientData = errors.New("insufficient data for regression")
	ErrSingularMatrix   = errors.New("design matrix is singular or near-singular")
)

// Error constructors with context
func NewSessionNotFoundError(token SessionToken) error {
	return fmt.Errorf("%w: %s", ErrSessionNotFound, token)
}

func NewModelNotFoundError(name ModelName) error {
	return fmt.Errorf("%w: %s", ErrModelNotFound, name)
}

func NewVariableNotFoundError(name string) error {
	return fmt.Errorf("%w: %s", ErrVariableNotFound, name)
}

func NewInsufficientDataError(rows, cols int) error {
	return fmt.Errorf("%w: %d usable rows for %d design columns", ErrInsufficientData, rows, cols)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInputError reports whether the error is a client-visible bad reference
// (unknown variable, empty predictor list). Never retried.
func IsInputError(err error) bool {
	return errors.Is(err, ErrVariableNotFound) ||
		errors.Is(err, ErrNoPredictors)
}

// IsNumericalError reports whether the fit could not produce a defined
// solution.
func IsNumericalError(err error) bool {
	return errors.Is(err, ErrSingularMatrix)
}
