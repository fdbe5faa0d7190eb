package flow

import (
	"errors"
	"fmt"
)

// Domain errors for flow operations.
var (
	// ErrInvalidInput indicates a non-finite coupling component or
	// coefficient was supplied. Never coerced, always surfaced.
	ErrInvalidInput = errors.New("flow: invalid input (NaN or Inf)")

	// ErrStiffness indicates the adaptive step controller requested a
	// step below the configured floor without meeting the tolerance.
	ErrStiffness = errors.New("flow: step below floor without convergence (stiff region)")

	// ErrBadConfig indicates an out-of-domain configuration value, such
	// as a non-positive scale bound or tolerance.
	ErrBadConfig = errors.New("flow: invalid configuration")
)

// StepError wraps an error with the integration context it occurred in.
type StepError struct {
	Step    int
	Mu      float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (mu=%.6g): %v", e.Step, e.Mu, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
