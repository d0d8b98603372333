package sim

import (
	"errors"
	"fmt"
)

// Domain errors for trajectory generation.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrNoConvergence indicates an implicit step's fixed-point iteration
	// did not converge within the iteration budget.
	ErrNoConvergence = errors.New("sim: implicit step did not converge")

	// ErrDimensionMismatch indicates mismatched state/input dimensions.
	ErrDimensionMismatch = errors.New("sim: dimension mismatch between state and system")
)

// StepError wraps an error with the time step where it occurred.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
