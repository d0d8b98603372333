package collocate

import (
	"errors"
	"fmt"
)

// Domain errors for constraint assembly.
var (
	// ErrShapeMismatch indicates array dimensions disagree with the declared
	// state/specified/constant counts.
	ErrShapeMismatch = errors.New("collocate: shape mismatch")

	// ErrInsufficientTimeSteps indicates a trajectory with fewer than two
	// time steps, which has no interior constraint rows.
	ErrInsufficientTimeSteps = errors.New("collocate: at least two time steps required")

	// ErrUnknownSymbol indicates a symbol outside the declared lists, such as
	// a free constant missing from the constants vector.
	ErrUnknownSymbol = errors.New("collocate: unknown symbol")

	// ErrSymbolCollision indicates two distinct base symbols map to the same
	// discrete name.
	ErrSymbolCollision = errors.New("collocate: discrete symbol name collision")
)

// ConstraintError wraps an error with the grid step it occurred at.
type ConstraintError struct {
	Step    int
	Wrapped error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *ConstraintError) Unwrap() error {
	return e.Wrapped
}
