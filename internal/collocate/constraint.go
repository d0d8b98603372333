package collocate

import (
	"fmt"

	"github.com/njchilds90/gosymbol"
	"gonum.org/v1/gonum/mat"

	"github.com/suguke/gait-control-direct-id-paper/internal/compute"
)

// ConstraintFunc evaluates collocation residuals over a full trajectory.
// states is n×M, specified is q×M (nil when there are no specified inputs),
// constants follows the declared constant order, interval is the uniform
// grid spacing. The result has length n×(M−1): for each equation row, its
// residuals at steps 1..M−1 in time order, equation rows in declaration
// order. The kinematic rows (the leading half by convention) therefore form
// a contiguous block ahead of the dynamic rows.
type ConstraintFunc func(states, specified *mat.Dense, constants []float64, interval float64) ([]float64, error)

// GeneralConstraint compiles a discretized equation vector into a residual
// function over a trajectory grid. All symbolic work happens here, once; the
// returned closure only runs compiled float64 code.
//
// Generation fails with [ErrUnknownSymbol] if the equations reference any
// symbol outside the discrete states, discrete specified inputs, constants
// and interval.
func GeneralConstraint(eoms *gosymbol.Matrix, states, specified, constants []*gosymbol.Sym) (ConstraintFunc, error) {
	if eoms.Cols() != 1 {
		return nil, fmt.Errorf("%w: equation vector is %dx%d, want a column",
			ErrShapeMismatch, eoms.Rows(), eoms.Cols())
	}
	n := eoms.Rows()
	if n != len(states) {
		return nil, fmt.Errorf("%w: %d equations for %d states", ErrShapeMismatch, n, len(states))
	}
	q := len(specified)
	p := len(constants)

	current, previous, currentSpecified, interval, err := DiscreteSymbols(states, specified)
	if err != nil {
		return nil, err
	}

	// Slot order: current states, previous states, current specified,
	// constants, interval.
	vars := make([]string, 0, 2*n+q+p+1)
	vars = append(vars, symbolNames(current)...)
	vars = append(vars, symbolNames(previous)...)
	vars = append(vars, symbolNames(currentSpecified)...)
	vars = append(vars, symbolNames(constants)...)
	vars = append(vars, interval.Name())

	prog, err := compute.CompileMatrix(eoms, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSymbol, err)
	}

	return func(stateVals, specifiedVals *mat.Dense, constantVals []float64, h float64) ([]float64, error) {
		steps, err := checkTrajectory(stateVals, specifiedVals, constantVals, n, q, p)
		if err != nil {
			return nil, err
		}

		vals := make([]float64, len(vars))
		copy(vals[2*n+q:], constantVals)
		vals[len(vals)-1] = h

		residuals := make([]float64, n*(steps-1))
		for i := 1; i < steps; i++ {
			for j := 0; j < n; j++ {
				vals[j] = stateVals.At(j, i)
				vals[n+j] = stateVals.At(j, i-1)
			}
			for u := 0; u < q; u++ {
				vals[2*n+u] = specifiedVals.At(u, i)
			}
			for r := 0; r < n; r++ {
				residuals[r*(steps-1)+(i-1)] = prog.Eval(r, vals)
			}
		}
		return residuals, nil
	}, nil
}

func checkTrajectory(stateVals, specifiedVals *mat.Dense, constantVals []float64, n, q, p int) (int, error) {
	if stateVals == nil {
		return 0, fmt.Errorf("%w: nil state trajectory", ErrShapeMismatch)
	}
	rows, steps := stateVals.Dims()
	if rows != n {
		return 0, fmt.Errorf("%w: state trajectory has %d rows for %d states", ErrShapeMismatch, rows, n)
	}
	if steps < 2 {
		return 0, fmt.Errorf("%w: got %d", ErrInsufficientTimeSteps, steps)
	}
	if q > 0 {
		if specifiedVals == nil {
			return 0, fmt.Errorf("%w: nil specified trajectory for %d inputs", ErrShapeMismatch, q)
		}
		sr, sc := specifiedVals.Dims()
		if sr != q || sc != steps {
			return 0, fmt.Errorf("%w: specified trajectory is %dx%d, want %dx%d",
				ErrShapeMismatch, sr, sc, q, steps)
		}
	}
	if len(constantVals) != p {
		return 0, fmt.Errorf("%w: %d constant values for %d constants",
			ErrShapeMismatch, len(constantVals), p)
	}
	return steps, nil
}
