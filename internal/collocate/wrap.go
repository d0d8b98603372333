package collocate

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

// WrapConstraint adapts a generated constraint function to the flat
// free-variable calling convention described by layout. The wrapped function
// reconstructs the full trajectory arguments, merges fixed values back in
// and forwards to fn; results are identical to calling fn directly with the
// same values split out.
func WrapConstraint(fn ConstraintFunc, layout *FreeLayout) func([]float64) ([]float64, error) {
	return func(free []float64) ([]float64, error) {
		states, specified, constants, err := layout.Split(free)
		if err != nil {
			return nil, err
		}
		return fn(states, specified, constants, layout.Interval())
	}
}

// WrapJacobian adapts a generated Jacobian function to the flat free-variable
// convention. The generator must have been built with the layout's unknown
// constants as its free constants, in the same order; the column count is
// checked at call time. Columns for fixed specified inputs are dropped and
// the remaining columns are compacted so the result is exactly the
// derivative with respect to the free vector.
func WrapJacobian(fn JacobianFunc, layout *FreeLayout) func([]float64) (*sparse.CSR, error) {
	n := layout.NumStates()
	m := layout.Steps()
	q := len(layout.specified)
	nuq := len(layout.unknownSpecified)
	nf := len(layout.unknownConstants)

	unknownRank := make(map[int]int, nuq)
	for u, name := range layout.specified {
		if _, ok := layout.fixedSpecified[name]; !ok {
			unknownRank[u] = len(unknownRank)
		}
	}

	fullCols := n*m + q*m + nf

	return func(free []float64) (*sparse.CSR, error) {
		states, specified, constants, err := layout.Split(free)
		if err != nil {
			return nil, err
		}

		full, err := fn(states, specified, constants, layout.Interval())
		if err != nil {
			return nil, err
		}

		rows, cols := full.Dims()
		if cols != fullCols {
			return nil, fmt.Errorf("%w: jacobian has %d columns, layout expects %d",
				ErrShapeMismatch, cols, fullCols)
		}

		packed := sparse.NewDOK(rows, layout.Len())
		full.DoNonZero(func(i, j int, v float64) {
			switch {
			case j < n*m:
				packed.Set(i, j, v)
			case j < n*m+q*m:
				u := (j - n*m) / m
				t := (j - n*m) % m
				if r, ok := unknownRank[u]; ok {
					packed.Set(i, n*m+r*m+t, v)
				}
			default:
				packed.Set(i, n*m+nuq*m+(j-n*m-q*m), v)
			}
		})
		return packed.ToCSR(), nil
	}
}
