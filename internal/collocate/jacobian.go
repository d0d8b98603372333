package collocate

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/njchilds90/gosymbol"
	"gonum.org/v1/gonum/mat"

	"github.com/suguke/gait-control-direct-id-paper/internal/compute"
)

// JacobianFunc evaluates the sparse Jacobian of the collocation residuals.
// Arguments follow the [ConstraintFunc] convention. The result has shape
// (n×(M−1)) × (n×M + q×M + n_free_constants) with step-major columns per
// symbol: state j at step i sits in column j·M+i, specified input u at step
// i in column n·M+u·M+i, and the free constants occupy the trailing columns
// in their given order.
type JacobianFunc func(states, specified *mat.Dense, constants []float64, interval float64) (*sparse.CSR, error)

// GeneralConstraintJacobian symbolically differentiates a discretized
// equation vector with respect to the current states, previous states,
// current specified inputs and the free constants, and compiles the result
// into a sparse-matrix-valued function. Each residual row depends only on
// two adjacent time steps, so every row touches at most 2n+q+n_free columns.
//
// freeConstants must be a subset of constants; anything else fails with
// [ErrUnknownSymbol].
func GeneralConstraintJacobian(eoms *gosymbol.Matrix, states, specified, constants, freeConstants []*gosymbol.Sym) (JacobianFunc, error) {
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
	nf := len(freeConstants)

	declared := make(map[string]struct{}, p)
	for _, c := range constants {
		declared[c.Name()] = struct{}{}
	}
	for _, c := range freeConstants {
		if _, ok := declared[c.Name()]; !ok {
			return nil, fmt.Errorf("%w: free constant %q not in constant list", ErrUnknownSymbol, c.Name())
		}
	}

	current, previous, currentSpecified, interval, err := DiscreteSymbols(states, specified)
	if err != nil {
		return nil, err
	}

	wrt := make([]string, 0, 2*n+q+nf)
	wrt = append(wrt, symbolNames(current)...)
	wrt = append(wrt, symbolNames(previous)...)
	wrt = append(wrt, symbolNames(currentSpecified)...)
	wrt = append(wrt, symbolNames(freeConstants)...)

	exprs := make([]gosymbol.Expr, n)
	for r := 0; r < n; r++ {
		exprs[r] = eoms.Get(r, 0)
	}
	symJac := gosymbol.Jacobian(exprs, wrt)

	vars := make([]string, 0, 2*n+q+p+1)
	vars = append(vars, symbolNames(current)...)
	vars = append(vars, symbolNames(previous)...)
	vars = append(vars, symbolNames(currentSpecified)...)
	vars = append(vars, symbolNames(constants)...)
	vars = append(vars, interval.Name())

	prog, err := compute.CompileMatrix(symJac, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSymbol, err)
	}

	nw := len(wrt)

	return func(stateVals, specifiedVals *mat.Dense, constantVals []float64, h float64) (*sparse.CSR, error) {
		steps, err := checkTrajectory(stateVals, specifiedVals, constantVals, n, q, p)
		if err != nil {
			return nil, err
		}

		vals := make([]float64, len(vars))
		copy(vals[2*n+q:], constantVals)
		vals[len(vals)-1] = h

		jac := sparse.NewDOK(n*(steps-1), n*steps+q*steps+nf)
		block := mat.NewDense(n, nw, nil)
		rows := make([]int, n)
		cols := make([]int, nw)

		for i := 1; i < steps; i++ {
			for j := 0; j < n; j++ {
				vals[j] = stateVals.At(j, i)
				vals[n+j] = stateVals.At(j, i-1)
			}
			for u := 0; u < q; u++ {
				vals[2*n+u] = specifiedVals.At(u, i)
			}

			for r := 0; r < n; r++ {
				rows[r] = r*(steps-1) + (i - 1)
				for c := 0; c < nw; c++ {
					block.Set(r, c, prog.Eval(r*nw+c, vals))
				}
			}
			for j := 0; j < n; j++ {
				cols[j] = j*steps + i
				cols[n+j] = j*steps + i - 1
			}
			for u := 0; u < q; u++ {
				cols[2*n+u] = n*steps + u*steps + i
			}
			for c := 0; c < nf; c++ {
				cols[2*n+q+c] = n*steps + q*steps + c
			}

			if err := SubstituteMatrix(jac, rows, cols, block); err != nil {
				return nil, &ConstraintError{Step: i, Wrapped: err}
			}
		}

		return jac.ToCSR(), nil
	}, nil
}
