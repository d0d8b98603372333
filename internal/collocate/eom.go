package collocate

import (
	"fmt"

	"github.com/njchilds90/gosymbol"
)

// FMinusMA assembles the implicit equation-of-motion vector M(x)·x' − F from
// a symbolic mass matrix and forcing vector. The state list fixes the order
// of the derivative column; mass rows for kinematic relations carry identity
// entries so the result covers the full first-order system.
func FMinusMA(massMatrix, forcing *gosymbol.Matrix, states []*gosymbol.Sym) (*gosymbol.Matrix, error) {
	n := len(states)
	if massMatrix.Rows() != n || massMatrix.Cols() != n {
		return nil, fmt.Errorf("%w: mass matrix is %dx%d for %d states",
			ErrShapeMismatch, massMatrix.Rows(), massMatrix.Cols(), n)
	}
	if forcing.Rows() != n || forcing.Cols() != 1 {
		return nil, fmt.Errorf("%w: forcing vector is %dx%d for %d states",
			ErrShapeMismatch, forcing.Rows(), forcing.Cols(), n)
	}

	derivatives := gosymbol.NewMatrix(n, 1)
	for j, s := range states {
		derivatives.Set(j, 0, Dot(s))
	}

	return massMatrix.MatMul(derivatives).MatSub(forcing), nil
}
