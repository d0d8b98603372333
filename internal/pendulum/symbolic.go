package pendulum

import (
	"github.com/njchilds90/gosymbol"

	"github.com/suguke/gait-control-direct-id-paper/internal/collocate"
)

// Symbolic bundles the cart-pendulum's symbols with its equations of motion
// in mass-matrix form M(x) x' = F(x, u). The pole angle theta is measured
// from the upright position and the pole is a point mass at distance l.
type Symbolic struct {
	States    []*gosymbol.Sym // x, theta, v, omega
	Specified []*gosymbol.Sym // f
	Constants []*gosymbol.Sym // mc, mp, l, g

	MassMatrix *gosymbol.Matrix
	Forcing    *gosymbol.Matrix
}

func NewSymbolic() *Symbolic {
	x := gosymbol.S("x")
	theta := gosymbol.S("theta")
	v := gosymbol.S("v")
	omega := gosymbol.S("omega")

	f := gosymbol.S("f")

	mc := gosymbol.S("mc")
	mp := gosymbol.S("mp")
	l := gosymbol.S("l")
	g := gosymbol.S("g")

	sin := gosymbol.SinOf(theta)
	cos := gosymbol.CosOf(theta)

	mass := gosymbol.MatrixFromSlice(4, 4, []gosymbol.Expr{
		gosymbol.N(1), gosymbol.N(0), gosymbol.N(0), gosymbol.N(0),
		gosymbol.N(0), gosymbol.N(1), gosymbol.N(0), gosymbol.N(0),
		gosymbol.N(0), gosymbol.N(0), gosymbol.AddOf(mc, mp), gosymbol.MulOf(mp, l, cos),
		gosymbol.N(0), gosymbol.N(0), gosymbol.MulOf(mp, l, cos), gosymbol.MulOf(mp, gosymbol.PowOf(l, gosymbol.N(2))),
	})

	forcing := gosymbol.MatrixFromSlice(4, 1, []gosymbol.Expr{
		v,
		omega,
		gosymbol.AddOf(f, gosymbol.MulOf(mp, l, gosymbol.PowOf(omega, gosymbol.N(2)), sin)),
		gosymbol.MulOf(mp, g, l, sin),
	})

	return &Symbolic{
		States:     []*gosymbol.Sym{x, theta, v, omega},
		Specified:  []*gosymbol.Sym{f},
		Constants:  []*gosymbol.Sym{mc, mp, l, g},
		MassMatrix: mass,
		Forcing:    forcing,
	}
}

// ImplicitEOM returns the equations of motion as the residual vector
// M(x) x' - F(x, u), one row per state.
func (s *Symbolic) ImplicitEOM() (*gosymbol.Matrix, error) {
	return collocate.FMinusMA(s.MassMatrix, s.Forcing, s.States)
}

// Discretized returns the implicit equations with every derivative replaced
// by its backward difference and every continuous symbol by its current grid
// sample.
func (s *Symbolic) Discretized() (*gosymbol.Matrix, error) {
	eoms, err := s.ImplicitEOM()
	if err != nil {
		return nil, err
	}
	_, _, _, interval, err := collocate.DiscreteSymbols(s.States, s.Specified)
	if err != nil {
		return nil, err
	}
	return collocate.Discretize(eoms, s.States, s.Specified, interval)
}
