package collocate

import (
	"github.com/njchilds90/gosymbol"
)

// Forced spring-mass-damper: the smallest system exercising every stage of
// the pipeline. States [x, v], input f, constants (m, c, k).
func oscillatorSymbols() (states, specified, constants []*gosymbol.Sym) {
	states = []*gosymbol.Sym{gosymbol.S("x"), gosymbol.S("v")}
	specified = []*gosymbol.Sym{gosymbol.S("f")}
	constants = []*gosymbol.Sym{gosymbol.S("m"), gosymbol.S("c"), gosymbol.S("k")}
	return states, specified, constants
}

func neg(e gosymbol.Expr) gosymbol.Expr {
	return gosymbol.MulOf(gosymbol.N(-1), e)
}

func over(num, den gosymbol.Expr) gosymbol.Expr {
	return gosymbol.MulOf(num, gosymbol.PowOf(den, gosymbol.N(-1)))
}

// continuousOscillator returns [x' − v, m·v' + c·v + k·x − f] built directly.
func continuousOscillator() *gosymbol.Matrix {
	x, v := gosymbol.S("x"), gosymbol.S("v")
	f := gosymbol.S("f")
	m, c, k := gosymbol.S("m"), gosymbol.S("c"), gosymbol.S("k")

	return gosymbol.MatrixFromSlice(2, 1, []gosymbol.Expr{
		gosymbol.AddOf(gosymbol.S("x'"), neg(v)),
		gosymbol.AddOf(
			gosymbol.MulOf(m, gosymbol.S("v'")),
			gosymbol.MulOf(c, v),
			gosymbol.MulOf(k, x),
			neg(f),
		),
	})
}

// handDiscretizedOscillator returns the backward-Euler form written out by
// hand: [(xi−xp)/h − vi, m(vi−vp)/h + c·vi + k·xi − fi].
func handDiscretizedOscillator() *gosymbol.Matrix {
	xi, vi := gosymbol.S("xi"), gosymbol.S("vi")
	xp, vp := gosymbol.S("xp"), gosymbol.S("vp")
	fi := gosymbol.S("fi")
	m, c, k := gosymbol.S("m"), gosymbol.S("c"), gosymbol.S("k")
	h := gosymbol.S("h")

	return gosymbol.MatrixFromSlice(2, 1, []gosymbol.Expr{
		gosymbol.AddOf(over(gosymbol.AddOf(xi, neg(xp)), h), neg(vi)),
		gosymbol.AddOf(
			gosymbol.MulOf(m, over(gosymbol.AddOf(vi, neg(vp)), h)),
			gosymbol.MulOf(c, vi),
			gosymbol.MulOf(k, xi),
			neg(fi),
		),
	})
}

// discreteOscillatorVars is the full variable ordering used when comparing
// discretized expressions numerically.
var discreteOscillatorVars = []string{"xi", "vi", "xp", "vp", "fi", "m", "c", "k", "h"}

// samplePoints are generic evaluation points with no special structure.
var samplePoints = [][]float64{
	{1.0, 5.0, 0.5, 4.0, 2.0, 1.0, 2.0, 3.0, 0.01},
	{-0.3, 1.7, 0.4, -2.1, 0.9, 2.5, 0.1, 7.0, 0.05},
	{10.0, -3.0, 9.5, -2.0, -1.0, 0.7, 1.3, 0.2, 0.001},
}
