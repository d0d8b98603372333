package collocate

import "github.com/njchilds90/gosymbol"

// Discretize rewrites a continuous implicit equation vector into its
// backward-Euler discrete form: each state derivative s' becomes
// (si − sp)/h and each bare state or specified symbol becomes its current
// discrete symbol. The result has the same shape as the input and is purely
// algebraic.
//
// Every differentiated symbol in the input must be the first derivative of a
// listed state; anything else passes through untouched.
func Discretize(eoms *gosymbol.Matrix, states, specified []*gosymbol.Sym, interval *gosymbol.Sym) (*gosymbol.Matrix, error) {
	current, previous, currentSpecified, _, err := DiscreteSymbols(states, specified)
	if err != nil {
		return nil, err
	}

	out := eoms

	// s' and s are distinct symbols, so the passes cannot interfere.
	for j, s := range states {
		diff := gosymbol.MulOf(
			gosymbol.AddOf(current[j], gosymbol.MulOf(gosymbol.N(-1), previous[j])),
			gosymbol.PowOf(interval, gosymbol.N(-1)),
		)
		out = out.ApplySub(Dot(s).Name(), diff)
	}
	for j, s := range states {
		out = out.ApplySub(s.Name(), current[j])
	}
	for u, s := range specified {
		out = out.ApplySub(s.Name(), currentSpecified[u])
	}

	return out, nil
}
