package collocate

import (
	"fmt"

	"github.com/njchilds90/gosymbol"
)

const (
	currentSuffix  = "i"
	previousSuffix = "p"
	intervalName   = "h"
	dotSuffix      = "'"
)

// Dot returns the derivative symbol for a state. The prime-suffixed name is
// the convention the discretizer rewrites; it never survives discretization.
func Dot(s *gosymbol.Sym) *gosymbol.Sym {
	return gosymbol.S(s.Name() + dotSuffix)
}

// Interval returns the time-interval symbol h.
func Interval() *gosymbol.Sym {
	return gosymbol.S(intervalName)
}

// DiscreteSymbols generates the discrete variants of the continuous state and
// specified symbols: a current ("i"-suffixed) and previous ("p"-suffixed)
// symbol per state, a current symbol per specified input, and the interval
// symbol h.
//
// Distinct base symbols whose generated names coincide (or shadow a base
// name, or the interval name) are rejected with [ErrSymbolCollision] rather
// than silently aliased.
func DiscreteSymbols(states, specified []*gosymbol.Sym) (current, previous, currentSpecified []*gosymbol.Sym, interval *gosymbol.Sym, err error) {
	seen := make(map[string]struct{}, 3*len(states)+2*len(specified)+1)
	claim := func(name string) error {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %q", ErrSymbolCollision, name)
		}
		seen[name] = struct{}{}
		return nil
	}

	if err = claim(intervalName); err != nil {
		return nil, nil, nil, nil, err
	}
	for _, s := range append(append([]*gosymbol.Sym(nil), states...), specified...) {
		if err = claim(s.Name()); err != nil {
			return nil, nil, nil, nil, err
		}
	}

	current = make([]*gosymbol.Sym, len(states))
	previous = make([]*gosymbol.Sym, len(states))
	for j, s := range states {
		if err = claim(s.Name() + currentSuffix); err != nil {
			return nil, nil, nil, nil, err
		}
		if err = claim(s.Name() + previousSuffix); err != nil {
			return nil, nil, nil, nil, err
		}
		current[j] = gosymbol.S(s.Name() + currentSuffix)
		previous[j] = gosymbol.S(s.Name() + previousSuffix)
	}

	currentSpecified = make([]*gosymbol.Sym, len(specified))
	for u, s := range specified {
		if err = claim(s.Name() + currentSuffix); err != nil {
			return nil, nil, nil, nil, err
		}
		currentSpecified[u] = gosymbol.S(s.Name() + currentSuffix)
	}

	return current, previous, currentSpecified, Interval(), nil
}

func symbolNames(syms []*gosymbol.Sym) []string {
	names := make([]string, len(syms))
	for i, s := range syms {
		names[i] = s.Name()
	}
	return names
}
