package collocate

import (
	"fmt"

	"github.com/njchilds90/gosymbol"
	"gonum.org/v1/gonum/mat"
)

// Segment names one contiguous run of the free-variable vector.
type Segment struct {
	Name   string
	Offset int
	Len    int
}

// FreeLayout is the packing contract between an external optimizer's flat
// free-variable vector and the separated trajectory arguments the generated
// constraint functions expect. The vector is: every state trajectory
// (row-major, time fastest), then each unknown specified trajectory in
// declaration order, then each unknown constant in declaration order.
//
// Which specified inputs and constants are unknown is decided once, at
// construction, by membership in the fixed-value maps.
type FreeLayout struct {
	steps    int
	interval float64

	states    []string
	specified []string
	constants []string

	unknownSpecified []string
	unknownConstants []string

	fixedSpecified map[string][]float64
	fixedConstants map[string]float64
}

// NewFreeLayout validates and fixes the free/fixed partition. Fixed names
// must exist in the declared lists and fixed specified trajectories must
// cover every time step.
func NewFreeLayout(states, specified, constants []*gosymbol.Sym, steps int, interval float64,
	fixedConstants map[string]float64, fixedSpecified map[string][]float64) (*FreeLayout, error) {

	if steps < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientTimeSteps, steps)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("collocate: interval must be positive, got %f", interval)
	}

	l := &FreeLayout{
		steps:          steps,
		interval:       interval,
		states:         symbolNames(states),
		specified:      symbolNames(specified),
		constants:      symbolNames(constants),
		fixedSpecified: make(map[string][]float64, len(fixedSpecified)),
		fixedConstants: make(map[string]float64, len(fixedConstants)),
	}

	declaredSpec := make(map[string]struct{}, len(l.specified))
	for _, name := range l.specified {
		declaredSpec[name] = struct{}{}
	}
	for name, traj := range fixedSpecified {
		if _, ok := declaredSpec[name]; !ok {
			return nil, fmt.Errorf("%w: fixed specified %q not declared", ErrUnknownSymbol, name)
		}
		if len(traj) != steps {
			return nil, fmt.Errorf("%w: fixed trajectory for %q has %d values for %d steps",
				ErrShapeMismatch, name, len(traj), steps)
		}
		l.fixedSpecified[name] = append([]float64(nil), traj...)
	}

	declaredConst := make(map[string]struct{}, len(l.constants))
	for _, name := range l.constants {
		declaredConst[name] = struct{}{}
	}
	for name, v := range fixedConstants {
		if _, ok := declaredConst[name]; !ok {
			return nil, fmt.Errorf("%w: fixed constant %q not declared", ErrUnknownSymbol, name)
		}
		l.fixedConstants[name] = v
	}

	for _, name := range l.specified {
		if _, ok := l.fixedSpecified[name]; !ok {
			l.unknownSpecified = append(l.unknownSpecified, name)
		}
	}
	for _, name := range l.constants {
		if _, ok := l.fixedConstants[name]; !ok {
			l.unknownConstants = append(l.unknownConstants, name)
		}
	}

	return l, nil
}

// Steps returns the number of time steps M.
func (l *FreeLayout) Steps() int { return l.steps }

// Interval returns the uniform grid spacing h.
func (l *FreeLayout) Interval() float64 { return l.interval }

// NumStates returns the state dimension n.
func (l *FreeLayout) NumStates() int { return len(l.states) }

// UnknownSpecified returns the names of the optimized specified inputs, in
// declaration order.
func (l *FreeLayout) UnknownSpecified() []string {
	return append([]string(nil), l.unknownSpecified...)
}

// UnknownConstants returns the names of the optimized constants, in
// declaration order.
func (l *FreeLayout) UnknownConstants() []string {
	return append([]string(nil), l.unknownConstants...)
}

// Len returns the free-variable vector length.
func (l *FreeLayout) Len() int {
	return len(l.states)*l.steps + len(l.unknownSpecified)*l.steps + len(l.unknownConstants)
}

// Segments describes the vector layout as named runs, making the packing
// order machine-checkable for callers.
func (l *FreeLayout) Segments() []Segment {
	segs := make([]Segment, 0, len(l.states)+len(l.unknownSpecified)+len(l.unknownConstants))
	off := 0
	for _, name := range l.states {
		segs = append(segs, Segment{Name: name, Offset: off, Len: l.steps})
		off += l.steps
	}
	for _, name := range l.unknownSpecified {
		segs = append(segs, Segment{Name: name, Offset: off, Len: l.steps})
		off += l.steps
	}
	for _, name := range l.unknownConstants {
		segs = append(segs, Segment{Name: name, Offset: off, Len: 1})
		off++
	}
	return segs
}

// Split reconstructs the separated constraint arguments from a flat free
// vector, merging fixed specified trajectories and fixed constants back in
// at their declared positions.
func (l *FreeLayout) Split(free []float64) (states, specified *mat.Dense, constants []float64, err error) {
	if len(free) != l.Len() {
		return nil, nil, nil, fmt.Errorf("%w: free vector has %d values, layout needs %d",
			ErrShapeMismatch, len(free), l.Len())
	}

	n := len(l.states)
	states = mat.NewDense(n, l.steps, append([]float64(nil), free[:n*l.steps]...))
	off := n * l.steps

	if len(l.specified) > 0 {
		specified = mat.NewDense(len(l.specified), l.steps, nil)
		for u, name := range l.specified {
			if traj, ok := l.fixedSpecified[name]; ok {
				specified.SetRow(u, traj)
				continue
			}
			specified.SetRow(u, free[off:off+l.steps])
			off += l.steps
		}
	}

	constants = make([]float64, len(l.constants))
	for c, name := range l.constants {
		if v, ok := l.fixedConstants[name]; ok {
			constants[c] = v
			continue
		}
		constants[c] = free[off]
		off++
	}

	return states, specified, constants, nil
}
