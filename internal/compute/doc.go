// Package compute turns symbolic expressions into fast numeric evaluators.
//
// The symbolic layers build equation vectors once; everything downstream
// evaluates them thousands of times per optimizer iteration. Compile walks a
// [gosymbol.Expr] tree a single time and produces a flat closure over a value
// slot array, so repeated evaluation costs no symbolic work at all:
//
//	prog, err := compute.Compile(exprs, []string{"xi", "xp", "h"})
//	...
//	vals := []float64{2.0, 1.0, 0.01}
//	r := prog.Eval(0, vals)
//
// Variable names resolve to slot indices at compile time. A symbol that is
// not in the variable list is a compile error, not a silent zero.
package compute
