// Package collocate builds direct-collocation constraint functions from
// symbolic equations of motion.
//
// The pipeline turns a continuous implicit system M(x)·x' = F(x, u) into
// algebraic constraints between adjacent points of a time grid:
//
//   - [FMinusMA]: assemble the implicit equation vector M(x)·x' − F
//   - [DiscreteSymbols]: current/previous discrete variants of each symbol
//   - [Discretize]: backward-Euler rewrite of the equation vector
//   - [GeneralConstraint]: compiled residual function over a full trajectory
//   - [GeneralConstraintJacobian]: compiled sparse Jacobian of the residuals
//   - [FreeLayout], [WrapConstraint], [WrapJacobian]: flat free-variable
//     calling convention for an external NLP solver
//
// # Example
//
//	eoms, _ := collocate.FMinusMA(mass, forcing, states)
//	disc, _ := collocate.Discretize(eoms, states, specified, collocate.Interval())
//	constrain, _ := collocate.GeneralConstraint(disc, states, specified, constants)
//	res, _ := constrain(stateTraj, inputTraj, constVals, 0.01)
//
// The symbolic work happens once inside the generator; the returned closures
// run plain float64 loops and may be called once per solver iteration at
// negligible cost.
package collocate
