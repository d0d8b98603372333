package pendulum

import (
	"math"

	"github.com/suguke/gait-control-direct-id-paper/internal/sim"
)

type CartPole struct {
	CartMass   float64
	PoleMass   float64
	PoleLength float64
	Gravity    float64
}

func NewCartPole() *CartPole {
	return &CartPole{
		CartMass:   1.0,
		PoleMass:   0.1,
		PoleLength: 0.5,
		Gravity:    9.81,
	}
}

func (c *CartPole) StateDim() int {
	return 4
}

func (c *CartPole) ControlDim() int {
	return 1
}

// Constants returns the parameter values in the symbolic declaration order:
// mc, mp, l, g.
func (c *CartPole) Constants() []float64 {
	return []float64{c.CartMass, c.PoleMass, c.PoleLength, c.Gravity}
}

// Derivative evaluates the explicit accelerations, the closed-form inverse of
// the mass-matrix equations. State layout: x, theta, v, omega, with theta
// measured from upright.
func (c *CartPole) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	theta := x[1]
	v := x[2]
	omega := x[3]

	force := 0.0
	if len(u) > 0 {
		force = u[0]
	}

	mc := c.CartMass
	mp := c.PoleMass
	l := c.PoleLength
	g := c.Gravity

	sint := math.Sin(theta)
	cost := math.Cos(theta)

	den := mc + mp*sint*sint
	vdot := (force + mp*l*omega*omega*sint - mp*g*sint*cost) / den
	omegadot := ((mc+mp)*g*sint - cost*(force+mp*l*omega*omega*sint)) / (l * den)

	return sim.State{v, omega, vdot, omegadot}
}

// Energy reports kinetic plus potential energy with the cart level as datum.
func (c *CartPole) Energy(x sim.State) float64 {
	theta := x[1]
	v := x[2]
	omega := x[3]

	mc := c.CartMass
	mp := c.PoleMass
	l := c.PoleLength
	g := c.Gravity

	cost := math.Cos(theta)

	kinetic := 0.5*(mc+mp)*v*v + mp*l*v*omega*cost + 0.5*mp*l*l*omega*omega
	potential := mp * g * l * cost
	return kinetic + potential
}
