package collocate_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/njchilds90/gosymbol"
	"gonum.org/v1/gonum/mat"

	"github.com/suguke/gait-control-direct-id-paper/internal/collocate"
)

// The specs below walk a damped spring-mass system through the whole
// identification pipeline: continuous equations of motion, backward Euler
// discretization, residual and Jacobian generation, and the flat-vector
// adapters an optimizer calls.
var _ = Describe("Identification pipeline", func() {
	var (
		states    []*gosymbol.Sym
		specified []*gosymbol.Sym
		constants []*gosymbol.Sym
		eoms      *gosymbol.Matrix
	)

	BeforeEach(func() {
		states = []*gosymbol.Sym{gosymbol.S("x"), gosymbol.S("v")}
		specified = []*gosymbol.Sym{gosymbol.S("f")}
		constants = []*gosymbol.Sym{gosymbol.S("m"), gosymbol.S("c"), gosymbol.S("k")}

		// m v' + c v + k x = f, rendered as mass matrix and forcing vector.
		mass := gosymbol.MatrixFromSlice(2, 2, []gosymbol.Expr{
			gosymbol.N(1), gosymbol.N(0),
			gosymbol.N(0), gosymbol.S("m"),
		})
		forcing := gosymbol.MatrixFromSlice(2, 1, []gosymbol.Expr{
			gosymbol.S("v"),
			gosymbol.AddOf(
				gosymbol.S("f"),
				gosymbol.MulOf(gosymbol.N(-1), gosymbol.S("c"), gosymbol.S("v")),
				gosymbol.MulOf(gosymbol.N(-1), gosymbol.S("k"), gosymbol.S("x")),
			),
		})

		implicit, err := collocate.FMinusMA(mass, forcing, states)
		Expect(err).NotTo(HaveOccurred())

		current, _, _, interval, err := collocate.DiscreteSymbols(states, specified)
		Expect(err).NotTo(HaveOccurred())
		Expect(current).To(HaveLen(2))

		eoms, err = collocate.Discretize(implicit, states, specified, interval)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("discretization", func() {
		It("replaces every continuous symbol with grid samples", func() {
			names := map[string]struct{}{}
			for r := 0; r < 2; r++ {
				for name := range gosymbol.FreeSymbols(eoms.Get(r, 0)) {
					names[name] = struct{}{}
				}
			}
			Expect(names).To(HaveKey("xi"))
			Expect(names).To(HaveKey("xp"))
			Expect(names).To(HaveKey("vi"))
			Expect(names).To(HaveKey("vp"))
			Expect(names).To(HaveKey("fi"))
			Expect(names).To(HaveKey("h"))
			Expect(names).NotTo(HaveKey("x"))
			Expect(names).NotTo(HaveKey("v"))
			Expect(names).NotTo(HaveKey("f"))
			Expect(names).NotTo(HaveKey("x'"))
			Expect(names).NotTo(HaveKey("v'"))
		})
	})

	Describe("constraint evaluation", func() {
		var (
			stateVals *mat.Dense
			forceVals *mat.Dense
			params    []float64
		)

		BeforeEach(func() {
			stateVals = mat.NewDense(2, 4, []float64{
				1, 2, 3, 4,
				5, 6, 7, 8,
			})
			forceVals = mat.NewDense(1, 4, []float64{2, 2, 2, 2})
			params = []float64{1, 2, 3}
		})

		It("reproduces the hand-computed residuals in block order", func() {
			constrain, err := collocate.GeneralConstraint(eoms, states, specified, constants)
			Expect(err).NotTo(HaveOccurred())

			result, err := constrain(stateVals, forceVals, params, 0.01)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveLen(6))

			expected := []float64{94, 93, 92, 116, 121, 126}
			for i, want := range expected {
				Expect(result[i]).To(BeNumerically("~", want, 1e-9))
			}
		})

		It("rejects a single-sample trajectory", func() {
			constrain, err := collocate.GeneralConstraint(eoms, states, specified, constants)
			Expect(err).NotTo(HaveOccurred())

			_, err = constrain(mat.NewDense(2, 1, []float64{1, 5}),
				mat.NewDense(1, 1, []float64{2}), params, 0.01)
			Expect(err).To(MatchError(collocate.ErrInsufficientTimeSteps))
		})

		It("produces a Jacobian with the banded collocation structure", func() {
			jacobian, err := collocate.GeneralConstraintJacobian(eoms, states, specified, constants,
				[]*gosymbol.Sym{gosymbol.S("k")})
			Expect(err).NotTo(HaveOccurred())

			result, err := jacobian(stateVals, forceVals, params, 0.01)
			Expect(err).NotTo(HaveOccurred())

			rows, cols := result.Dims()
			Expect(rows).To(Equal(6))
			Expect(cols).To(Equal(13))

			dense := result.ToDense()
			// First kinematic residual: (x2-x1)/h - v2.
			Expect(dense.At(0, 0)).To(BeNumerically("~", -100, 1e-9))
			Expect(dense.At(0, 1)).To(BeNumerically("~", 100, 1e-9))
			Expect(dense.At(0, 5)).To(BeNumerically("~", -1, 1e-9))
			// First dynamic residual: m(v2-v1)/h + c v2 + k x2 - f2.
			Expect(dense.At(3, 1)).To(BeNumerically("~", 3, 1e-9))
			Expect(dense.At(3, 4)).To(BeNumerically("~", -100, 1e-9))
			Expect(dense.At(3, 5)).To(BeNumerically("~", 102, 1e-9))
			Expect(dense.At(3, 9)).To(BeNumerically("~", -1, 1e-9))
			Expect(dense.At(3, 12)).To(BeNumerically("~", 2, 1e-9))
		})
	})

	Describe("free-vector wrapping", func() {
		var layout *collocate.FreeLayout

		BeforeEach(func() {
			var err error
			layout, err = collocate.NewFreeLayout(states, specified, constants, 4, 0.01,
				map[string]float64{"m": 1, "c": 2},
				map[string][]float64{"f": {2, 2, 2, 2}})
			Expect(err).NotTo(HaveOccurred())
			Expect(layout.Len()).To(Equal(9))
		})

		It("agrees with the unwrapped constraint", func() {
			constrain, err := collocate.GeneralConstraint(eoms, states, specified, constants)
			Expect(err).NotTo(HaveOccurred())

			wrapped := collocate.WrapConstraint(constrain, layout)
			result, err := wrapped([]float64{1, 2, 3, 4, 5, 6, 7, 8, 3.0})
			Expect(err).NotTo(HaveOccurred())

			expected := []float64{94, 93, 92, 116, 121, 126}
			for i, want := range expected {
				Expect(result[i]).To(BeNumerically("~", want, 1e-9))
			}
		})

		It("drops fixed-input columns from the Jacobian", func() {
			jacobian, err := collocate.GeneralConstraintJacobian(eoms, states, specified, constants,
				[]*gosymbol.Sym{gosymbol.S("k")})
			Expect(err).NotTo(HaveOccurred())

			wrapped := collocate.WrapJacobian(jacobian, layout)
			result, err := wrapped([]float64{1, 2, 3, 4, 5, 6, 7, 8, 3.0})
			Expect(err).NotTo(HaveOccurred())

			rows, cols := result.Dims()
			Expect(rows).To(Equal(6))
			Expect(cols).To(Equal(9))

			dense := result.ToDense()
			// Stiffness sensitivities land in the last column.
			Expect(dense.At(3, 8)).To(BeNumerically("~", 2, 1e-9))
			Expect(dense.At(4, 8)).To(BeNumerically("~", 3, 1e-9))
			Expect(dense.At(5, 8)).To(BeNumerically("~", 4, 1e-9))
		})
	})
})
