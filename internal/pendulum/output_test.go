package pendulum

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/suguke/gait-control-direct-id-paper/internal/collocate"
)

func TestOutputEquations(t *testing.T) {
	// Four states (cols) over five time steps (rows).
	x := mat.NewDense(5, 4, []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
		17, 18, 19, 20,
	})

	y, err := OutputEquations(x)
	if err != nil {
		t.Fatalf("projection failed: %v", err)
	}

	expected := mat.NewDense(5, 2, []float64{
		1, 2,
		5, 6,
		9, 10,
		13, 14,
		17, 18,
	})
	if !mat.EqualApprox(y, expected, 1e-12) {
		t.Errorf("expected %v, got %v", mat.Formatted(expected), mat.Formatted(y))
	}
}

func TestOutputEquationsOddColumns(t *testing.T) {
	x := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	_, err := OutputEquations(x)
	if !errors.Is(err, collocate.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestOutputEquationsLeavesInputAlone(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	y, err := OutputEquations(x)
	if err != nil {
		t.Fatalf("projection failed: %v", err)
	}

	y.Set(0, 0, 99)
	if x.At(0, 0) != 1 {
		t.Error("projection shares backing storage with its input")
	}
}

func TestObjectiveFunctionZeroAtExactMatch(t *testing.T) {
	steps, states := 5, 4
	h := 0.01

	measured := mat.NewDense(steps, 2, []float64{
		0.11, 0.21,
		0.12, 0.19,
		0.14, 0.18,
		0.17, 0.16,
		0.21, 0.13,
	})

	// Model trajectory whose observed columns equal the measurements.
	free := make([]float64, steps*states+3)
	for i := 0; i < steps; i++ {
		free[i*states] = measured.At(i, 0)
		free[i*states+1] = measured.At(i, 1)
		free[i*states+2] = float64(i) * 0.5
		free[i*states+3] = float64(i) * -0.25
	}
	free[steps*states] = 1.0
	free[steps*states+1] = 0.1
	free[steps*states+2] = 0.5

	cost, err := ObjectiveFunction(free, steps, states, h, measured)
	if err != nil {
		t.Fatalf("objective failed: %v", err)
	}
	if math.Abs(cost) > 1e-15 {
		t.Errorf("expected zero cost at exact match, got %e", cost)
	}
}

func TestObjectiveFunctionKnownValue(t *testing.T) {
	measured := mat.NewDense(2, 1, []float64{1, 2})
	free := []float64{1.5, 9, 2.5, 7}

	cost, err := ObjectiveFunction(free, 2, 2, 0.1, measured)
	if err != nil {
		t.Fatalf("objective failed: %v", err)
	}

	// 0.1 * (0.5^2 + 0.5^2)
	if math.Abs(cost-0.05) > 1e-12 {
		t.Errorf("expected cost 0.05, got %f", cost)
	}
}

func TestObjectiveGradientMatchesFiniteDifference(t *testing.T) {
	steps, states := 3, 4
	h := 0.01

	measured := mat.NewDense(steps, 2, []float64{
		0.1, 0.4,
		0.2, 0.5,
		0.3, 0.6,
	})
	free := []float64{
		0.15, 0.35, 1.0, -1.0,
		0.25, 0.55, 0.5, -0.5,
		0.28, 0.62, 0.1, -0.1,
		2.0, 0.3,
	}

	grad, err := ObjectiveGradient(free, steps, states, h, measured)
	if err != nil {
		t.Fatalf("gradient failed: %v", err)
	}
	if len(grad) != len(free) {
		t.Fatalf("expected gradient length %d, got %d", len(free), len(grad))
	}

	base, err := ObjectiveFunction(free, steps, states, h, measured)
	if err != nil {
		t.Fatalf("objective failed: %v", err)
	}

	const eps = 1e-7
	for i := range free {
		pert := append([]float64(nil), free...)
		pert[i] += eps
		cost, err := ObjectiveFunction(pert, steps, states, h, measured)
		if err != nil {
			t.Fatalf("perturbed objective failed: %v", err)
		}
		fd := (cost - base) / eps
		if math.Abs(fd-grad[i]) > 1e-6 {
			t.Errorf("gradient %d: finite difference %e, analytic %e", i, fd, grad[i])
		}
	}

	// Rates and parameters never enter the cost.
	for i := 0; i < steps; i++ {
		if grad[i*states+2] != 0 || grad[i*states+3] != 0 {
			t.Errorf("step %d: expected zero gradient for unobserved states", i)
		}
	}
	if grad[steps*states] != 0 || grad[steps*states+1] != 0 {
		t.Error("expected zero gradient for trailing parameters")
	}
}

func TestObjectiveValidation(t *testing.T) {
	measured := mat.NewDense(2, 1, []float64{1, 2})

	tests := []struct {
		name     string
		free     []float64
		steps    int
		states   int
		interval float64
	}{
		{"short free vector", []float64{1, 2}, 2, 2, 0.1},
		{"odd state count", []float64{1, 2, 3, 4, 5, 6}, 2, 3, 0.1},
		{"measurement shape", []float64{1, 2, 3, 4, 5, 6}, 3, 2, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ObjectiveFunction(tt.free, tt.steps, tt.states, tt.interval, measured)
			if !errors.Is(err, collocate.ErrShapeMismatch) {
				t.Errorf("expected ErrShapeMismatch, got %v", err)
			}
		})
	}

	t.Run("bad interval", func(t *testing.T) {
		if _, err := ObjectiveFunction([]float64{1, 2, 3, 4}, 2, 2, 0, measured); err == nil {
			t.Error("expected error for zero interval")
		}
	})
}
