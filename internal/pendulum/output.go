package pendulum

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/suguke/gait-control-direct-id-paper/internal/collocate"
)

// OutputEquations projects a time-major state trajectory (one row per time
// step) onto the directly measured coordinates: the leading half of the
// columns. The second half holds the rates, which are not observed.
func OutputEquations(x *mat.Dense) (*mat.Dense, error) {
	rows, cols := x.Dims()
	if cols%2 != 0 {
		return nil, fmt.Errorf("%w: %d state columns cannot split into coordinates and rates",
			collocate.ErrShapeMismatch, cols)
	}
	return mat.DenseCopyOf(x.Slice(0, rows, 0, cols/2)), nil
}

// ObjectiveFunction scores a candidate free vector against measured
// coordinates: h times the summed squared deviation of the model's observed
// outputs. The leading steps*states entries of free are the state trajectory
// in time-major order (all states at step 0, then step 1, ...); trailing
// entries are parameters and do not enter the cost.
func ObjectiveFunction(free []float64, steps, states int, interval float64, measured *mat.Dense) (float64, error) {
	model, observed, err := checkObjectiveArgs(free, steps, states, interval, measured)
	if err != nil {
		return 0, err
	}

	cost := 0.0
	for i := 0; i < steps; i++ {
		for j := 0; j < observed; j++ {
			d := model.At(i, j) - measured.At(i, j)
			cost += d * d
		}
	}
	return interval * cost, nil
}

// ObjectiveGradient returns the analytic gradient of ObjectiveFunction over
// the whole free vector. Entries for unobserved states and trailing
// parameters are zero.
func ObjectiveGradient(free []float64, steps, states int, interval float64, measured *mat.Dense) ([]float64, error) {
	model, observed, err := checkObjectiveArgs(free, steps, states, interval, measured)
	if err != nil {
		return nil, err
	}

	grad := make([]float64, len(free))
	for i := 0; i < steps; i++ {
		for j := 0; j < observed; j++ {
			grad[i*states+j] = 2 * interval * (model.At(i, j) - measured.At(i, j))
		}
	}
	return grad, nil
}

func checkObjectiveArgs(free []float64, steps, states int, interval float64, measured *mat.Dense) (*mat.Dense, int, error) {
	if states%2 != 0 {
		return nil, 0, fmt.Errorf("%w: %d state columns cannot split into coordinates and rates",
			collocate.ErrShapeMismatch, states)
	}
	if len(free) < steps*states {
		return nil, 0, fmt.Errorf("%w: free vector has %d values, trajectory block needs %d",
			collocate.ErrShapeMismatch, len(free), steps*states)
	}
	if interval <= 0 {
		return nil, 0, fmt.Errorf("pendulum: interval must be positive, got %f", interval)
	}

	observed := states / 2
	mr, mc := measured.Dims()
	if mr != steps || mc != observed {
		return nil, 0, fmt.Errorf("%w: measurements are %dx%d, expected %dx%d",
			collocate.ErrShapeMismatch, mr, mc, steps, observed)
	}

	model := mat.NewDense(steps, states, free[:steps*states])
	return model, observed, nil
}
