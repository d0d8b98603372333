package store

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/suguke/gait-control-direct-id-paper/internal/sim"
)

// Document is the on-disk trajectory format. States and inputs are stored
// time-major (one row per step) so the files read naturally; the matrix
// conversions transpose to the row-per-signal orientation the constraint
// functions consume.
type Document struct {
	Model       string      `json:"model"`
	Interval    float64     `json:"interval"`
	Steps       int         `json:"steps"`
	StateNames  []string    `json:"state_names,omitempty"`
	InputNames  []string    `json:"input_names,omitempty"`
	Times       []float64   `json:"times"`
	States      [][]float64 `json:"states"`
	Inputs      [][]float64 `json:"inputs,omitempty"`
	EnergyDrift float64     `json:"energy_drift,omitempty"`
}

// FromTrajectory converts a simulated grid into its storable form.
func FromTrajectory(model string, stateNames, inputNames []string, tr *sim.Trajectory) *Document {
	n, steps := tr.States.Dims()
	q, _ := tr.Inputs.Dims()

	doc := &Document{
		Model:       model,
		Interval:    tr.Interval,
		Steps:       steps,
		StateNames:  stateNames,
		InputNames:  inputNames,
		Times:       append([]float64(nil), tr.Times...),
		States:      make([][]float64, steps),
		EnergyDrift: tr.EnergyDrift,
	}
	if q > 0 {
		doc.Inputs = make([][]float64, steps)
	}

	for i := 0; i < steps; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = tr.States.At(j, i)
		}
		doc.States[i] = row

		if q > 0 {
			urow := make([]float64, q)
			for r := 0; r < q; r++ {
				urow[r] = tr.Inputs.At(r, i)
			}
			doc.Inputs[i] = urow
		}
	}
	return doc
}

// Trajectory rebuilds the matrix form, validating the document's shape.
func (d *Document) Trajectory() (*sim.Trajectory, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	n := len(d.States[0])
	states := mat.NewDense(n, d.Steps, nil)
	for i, row := range d.States {
		for j, v := range row {
			states.Set(j, i, v)
		}
	}

	tr := &sim.Trajectory{
		States:      states,
		Times:       append([]float64(nil), d.Times...),
		Interval:    d.Interval,
		EnergyDrift: d.EnergyDrift,
	}

	if len(d.Inputs) > 0 {
		q := len(d.Inputs[0])
		inputs := mat.NewDense(q, d.Steps, nil)
		for i, row := range d.Inputs {
			for r, v := range row {
				inputs.Set(r, i, v)
			}
		}
		tr.Inputs = inputs
	}

	return tr, nil
}

func (d *Document) validate() error {
	if d.Steps < 1 {
		return fmt.Errorf("store: document has %d steps", d.Steps)
	}
	if len(d.States) != d.Steps {
		return fmt.Errorf("store: %d state rows for %d steps", len(d.States), d.Steps)
	}
	if len(d.Times) != d.Steps {
		return fmt.Errorf("store: %d times for %d steps", len(d.Times), d.Steps)
	}
	if d.Interval <= 0 {
		return fmt.Errorf("store: interval must be positive, got %f", d.Interval)
	}

	n := len(d.States[0])
	if n == 0 {
		return fmt.Errorf("store: empty state rows")
	}
	for i, row := range d.States {
		if len(row) != n {
			return fmt.Errorf("store: state row %d has %d values, expected %d", i, len(row), n)
		}
	}

	if len(d.Inputs) > 0 {
		if len(d.Inputs) != d.Steps {
			return fmt.Errorf("store: %d input rows for %d steps", len(d.Inputs), d.Steps)
		}
		q := len(d.Inputs[0])
		for i, row := range d.Inputs {
			if len(row) != q {
				return fmt.Errorf("store: input row %d has %d values, expected %d", i, len(row), q)
			}
		}
	}
	return nil
}

// Save writes the document as indented JSON.
func Save(path string, d *Document) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trajectory file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(d)
}

// Load reads and validates a stored trajectory document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trajectory file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse trajectory file: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}
