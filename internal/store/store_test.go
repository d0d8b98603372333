package store

import (
	"math"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/suguke/gait-control-direct-id-paper/internal/sim"
)

func sampleTrajectory() *sim.Trajectory {
	return &sim.Trajectory{
		States: mat.NewDense(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		}),
		Inputs:      mat.NewDense(1, 3, []float64{0.1, 0.2, 0.3}),
		Times:       []float64{0, 0.01, 0.02},
		Interval:    0.01,
		EnergyDrift: 0.002,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traj.json")

	doc := FromTrajectory("cartpole", []string{"x", "v"}, []string{"f"}, sampleTrajectory())
	if err := Save(path, doc); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Model != "cartpole" {
		t.Errorf("expected model 'cartpole', got %q", loaded.Model)
	}
	if loaded.Steps != 3 {
		t.Errorf("expected 3 steps, got %d", loaded.Steps)
	}
	if len(loaded.StateNames) != 2 || loaded.StateNames[0] != "x" {
		t.Errorf("state names did not survive: %v", loaded.StateNames)
	}

	tr, err := loaded.Trajectory()
	if err != nil {
		t.Fatalf("matrix conversion failed: %v", err)
	}

	want := sampleTrajectory()
	if !mat.EqualApprox(tr.States, want.States, 1e-12) {
		t.Errorf("states: expected %v, got %v", mat.Formatted(want.States), mat.Formatted(tr.States))
	}
	if !mat.EqualApprox(tr.Inputs, want.Inputs, 1e-12) {
		t.Errorf("inputs: expected %v, got %v", mat.Formatted(want.Inputs), mat.Formatted(tr.Inputs))
	}
	if math.Abs(tr.EnergyDrift-0.002) > 1e-15 {
		t.Errorf("expected energy drift 0.002, got %f", tr.EnergyDrift)
	}
	if tr.Interval != 0.01 {
		t.Errorf("expected interval 0.01, got %f", tr.Interval)
	}
}

func TestDocumentOrientation(t *testing.T) {
	doc := FromTrajectory("test", nil, nil, sampleTrajectory())

	// On disk rows are time steps, not signals.
	if len(doc.States) != 3 {
		t.Fatalf("expected 3 state rows, got %d", len(doc.States))
	}
	if doc.States[1][0] != 2 || doc.States[1][1] != 5 {
		t.Errorf("step 1 row should be [2 5], got %v", doc.States[1])
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDocumentValidation(t *testing.T) {
	base := func() *Document {
		return FromTrajectory("test", nil, nil, sampleTrajectory())
	}

	tests := []struct {
		name   string
		mutate func(*Document)
	}{
		{"steps mismatch", func(d *Document) { d.Steps = 5 }},
		{"times mismatch", func(d *Document) { d.Times = d.Times[:2] }},
		{"ragged states", func(d *Document) { d.States[1] = []float64{1} }},
		{"ragged inputs", func(d *Document) { d.Inputs[2] = []float64{} }},
		{"bad interval", func(d *Document) { d.Interval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := base()
			tt.mutate(doc)
			if _, err := doc.Trajectory(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
