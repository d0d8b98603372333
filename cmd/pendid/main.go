package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/njchilds90/gosymbol"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/suguke/gait-control-direct-id-paper/internal/collocate"
	"github.com/suguke/gait-control-direct-id-paper/internal/config"
	"github.com/suguke/gait-control-direct-id-paper/internal/pendulum"
	"github.com/suguke/gait-control-direct-id-paper/internal/sim"
	"github.com/suguke/gait-control-direct-id-paper/internal/store"
	"github.com/suguke/gait-control-direct-id-paper/internal/tui"
	"github.com/suguke/gait-control-direct-id-paper/internal/viz"
)

var (
	configFile string
	preset     string
	// Scenario overrides
	steps     int
	dt        float64
	theta     float64
	amplitude float64
	frequency float64
	identify  []string
	// Equation rendering
	latexOut    bool
	discreteOut bool
	// Residual display
	tolerance float64
	jsonOut   bool
	// Sparsity grid
	gridWidth  int
	gridHeight int
)

// main registers the pendid commands and executes the root command, exiting
// with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "pendid",
		Short: "cart-pendulum parameter identification by direct collocation",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	eomsCmd := &cobra.Command{
		Use:   "eoms",
		Short: "print the equations of motion",
		RunE:  showEOMs,
	}
	eomsCmd.Flags().BoolVar(&latexOut, "latex", false, "render as latex")
	eomsCmd.Flags().BoolVar(&discreteOut, "discrete", false, "backward-difference form on the collocation grid")

	simulateCmd := &cobra.Command{
		Use:   "simulate [output.json]",
		Short: "roll out the cart-pendulum under a sinusoidal push",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulate,
	}
	simulateCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of grid nodes")
	simulateCmd.Flags().Float64Var(&dt, "dt", config.DefaultInterval, "grid spacing")
	simulateCmd.Flags().Float64Var(&theta, "theta", config.DefaultTheta, "initial pole angle")
	simulateCmd.Flags().Float64Var(&amplitude, "amplitude", config.DefaultAmplitude, "force amplitude")
	simulateCmd.Flags().Float64Var(&frequency, "frequency", config.DefaultFrequency, "force frequency (hz)")

	layoutCmd := &cobra.Command{
		Use:   "layout [trajectory.json]",
		Short: "show the free-vector layout seen by the optimizer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showLayout,
	}
	layoutCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of grid nodes")
	layoutCmd.Flags().Float64Var(&dt, "dt", config.DefaultInterval, "grid spacing")
	layoutCmd.Flags().StringSliceVar(&identify, "identify", nil, "constants to identify")

	residualsCmd := &cobra.Command{
		Use:   "residuals [trajectory.json]",
		Short: "evaluate collocation residuals along a trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  showResiduals,
	}
	residualsCmd.Flags().Float64Var(&tolerance, "tol", 1e-8, "residual tolerance")
	residualsCmd.Flags().BoolVar(&jsonOut, "json", false, "write residuals as json to stdout")

	jacobianCmd := &cobra.Command{
		Use:   "jacobian [trajectory.json]",
		Short: "show the constraint jacobian sparsity",
		Args:  cobra.ExactArgs(1),
		RunE:  showJacobian,
	}
	jacobianCmd.Flags().StringSliceVar(&identify, "identify", nil, "constants to identify")
	jacobianCmd.Flags().IntVar(&gridWidth, "width", 72, "sparsity grid width")
	jacobianCmd.Flags().IntVar(&gridHeight, "height", 18, "sparsity grid height")

	exploreCmd := &cobra.Command{
		Use:   "explore [trajectory.json]",
		Short: "inspect residuals and jacobian rows interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  runExplore,
	}
	exploreCmd.Flags().StringSliceVar(&identify, "identify", nil, "constants to identify")
	exploreCmd.Flags().Float64Var(&tolerance, "tol", 1e-8, "residual tolerance")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage configuration files",
	}

	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "pendid.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := activeConfig(cmd)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
	configCmd.AddCommand(configInitCmd, configShowCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(eomsCmd, simulateCmd, layoutCmd, residualsCmd, jacobianCmd, exploreCmd, configCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// activeConfig merges preset, config file and command-line flags in that
// order. Flags only override when set explicitly.
func activeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("dt") {
		cfg.Interval = dt
	}
	if cmd.Flags().Changed("theta") {
		cfg.InitState.Theta = theta
	}
	if cmd.Flags().Changed("amplitude") {
		cfg.Force.Amplitude = amplitude
	}
	if cmd.Flags().Changed("frequency") {
		cfg.Force.Frequency = frequency
	}
	if cmd.Flags().Changed("identify") {
		cfg.Identify = identify
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func cartFromConfig(cfg *config.Config) *pendulum.CartPole {
	return &pendulum.CartPole{
		CartMass:   cfg.Cart.CartMass,
		PoleMass:   cfg.Cart.PoleMass,
		PoleLength: cfg.Cart.PoleLength,
		Gravity:    cfg.Cart.Gravity,
	}
}

func loadTrajectory(path string) (*store.Document, *sim.Trajectory, error) {
	doc, err := store.Load(path)
	if err != nil {
		return nil, nil, err
	}
	tr, err := doc.Trajectory()
	if err != nil {
		return nil, nil, err
	}
	return doc, tr, nil
}

// identifySymbols resolves constant names from the config against the
// declared symbolic constants, preserving the requested order.
func identifySymbols(sym *pendulum.Symbolic, names []string) ([]*gosymbol.Sym, error) {
	byName := make(map[string]*gosymbol.Sym, len(sym.Constants))
	declared := make([]string, len(sym.Constants))
	for i, c := range sym.Constants {
		byName[c.Name()] = c
		declared[i] = c.Name()
	}

	out := make([]*gosymbol.Sym, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown constant: %s (available: %v)", name, declared)
		}
		out = append(out, s)
	}
	return out, nil
}

func showEOMs(cmd *cobra.Command, args []string) error {
	sym := pendulum.NewSymbolic()

	eoms, err := sym.ImplicitEOM()
	if err != nil {
		return err
	}
	if discreteOut {
		eoms, err = sym.Discretized()
		if err != nil {
			return err
		}
	}

	fmt.Println(viz.Title.Render("cart-pendulum equations of motion"))
	if discreteOut {
		fmt.Println(viz.Subtle.Render("backward difference on the collocation grid, residual form"))
	} else {
		fmt.Println(viz.Subtle.Render("implicit residual form M(x) x' - F(x, u)"))
	}
	fmt.Println()

	for i := 0; i < eoms.Rows(); i++ {
		expr := eoms.Get(i, 0)
		if latexOut {
			fmt.Printf("%s = 0 \\\\\n", gosymbol.LaTeX(expr))
		} else {
			fmt.Printf("%-8s %s = 0\n", sym.States[i].Name()+":", gosymbol.String(expr))
		}
	}
	return nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := activeConfig(cmd)
	if err != nil {
		return err
	}

	out := "trajectory.json"
	if len(args) > 0 {
		out = args[0]
	}

	cart := cartFromConfig(cfg)

	inputs := mat.NewDense(1, cfg.Steps, nil)
	for i := 0; i < cfg.Steps; i++ {
		t := float64(i) * cfg.Interval
		inputs.Set(0, i, cfg.Force.Amplitude*math.Sin(2*math.Pi*cfg.Force.Frequency*t))
	}

	fmt.Printf("rolling out %d nodes at dt=%g...\n", cfg.Steps, cfg.Interval)
	start := time.Now()

	tr, err := sim.Rollout(context.Background(), cart, cfg.InitialState(), inputs, cfg.Interval, sim.DefaultOptions())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	doc := store.FromTrajectory("cartpole", []string{"x", "theta", "v", "omega"}, []string{"f"}, tr)
	if err := store.Save(out, doc); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("wrote %s\n", out)
	fmt.Printf("energy drift: %.2e\n\n", tr.EnergyDrift)

	captions := []string{"cart position", "pole angle", "cart velocity", "pole angular velocity"}
	for j := 0; j < len(captions); j++ {
		data := mat.Row(nil, j, tr.States)
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(captions[j]),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func showLayout(cmd *cobra.Command, args []string) error {
	cfg, err := activeConfig(cmd)
	if err != nil {
		return err
	}

	sym := pendulum.NewSymbolic()

	gridSteps := cfg.Steps
	interval := cfg.Interval
	fixedSpecified := map[string][]float64{}
	if len(args) > 0 {
		doc, tr, err := loadTrajectory(args[0])
		if err != nil {
			return err
		}
		if tr.Inputs == nil {
			return fmt.Errorf("trajectory %s has no input records", args[0])
		}
		gridSteps = doc.Steps
		interval = doc.Interval
		fixedSpecified["f"] = mat.Row(nil, 0, tr.Inputs)
	}

	layout, err := collocate.NewFreeLayout(sym.States, sym.Specified, sym.Constants,
		gridSteps, interval, cfg.FixedConstants(), fixedSpecified)
	if err != nil {
		return err
	}

	n := layout.NumStates()
	fmt.Printf("grid: %d nodes, spacing %g s\n", gridSteps, interval)
	fmt.Printf("free vector: %d entries\n", layout.Len())
	fmt.Printf("residuals: %d (%d equations x %d intervals)\n\n", n*(gridSteps-1), n, gridSteps-1)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEGMENT\tOFFSET\tLEN")
	for _, seg := range layout.Segments() {
		fmt.Fprintf(w, "%s\t%d\t%d\n", seg.Name, seg.Offset, seg.Len)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nfixed:")
	fixed := cfg.FixedConstants()
	for _, c := range sym.Constants {
		if v, ok := fixed[c.Name()]; ok {
			fmt.Printf("  %s = %g\n", c.Name(), v)
		}
	}
	if len(args) > 0 {
		fmt.Printf("  f: trajectory from %s\n", args[0])
	} else {
		fmt.Println("  f: none (force is part of the free vector)")
	}

	return nil
}

func showResiduals(cmd *cobra.Command, args []string) error {
	cfg, err := activeConfig(cmd)
	if err != nil {
		return err
	}

	doc, tr, err := loadTrajectory(args[0])
	if err != nil {
		return err
	}

	sym := pendulum.NewSymbolic()
	disc, err := sym.Discretized()
	if err != nil {
		return err
	}
	fn, err := collocate.GeneralConstraint(disc, sym.States, sym.Specified, sym.Constants)
	if err != nil {
		return err
	}

	cart := cartFromConfig(cfg)
	residuals, err := fn(tr.States, tr.Inputs, cart.Constants(), doc.Interval)
	if err != nil {
		return err
	}

	maxAbs, rms := viz.ResidualStats(residuals)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Trajectory string    `json:"trajectory"`
			Max        float64   `json:"max"`
			RMS        float64   `json:"rms"`
			Residuals  []float64 `json:"residuals"`
		}{args[0], maxAbs, rms, residuals})
	}

	n := len(sym.States)
	intervals := doc.Steps - 1

	names := doc.StateNames
	if len(names) != n {
		names = make([]string, n)
		for i, s := range sym.States {
			names[i] = s.Name()
		}
	}

	fmt.Printf("trajectory: %s (%d nodes, dt=%g)\n", args[0], doc.Steps, doc.Interval)
	fmt.Printf("residuals: %d\n", len(residuals))
	fmt.Printf("max |r|: %s\n", viz.FormatResidual(maxAbs, tolerance))
	fmt.Printf("rms:     %s\n\n", viz.FormatResidual(rms, tolerance))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EQUATION\tKIND\tMAX\tRMS")
	for r := 0; r < n; r++ {
		kind := "kinematic"
		if r >= n/2 {
			kind = "dynamic"
		}
		rowMax, rowRMS := viz.ResidualStats(residuals[r*intervals : (r+1)*intervals])
		fmt.Fprintf(w, "%s\t%s\t% .3e\t% .3e\n", names[r], kind, rowMax, rowRMS)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	for r := 0; r < n; r++ {
		graph := asciigraph.Plot(residuals[r*intervals:(r+1)*intervals],
			asciigraph.Height(8),
			asciigraph.Width(72),
			asciigraph.Caption(fmt.Sprintf("%s equation residual", names[r])),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func showJacobian(cmd *cobra.Command, args []string) error {
	cfg, err := activeConfig(cmd)
	if err != nil {
		return err
	}

	doc, tr, err := loadTrajectory(args[0])
	if err != nil {
		return err
	}

	sym := pendulum.NewSymbolic()
	disc, err := sym.Discretized()
	if err != nil {
		return err
	}
	free, err := identifySymbols(sym, cfg.Identify)
	if err != nil {
		return err
	}
	jacFn, err := collocate.GeneralConstraintJacobian(disc, sym.States, sym.Specified, sym.Constants, free)
	if err != nil {
		return err
	}

	cart := cartFromConfig(cfg)
	jac, err := jacFn(tr.States, tr.Inputs, cart.Constants(), doc.Interval)
	if err != nil {
		return err
	}

	rows, cols := jac.Dims()
	nnz := 0
	jac.DoNonZero(func(i, j int, v float64) { nnz++ })

	n := len(sym.States)
	q := len(sym.Specified)

	fmt.Printf("jacobian: %d x %d\n", rows, cols)
	fmt.Printf("nonzeros: %d (%.2f%% dense)\n", nnz, 100*float64(nnz)/float64(rows*cols))
	fmt.Printf("columns: %d state + %d specified + %d constant\n\n", n*doc.Steps, q*doc.Steps, len(free))

	fmt.Println(viz.Sparsity(jac, gridWidth, gridHeight))
	return nil
}

func runExplore(cmd *cobra.Command, args []string) error {
	cfg, err := activeConfig(cmd)
	if err != nil {
		return err
	}

	doc, tr, err := loadTrajectory(args[0])
	if err != nil {
		return err
	}

	sym := pendulum.NewSymbolic()
	disc, err := sym.Discretized()
	if err != nil {
		return err
	}
	fn, err := collocate.GeneralConstraint(disc, sym.States, sym.Specified, sym.Constants)
	if err != nil {
		return err
	}
	free, err := identifySymbols(sym, cfg.Identify)
	if err != nil {
		return err
	}
	jacFn, err := collocate.GeneralConstraintJacobian(disc, sym.States, sym.Specified, sym.Constants, free)
	if err != nil {
		return err
	}

	cart := cartFromConfig(cfg)
	residuals, err := fn(tr.States, tr.Inputs, cart.Constants(), doc.Interval)
	if err != nil {
		return err
	}
	jac, err := jacFn(tr.States, tr.Inputs, cart.Constants(), doc.Interval)
	if err != nil {
		return err
	}

	stateNames := doc.StateNames
	if len(stateNames) != len(sym.States) {
		stateNames = make([]string, len(sym.States))
		for i, s := range sym.States {
			stateNames[i] = s.Name()
		}
	}
	inputNames := doc.InputNames
	if len(inputNames) != len(sym.Specified) {
		inputNames = make([]string, len(sym.Specified))
		for u, s := range sym.Specified {
			inputNames[u] = s.Name()
		}
	}

	return tui.Run(tui.ExplorerData{
		StateNames:    stateNames,
		InputNames:    inputNames,
		FreeConstants: cfg.Identify,
		States:        tr.States,
		Inputs:        tr.Inputs,
		Interval:      doc.Interval,
		Residuals:     residuals,
		Jacobian:      jac,
		Tolerance:     tolerance,
	})
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := config.ListPresets()
	if len(names) == 0 {
		fmt.Println("no presets")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTEPS\tDT\tTHETA\tIDENTIFY")
	for _, name := range names {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%g\t%.2f\t%s\n",
			name, cfg.Steps, cfg.Interval, cfg.InitState.Theta, strings.Join(cfg.Identify, ","))
	}
	return w.Flush()
}
