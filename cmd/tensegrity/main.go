package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/san-kum/tensegrity/internal/analysis"
	"github.com/san-kum/tensegrity/internal/config"
	"github.com/san-kum/tensegrity/internal/integrator"
	"github.com/san-kum/tensegrity/internal/physics"
	"github.com/san-kum/tensegrity/internal/sim"
	"github.com/san-kum/tensegrity/internal/storage"
	"github.com/san-kum/tensegrity/internal/structure"
	"github.com/san-kum/tensegrity/internal/viz"
)

var (
	dataDir    string
	dt         float64
	steps      int
	integName  string
	parallel   bool
	driftTol   float64
	configFile string
	profileRun bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tensegrity",
		Short: "tensegrity structure dynamics lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".tensegrity", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [structure]",
		Short: "run simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().StringVar(&integName, "integrator", "verlet", "integrator (verlet, leapfrog)")
	runCmd.Flags().BoolVar(&parallel, "parallel", false, "parallel force assembly")
	runCmd.Flags().Float64Var(&driftTol, "drift-tol", 0, "energy drift tolerance (0 disables)")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	liveCmd := &cobra.Command{
		Use:   "live [structure]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	checkCmd := &cobra.Command{
		Use:   "check [structure]",
		Short: "static equilibrium and strain energy report",
		Args:  cobra.MaximumNArgs(1),
		RunE:  checkStructure,
	}
	checkCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run energy history",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			fmt.Println("structures:")
			for _, s := range config.ListStructures() {
				fmt.Printf("  %s\n", s)
			}
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [structure]",
		Short: "benchmark stepping throughput",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchStructure,
	}
	benchCmd.Flags().BoolVar(&profileRun, "profile", false, "write a CPU profile")
	benchCmd.Flags().BoolVar(&parallel, "parallel", false, "parallel force assembly")

	rootCmd.AddCommand(runCmd, liveCmd, checkCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig merges, in order: the named preset (or default for a
// bare structure name), the --config file, then any explicitly set
// flags.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	case name != "":
		cfg = config.GetPreset(name)
		if cfg == nil {
			cfg = config.DefaultConfig()
			cfg.Structure = name
		}
	default:
		cfg = config.GetPreset("prism")
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("drift-tol") {
		cfg.DriftTolerance = driftTol
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Parallel = parallel
	}

	return cfg, nil
}

func pickIntegrator(name string) (integrator.Integrator, error) {
	switch name {
	case "verlet", "":
		return integrator.NewVerlet(), nil
	case "leapfrog":
		return integrator.NewLeapfrog(), nil
	}
	return nil, fmt.Errorf("unknown integrator: %s", name)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st, err := cfg.Build()
	if err != nil {
		return err
	}

	integ, err := pickIntegrator(integName)
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}

	stable := integrator.StableDt(st)
	if cfg.Dt > stable {
		fmt.Printf("warning: dt %.4g exceeds stability bound %.4g\n", cfg.Dt, stable)
	}

	fmt.Printf("running %s (%d nodes, %d members)...\n", cfg.Structure, len(st.Nodes), len(st.Members))
	start := time.Now()

	drv := sim.New(st, integ)
	result, err := drv.Run(context.Background(), cfg.SimConfig())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	settle := analysis.Settle(result.Snapshots, 50, 1e-4)
	metrics := map[string]float64{
		"max_drift":     result.MaxDrift,
		"overloads":     float64(result.Overloads),
		"steps_per_sec": float64(result.StepsTaken) / elapsed.Seconds(),
	}
	if last := result.Last(); last != nil {
		metrics["final_kinetic"] = last.Energy.Kinetic
		metrics["final_total"] = last.Energy.Total()
	}
	if settle.Settled {
		metrics["settle_time"] = settle.Time
	}

	runID, err := store.Save(cfg.Structure, cfg.Dt, integName, st, result, metrics)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, runErr := range result.Errors {
		fmt.Printf("stopped early: %v\n", runErr)
	}
	if settle.Settled {
		fmt.Printf("settled at t=%.3fs (residual speed %.2e)\n", settle.Time, settle.FinalSpeed)
	}
	fmt.Println("\nmetrics:")
	for name, val := range metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	m := viz.NewModel(cfg.Structure, cfg.Build, cfg.Dt)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func checkStructure(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st, err := cfg.Build()
	if err != nil {
		return err
	}

	asm := physics.NewAssembler()
	balanced, residual := analysis.Equilibrium(st, asm, 1e-6)
	fmt.Printf("structure: %s\n", cfg.Structure)
	fmt.Printf("equilibrium: %v (max residual %.4g N)\n", balanced, residual)
	fmt.Printf("stability bound: dt < %.4g s\n\n", integrator.StableDt(st))

	dist := analysis.StrainEnergy(st)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MEMBER\tKIND\tLENGTH\tSTRAIN\tENERGY")
	for _, m := range st.Members {
		e := dist.Cables[m.ID]
		if m.Kind == structure.Strut {
			e = dist.Struts[m.ID]
		}
		fmt.Fprintf(w, "%d\t%s\t%.4f\t%+.4f\t%.6f\n", m.ID, m.Kind, m.Length(), m.Strain(), e)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTRUCTURE\tTIME\tSTEPS\tDT\tNODES\tMEMBERS\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%d\t%d\t%s\n",
			run.ID,
			run.Structure,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Nodes,
			run.Members,
			run.Integrator,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	store := storage.New(dataDir)
	meta, err := store.Load(runID)
	if err != nil {
		return err
	}

	rows, times, err := store.LoadEnergy(runID)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("structure: %s\n", meta.Structure)
	fmt.Printf("samples: %d\n\n", len(rows))

	captions := []string{"kinetic energy", "gravitational energy", "elastic energy", "total energy", "drift"}
	for col, caption := range captions {
		data := make([]float64, len(rows))
		for i := range rows {
			if col < len(rows[i]) {
				data[i] = rows[i][col]
			}
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	// Kinetic energy oscillates at twice the structural frequency.
	ke := make([]float64, len(rows))
	for i := range rows {
		ke[i] = rows[i][0]
	}
	if period := analysis.DominantPeriod(times, ke); period > 0 {
		fmt.Printf("dominant period: %.3f s (%.3f hz)\n", 2*period, 1/(2*period))
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	store := storage.New(dataDir)
	rows, times, err := store.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time"}
	labels := []string{"px", "py", "pz", "vx", "vy", "vz"}
	for i := 0; i < len(rows[0])/6; i++ {
		for _, l := range labels {
			header = append(header, fmt.Sprintf("%s%d", l, i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range rows {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, val := range rows[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	store := storage.New(dataDir)
	meta, err := store.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func benchStructure(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	if profileRun {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	dts := []float64{0.0001, 0.0005, 0.001}
	counts := []int{1000, 5000, 20000}

	fmt.Printf("benchmarking %s\n\n", cfg.Structure)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, benchDt := range dts {
		for _, n := range counts {
			st, err := cfg.Build()
			if err != nil {
				return err
			}

			drv := sim.New(st, integrator.NewVerlet())
			runCfg := sim.Config{Dt: benchDt, MaxSteps: n, Parallel: cfg.Parallel}

			start := time.Now()
			result, err := drv.Run(context.Background(), runCfg)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%.4fs\t%d\t%v\t%.0f\n",
				benchDt, result.StepsTaken, elapsed,
				float64(result.StepsTaken)/elapsed.Seconds())
		}
	}

	return w.Flush()
}
