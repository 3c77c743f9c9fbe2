package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/meshfree/internal/body"
	"github.com/san-kum/meshfree/internal/boundary"
	"github.com/san-kum/meshfree/internal/compute"
	"github.com/san-kum/meshfree/internal/config"
	"github.com/san-kum/meshfree/internal/fluid"
	"github.com/san-kum/meshfree/internal/kernel"
	"github.com/san-kum/meshfree/internal/mesh"
	"github.com/san-kum/meshfree/internal/metrics"
	"github.com/san-kum/meshfree/internal/particles"
	"github.com/san-kum/meshfree/internal/storage"
	"github.com/san-kum/meshfree/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	steps      int
	backend    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "meshfree",
		Short: "meshless particle hydrodynamics lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".meshfree", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "preset name")
	rootCmd.PersistentFlags().IntVar(&steps, "steps", 0, "override step count")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "compute backend (serial, cpu)")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a simulation headless",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a simulation with live terminal rendering",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			for _, name := range names {
				cfg := config.GetPreset(name)
				fmt.Printf("%-12s %gx%g domain, spacing %g, %d steps\n",
					name, cfg.Domain.Width, cfg.Domain.Height, cfg.Particles.Spacing, cfg.Steps)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "benchmark compute backends",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchBackends,
	}

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, listCmd, showCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
	case len(args) == 1:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown scenario %q", args[0])
		}
	default:
		cfg = config.DefaultConfig()
	}

	if steps > 0 {
		cfg.Steps = steps
	}
	if backend != "" {
		cfg.Backend = backend
	}
	return cfg, cfg.Validate()
}

func kernelByName(name string) kernel.Kernel {
	if name == "wendland" {
		return kernel.NewWendlandC2(2)
	}
	return kernel.NewCubicSpline(2)
}

// latticePositions fills [0,w) x [0,heightFill) with a square lattice
// at the configured spacing.
func latticePositions(cfg *config.Config, heightFill float64) []r3.Vec {
	dx := cfg.Particles.Spacing
	var out []r3.Vec
	for y := dx / 2; y < heightFill; y += dx {
		for x := dx / 2; x < cfg.Domain.Width; x += dx {
			out = append(out, r3.Vec{X: x, Y: y})
		}
	}
	return out
}

// buildScene assembles a complete scene from one config: particle
// lattice, kernel, fluid forces, periodic boundary, integrator and
// monitoring metrics.
func buildScene(cfg *config.Config) (*body.Scene, error) {
	k := kernelByName(cfg.Kernel)
	h := cfg.SmoothingLength()
	dx := cfg.Particles.Spacing

	heightFill := cfg.Domain.Height
	if cfg.Scenario == "column" {
		heightFill = cfg.Domain.Height / 2
	}
	positions := latticePositions(cfg, heightFill)

	st := particles.New(cfg.Particles.Ceiling)
	st.InitializeBounds(len(positions))
	copy(st.Positions(), positions)

	if cfg.Scenario == "relaxation" && cfg.Seed != 0 {
		rng := rand.New(rand.NewSource(cfg.Seed))
		pos := st.Positions()
		for i := range positions {
			pos[i].X += (rng.Float64() - 0.5) * 0.2 * dx
			pos[i].Y += (rng.Float64() - 0.5) * 0.2 * dx
		}
	}

	mass := st.Masses()
	rho := st.Densities()
	for i := range positions {
		mass[i] = cfg.Fluid.RestDensity * dx * dx
		rho[i] = cfg.Fluid.RestDensity
	}

	domainBounds := mesh.Bounds{
		Max: r3.Vec{X: cfg.Domain.Width, Y: cfg.Domain.Height, Z: k.SupportRadius(h)},
	}
	b := body.NewBody(st, domainBounds, k, h)

	params := fluid.Params{
		RestDensity: cfg.Fluid.RestDensity,
		SoundSpeed:  cfg.Fluid.SoundSpeed,
		Viscosity:   cfg.Fluid.Viscosity,
		Gravity:     r3.Vec{Y: cfg.Fluid.GravityY},
	}
	pf, err := fluid.NewPressureForce(st, params)
	if err != nil {
		return nil, err
	}
	vf, err := fluid.NewViscousForce(st, params)
	if err != nil {
		return nil, err
	}

	if cfg.Scenario == "shear" {
		v0 := 0.02 * cfg.Fluid.SoundSpeed
		vel := pf.Velocity().Data()
		pos := st.Positions()
		for i := range positions {
			if pos[i].Y > cfg.Domain.Height/2 {
				vel[i] = r3.Vec{X: v0}
			} else {
				vel[i] = r3.Vec{X: -v0}
			}
		}
	}

	// cap the configured dt by the dual stability criteria for this
	// resolution and initial velocity field
	dt := cfg.Dt
	vel := pf.Velocity().Data()
	if limit := fluid.AcousticTimeStep(st, vel, h, params); limit < dt {
		dt = limit
	}
	if limit := fluid.AdvectionTimeStep(st, vel, h, params); limit < dt {
		dt = limit
	}

	s := body.NewScene(b, dt)
	s.Backend = compute.ByName(cfg.Backend)
	s.ResortEvery = cfg.ResortEvery
	s.Advance = body.SymplecticEuler(pf.Velocity(), pf.Acceleration())
	if cfg.Domain.PeriodicX {
		s.AddBoundary(boundary.NewPeriodic(b.Grid, 0))
	}
	s.AddInteraction(fluid.DensitySummation{})
	s.AddInteraction(pf)
	s.AddInteraction(vf)
	s.AddMetric(metrics.NewKineticEnergy(pf.Velocity()))
	s.AddMetric(metrics.NewMaxSpeed(pf.Velocity()))
	s.AddMetric(metrics.NewMeanNeighbors())
	return s, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	scene, err := buildScene(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("running %s: %d particles, %d steps, dt=%g, backend=%s\n",
		cfg.Scenario, scene.Body.Store.TotalReal(), cfg.Steps, scene.Dt, scene.Backend.Name())

	start := time.Now()
	result, err := scene.Run(ctx, cfg.Steps)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.6g\n", name, result.Metrics[name])
	}
	fmt.Fprintf(w, "wall time\t%v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "steps/sec\t%.0f\n", float64(result.Steps)/elapsed.Seconds())
	if err := w.Flush(); err != nil {
		return err
	}

	if hist := result.History["kinetic_energy"]; len(hist) >= 2 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(hist,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("kinetic energy"),
		))
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg.Scenario, result.Steps, result.Time, scene.Body.Store, result.Metrics)
	if err != nil {
		return err
	}
	fmt.Printf("\nsaved %s\n", runID)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	scene, err := buildScene(cfg)
	if err != nil {
		return err
	}
	return tui.RunLive(scene, cfg.Scenario, cfg.Steps)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tSTEPS\tPARTICLES\tWHEN")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			run.ID, run.Scenario, run.Step, run.TotalReal, run.Timestamp.Format(time.DateTime))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func benchBackends(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	const benchSteps = 50
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tPARTICLES\tSTEPS\tTIME\tSTEPS/SEC")

	for _, name := range []string{"serial", "cpu"} {
		scene, err := buildScene(cfg)
		if err != nil {
			return err
		}
		scene.Backend = compute.ByName(name)

		start := time.Now()
		result, err := scene.Run(context.Background(), benchSteps)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\n",
			name, scene.Body.Store.TotalReal(), result.Steps,
			elapsed.Round(time.Millisecond), float64(result.Steps)/elapsed.Seconds())
	}
	return w.Flush()
}
