package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rgflow/internal/config"
	"github.com/san-kum/rgflow/internal/export"
	"github.com/san-kum/rgflow/internal/flow"
	"github.com/san-kum/rgflow/internal/session"
	"github.com/san-kum/rgflow/internal/storage"
	"github.com/san-kum/rgflow/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	kappa      float64
	betaCog    float64
	alphaEnt   float64
	muStart    float64
	muEnd      float64
	tol        float64
	epsilon    float64
	saveRun    bool
	runName    string
	// plot flags
	xAxis  int
	yAxis  int
	svgOut string
	// live flags
	frameRate int
	liveStep  float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rgflow",
		Short: "renormalization-group flow lab for the coupling triple (kappa, beta_cog, alpha_ent)",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rgflow", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset coefficients")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate a flow trajectory",
		RunE:  runTrajectory,
	}
	runCmd.Flags().Float64Var(&kappa, "kappa", 0.5, "initial kappa")
	runCmd.Flags().Float64Var(&betaCog, "beta", 0.5, "initial beta_cog")
	runCmd.Flags().Float64Var(&alphaEnt, "alpha", 0.5, "initial alpha_ent")
	runCmd.Flags().Float64Var(&muStart, "mu0", 0, "scale start (0: from config)")
	runCmd.Flags().Float64Var(&muEnd, "mu1", 0, "scale end (0: from config)")
	runCmd.Flags().Float64Var(&tol, "tol", 0, "error tolerance (0: from config)")
	runCmd.Flags().BoolVar(&saveRun, "save", true, "persist the run")
	runCmd.Flags().StringVar(&runName, "name", "run", "run name prefix")

	criticalCmd := &cobra.Command{
		Use:   "critical",
		Short: "find fixed points and classify their stability",
		RunE:  runCritical,
	}
	criticalCmd.Flags().Float64Var(&epsilon, "epsilon", 0, "stability noise threshold (0: from config)")
	criticalCmd.Flags().BoolVar(&saveRun, "save", false, "persist the result")
	criticalCmd.Flags().StringVar(&runName, "name", "critical", "run name prefix")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&xAxis, "x", flow.Kappa, "x axis coupling index for --svg (0=kappa 1=beta_cog 2=alpha_ent)")
	plotCmd.Flags().IntVar(&yAxis, "y", flow.BetaCog, "y axis coupling index for --svg")
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "write an SVG projection to this path")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and fixed points as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the flow evolve interactively",
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&kappa, "kappa", 0.5, "initial kappa")
	liveCmd.Flags().Float64Var(&betaCog, "beta", 0.5, "initial beta_cog")
	liveCmd.Flags().Float64Var(&alphaEnt, "alpha", 0.5, "initial alpha_ent")
	liveCmd.Flags().Float64Var(&liveStep, "step", 0.005, "ln(mu) step per frame substep")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frames per second")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list coefficient presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, criticalCmd, plotCmd, listCmd, exportCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves precedence: explicit file, then preset, then the
// documented defaults.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	if preset != "" {
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", preset)
		}
		return cfg, nil
	}
	return config.Default(), nil
}

func runTrajectory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	icfg := cfg.ToIntegrate()
	if muStart > 0 {
		icfg.MuStart = muStart
	}
	if muEnd > 0 {
		icfg.MuEnd = muEnd
	}
	if tol > 0 {
		icfg.Tol = tol
	}

	sess, err := session.New(cfg.Params)
	if err != nil {
		return err
	}

	x0 := initialPoint(cmd, cfg)
	traj, err := sess.Integrate(context.Background(), x0, icfg)
	if err != nil {
		if errors.Is(err, flow.ErrStiffness) && traj != nil {
			fmt.Printf("stiff region hit after %d steps; partial trajectory kept\n", traj.Steps)
		} else {
			return err
		}
	}

	fmt.Printf("integrated mu=[%g, %g]: %d samples, %d accepted, %d rejected\n",
		icfg.MuStart, icfg.MuEnd, len(traj.Samples), traj.Steps, traj.Rejected)
	if traj.Truncated {
		fmt.Printf("truncated: %s (last point %v at mu=%g)\n",
			traj.Reason, traj.Last().Point, traj.Last().Mu)
	}

	printTrajectoryGraphs(traj)

	if saveRun {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		meta := storage.RunMetadata{
			Params:  cfg.Params,
			MuStart: icfg.MuStart,
			MuEnd:   icfg.MuEnd,
			Tol:     icfg.Tol,
		}
		runID, err := store.Save(runName, meta, traj, nil)
		if err != nil {
			return err
		}
		fmt.Println("saved:", runID)
	}

	return nil
}

// initialPoint resolves the starting couplings: explicit flags win,
// otherwise the configured initial point applies.
func initialPoint(cmd *cobra.Command, cfg *config.Config) flow.Coupling {
	x0 := cfg.Integrate.Init
	if cmd.Flags().Changed("kappa") {
		x0[flow.Kappa] = kappa
	}
	if cmd.Flags().Changed("beta") {
		x0[flow.BetaCog] = betaCog
	}
	if cmd.Flags().Changed("alpha") {
		x0[flow.AlphaEnt] = alphaEnt
	}
	return x0
}

func runCritical(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eps := cfg.Epsilon
	if epsilon > 0 {
		eps = epsilon
	}

	sess, err := session.New(cfg.Params)
	if err != nil {
		return err
	}

	points, err := sess.FindFixedPoints(context.Background(), cfg.ToSearch())
	if err != nil {
		return err
	}
	reports := sess.ClassifyAll(points, eps)

	if len(reports) == 0 {
		fmt.Println("no fixed points found in the search region")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KAPPA\tBETA_COG\tALPHA_ENT\tRESIDUAL\tLABEL\tEIGENVALUES")
	for _, r := range reports {
		fmt.Fprintf(w, "%+.6f\t%+.6f\t%+.6f\t%.2e\t%s\t%s\n",
			r.Point.Point[flow.Kappa],
			r.Point.Point[flow.BetaCog],
			r.Point.Point[flow.AlphaEnt],
			r.Point.Residual,
			r.Label,
			formatEigenvalues(r.Eigenvalues),
		)
	}
	w.Flush()

	if saveRun {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		meta := storage.RunMetadata{Params: cfg.Params}
		runID, err := store.Save(runName, meta, nil, reports)
		if err != nil {
			return err
		}
		fmt.Println("saved:", runID)
	}

	return nil
}

func formatEigenvalues(eig [3]complex128) string {
	out := ""
	for i, e := range eig {
		if i > 0 {
			out += ", "
		}
		if imag(e) == 0 {
			out += fmt.Sprintf("%.4f", real(e))
		} else {
			out += fmt.Sprintf("%.4f%+.4fi", real(e), imag(e))
		}
	}
	return out
}

func printTrajectoryGraphs(traj *flow.Trajectory) {
	if len(traj.Samples) < 2 {
		return
	}
	for i, name := range flow.Names {
		series := make([]float64, len(traj.Samples))
		for j, s := range traj.Samples {
			series[j] = s.Point[i]
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(series,
			asciigraph.Height(8),
			asciigraph.Width(72),
			asciigraph.Caption(name+" vs scale"),
		))
	}
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	traj, err := store.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	printTrajectoryGraphs(traj)

	if svgOut != "" {
		if xAxis < 0 || xAxis > 2 || yAxis < 0 || yAxis > 2 {
			return fmt.Errorf("axis index out of range [0,2]")
		}
		svg := export.TrajectoryToSVG(traj, xAxis, yAxis, 800, 600, "#00ff87")
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Println("wrote:", svgOut)
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIMESTAMP\tSTEPS\tTRUNCATED\tREASON\tFIXED POINTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%s\t%d\n",
			run.ID, run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps, run.Truncated, run.Reason, run.FixedPoints)
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}

	out := struct {
		Metadata    *storage.RunMetadata  `json:"metadata"`
		FixedPoints []storage.PointRecord `json:"fixed_points,omitempty"`
	}{Metadata: meta}

	if records, err := store.LoadFixedPoints(args[0]); err == nil {
		out.FixedPoints = records
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	field, err := flow.NewField(cfg.Params)
	if err != nil {
		return err
	}

	model := viz.NewModel(field, initialPoint(cmd, cfg),
		liveStep, cfg.Integrate.BlowUp, frameRate)

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
