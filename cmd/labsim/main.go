package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/mtovar/labsim/internal/chem"
	"github.com/mtovar/labsim/internal/config"
	"github.com/mtovar/labsim/internal/dataset"
	"github.com/mtovar/labsim/internal/dynamo"
	"github.com/mtovar/labsim/internal/experiment"
	"github.com/mtovar/labsim/internal/httpapi"
	"github.com/mtovar/labsim/internal/integrators"
	"github.com/mtovar/labsim/internal/ml"
	"github.com/mtovar/labsim/internal/pendulum"
	"github.com/mtovar/labsim/internal/rng"
	"github.com/mtovar/labsim/internal/store"
	"github.com/mtovar/labsim/internal/tomato"
	"github.com/mtovar/labsim/internal/viz"
)

var (
	dataDir string
	// Chemistry
	indicator  string
	ph         float64
	pathLength float64
	noiseSigma float64
	// Pendulum
	length     float64
	theta      float64
	omega      float64
	damping    float64
	dragCoeff  float64
	airDensity float64
	mass       float64
	gravity    float64
	dt         float64
	duration   float64
	stepper    string
	// Tomato
	temp     float64
	moisture float64
	sunlight float64
	nutrient float64
	pest     float64
	days     int
	jitter   float64
	// Dataset / training
	samples   int
	epochs    int
	batchSize int
	learnRate float64
	seed      uint32
	plotLoss  bool
	daily     bool
	// Shared
	configFile string
	preset     string
	addr       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "labsim",
		Short: "interactive science demos: simulate, learn, predict",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".labsim", "data directory")

	colorCmd := &cobra.Command{
		Use:   "color",
		Short: "simulate indicator color at a given pH",
		RunE:  runColor,
	}
	colorCmd.Flags().StringVar(&indicator, "indicator", "litmus", "indicator (litmus, universal)")
	colorCmd.Flags().Float64Var(&ph, "ph", 7.0, "solution pH")
	colorCmd.Flags().Float64Var(&pathLength, "path-length", 1.0, "optical path length (cm)")
	colorCmd.Flags().Float64Var(&noiseSigma, "noise", 0.0, "channel noise half-width")
	colorCmd.Flags().Uint32Var(&seed, "seed", 42, "noise seed")
	colorCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	colorCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a pendulum simulation and archive the trajectory",
		RunE:  runPendulum,
	}
	addPendulumFlags(runCmd)
	runCmd.Flags().StringVar(&stepper, "integrator", "rk4", "integrator (rk4, euler)")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	growCmd := &cobra.Command{
		Use:   "grow",
		Short: "run a tomato growth season and archive the series",
		RunE:  runGrow,
	}
	addTomatoFlags(growCmd)
	growCmd.Flags().Uint32Var(&seed, "seed", 42, "temperature jitter seed")
	growCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	growCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	datasetCmd := &cobra.Command{
		Use:   "dataset [experiment]",
		Short: "generate a synthetic dataset as CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  runDataset,
	}
	datasetCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "number of rows")
	datasetCmd.Flags().Uint32Var(&seed, "seed", config.DefaultSeed, "generator seed")
	datasetCmd.Flags().BoolVar(&daily, "daily", false, "one row per simulated day (tomato only)")

	trainCmd := &cobra.Command{
		Use:   "train [experiment]",
		Short: "train a model on synthetic data and persist it",
		Args:  cobra.ExactArgs(1),
		RunE:  runTrain,
	}
	trainCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "dataset rows")
	trainCmd.Flags().IntVar(&epochs, "epochs", config.DefaultEpochs, "training epochs")
	trainCmd.Flags().IntVar(&batchSize, "batch", config.DefaultBatchSize, "batch size")
	trainCmd.Flags().Float64Var(&learnRate, "lr", config.DefaultLearnRate, "learning rate")
	trainCmd.Flags().Uint32Var(&seed, "seed", config.DefaultSeed, "dataset and training seed")
	trainCmd.Flags().BoolVar(&plotLoss, "plot-loss", false, "plot the loss curve")
	trainCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	predictCmd := &cobra.Command{
		Use:   "predict [experiment]",
		Short: "predict with a persisted model and compare to simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runPredict,
	}
	predictCmd.Flags().Float64Var(&ph, "ph", 7.0, "solution pH (acid experiments)")
	predictCmd.Flags().Float64Var(&pathLength, "path-length", 1.0, "optical path length (cm)")
	addPendulumFlags(predictCmd)
	addTomatoFlags(predictCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list archived runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot an archived run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run series as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	liveCmd := &cobra.Command{
		Use:   "live [experiment]",
		Short: "watch a simulation live in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addPendulumFlags(liveCmd)
	addTomatoFlags(liveCmd)
	liveCmd.Flags().Uint32Var(&seed, "seed", 42, "temperature jitter seed")
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve persisted models over the inference API",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	presetsCmd := &cobra.Command{
		Use:   "presets [experiment]",
		Short: "list available presets for an experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for experiment: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same pendulum",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addPendulumFlags(compareCmd)

	rootCmd.AddCommand(colorCmd, runCmd, growCmd, datasetCmd, trainCmd, predictCmd,
		listCmd, plotCmd, exportCmd, exportCSVCmd, liveCmd, serveCmd, presetsCmd, compareCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPendulumFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&length, "length", 1.0, "rod length (m)")
	cmd.Flags().Float64Var(&theta, "theta", 0.35, "initial angle (rad)")
	cmd.Flags().Float64Var(&omega, "omega", 0.0, "initial angular velocity (rad/s)")
	cmd.Flags().Float64Var(&damping, "damping", 0.05, "pivot damping coefficient")
	cmd.Flags().Float64Var(&dragCoeff, "drag", 0.47, "bob drag coefficient")
	cmd.Flags().Float64Var(&airDensity, "air-density", 1.225, "air density (kg/m^3)")
	cmd.Flags().Float64Var(&mass, "mass", 1.0, "bob mass (kg)")
	cmd.Flags().Float64Var(&gravity, "gravity", 9.81, "gravity (m/s^2)")
	cmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep (s)")
	cmd.Flags().Float64Var(&duration, "time", 20.0, "duration (s)")
}

func addTomatoFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&temp, "temp", 24.0, "average temperature (C)")
	cmd.Flags().Float64Var(&moisture, "moisture", 60.0, "soil moisture (%)")
	cmd.Flags().Float64Var(&sunlight, "sunlight", 12.0, "sunlight hours per day")
	cmd.Flags().Float64Var(&nutrient, "nutrient", 0.8, "nutrient index 0..1")
	cmd.Flags().Float64Var(&pest, "pest", 0.1, "pest pressure 0..1")
	cmd.Flags().IntVar(&days, "days", 120, "season length in days")
	cmd.Flags().Float64Var(&jitter, "jitter", 0.0, "daily temperature jitter (C)")
}

// pendulumParams merges preset, config file, and explicit flags, in
// increasing precedence.
func pendulumParams(cmd *cobra.Command) (pendulum.Params, error) {
	p := pendulum.DefaultParams()
	if preset != "" {
		cfg := config.GetPreset("pendulum", preset)
		if cfg == nil {
			return p, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets("pendulum"))
		}
		p = cfg.Pendulum
	}
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return p, fmt.Errorf("failed to load config: %w", err)
		}
		p = cfg.Pendulum
	}
	f := cmd.Flags()
	if f.Changed("length") {
		p.Length = length
	}
	if f.Changed("theta") {
		p.InitialAngle = theta
	}
	if f.Changed("omega") {
		p.InitialOmega = omega
	}
	if f.Changed("damping") {
		p.Damping = damping
	}
	if f.Changed("drag") {
		p.DragCoeff = dragCoeff
	}
	if f.Changed("air-density") {
		p.AirDensity = airDensity
	}
	if f.Changed("mass") {
		p.Mass = mass
	}
	if f.Changed("gravity") {
		p.Gravity = gravity
	}
	if f.Changed("dt") {
		p.Dt = dt
	}
	if f.Changed("time") {
		p.Duration = duration
	}
	return p, nil
}

func tomatoParams(cmd *cobra.Command) (tomato.Params, error) {
	p := tomato.DefaultParams()
	if preset != "" {
		cfg := config.GetPreset("tomato", preset)
		if cfg == nil {
			return p, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets("tomato"))
		}
		p = cfg.Tomato
	}
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return p, fmt.Errorf("failed to load config: %w", err)
		}
		p = cfg.Tomato
	}
	f := cmd.Flags()
	if f.Changed("temp") {
		p.AvgTempC = temp
	}
	if f.Changed("moisture") {
		p.SoilMoisturePct = moisture
	}
	if f.Changed("sunlight") {
		p.SunlightHours = sunlight
	}
	if f.Changed("nutrient") {
		p.NutrientIndex = nutrient
	}
	if f.Changed("pest") {
		p.PestPressure = pest
	}
	if f.Changed("days") {
		p.Days = days
	}
	if f.Changed("jitter") {
		p.TempJitterC = jitter
	}
	return p, nil
}

func openRuns() (*store.Runs, error) {
	runs := store.NewRuns(filepath.Join(dataDir, "runs"))
	if err := runs.Init(); err != nil {
		return nil, err
	}
	return runs, nil
}

func openKV(ctx context.Context) (*store.KV, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	kv := store.NewKV(filepath.Join(dataDir, "models.db"))
	if err := kv.Init(ctx); err != nil {
		return nil, err
	}
	return kv, nil
}

func runColor(cmd *cobra.Command, args []string) error {
	p := chem.DefaultParams()
	if preset != "" {
		cfg := config.GetPreset("acid-litmus", preset)
		if cfg == nil {
			cfg = config.GetPreset("acid-universal", preset)
		}
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s", preset)
		}
		applyChemConfig(&p, cfg.Chem)
	}
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyChemConfig(&p, cfg.Chem)
	}
	f := cmd.Flags()
	if f.Changed("indicator") {
		ind, err := chem.ParseIndicator(indicator)
		if err != nil {
			return err
		}
		p.Indicator = ind
	}
	if f.Changed("ph") {
		p.PH = ph
	}
	if f.Changed("path-length") {
		p.PathLengthCm = pathLength
	}
	if f.Changed("noise") {
		p.NoiseSigma = noiseSigma
	}

	var src *rng.Source
	if p.NoiseSigma > 0 {
		src = rng.New(seed)
	}
	c, err := chem.Simulate(p, src)
	if err != nil {
		return err
	}

	hex := fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	swatch := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("        ")
	fmt.Printf("indicator: %s\n", p.Indicator)
	fmt.Printf("pH: %.2f\n", p.PH)
	fmt.Printf("color: rgb(%d, %d, %d)  %s  %s\n", c.R, c.G, c.B, hex, swatch)
	return nil
}

func applyChemConfig(p *chem.Params, cfg config.ChemConfig) {
	if cfg.Indicator != "" {
		if ind, err := chem.ParseIndicator(cfg.Indicator); err == nil {
			p.Indicator = ind
		}
	}
	p.PH = cfg.PH
	p.PathLengthCm = cfg.PathLengthCm
	p.NoiseSigma = cfg.NoiseSigma
}

func newStepper(name string) (dynamo.Stepper, error) {
	switch name {
	case "rk4":
		return integrators.NewRK4(), nil
	case "euler":
		return integrators.NewEuler(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

func runPendulum(cmd *cobra.Command, args []string) error {
	p, err := pendulumParams(cmd)
	if err != nil {
		return err
	}
	step, err := newStepper(stepper)
	if err != nil {
		return err
	}

	runs, err := openRuns()
	if err != nil {
		return err
	}

	fmt.Println("running pendulum simulation...")
	start := time.Now()
	result, err := pendulum.Simulate(p, step)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	columns := []string{"t", "theta", "omega", "alpha", "x", "y", "energy"}
	rows := make([][]float64, len(result.Samples))
	for i, s := range result.Samples {
		rows[i] = []float64{s.T, s.Theta, s.Omega, s.Alpha, s.X, s.Y, s.Energy}
	}
	params := map[string]float64{
		"length": p.Length, "initial_angle": p.InitialAngle, "initial_omega": p.InitialOmega,
		"damping": p.Damping, "drag_coeff": p.DragCoeff, "air_density": p.AirDensity,
		"mass": p.Mass, "gravity": p.Gravity, "dt": p.Dt, "duration": p.Duration,
	}
	runID, err := runs.Save("pendulum", params, columns, rows)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(result.Samples))
	if result.Measured {
		fmt.Printf("period: %.4fs (+/- %.4fs, measured)\n", result.Period, result.PeriodStd)
	} else {
		fmt.Printf("period: %.4fs (small-angle fallback)\n", result.Period)
	}
	fmt.Printf("small-angle period: %.4fs\n", pendulum.SmallAnglePeriod(p.Length, p.Gravity))
	return nil
}

func runGrow(cmd *cobra.Command, args []string) error {
	p, err := tomatoParams(cmd)
	if err != nil {
		return err
	}

	var src *rng.Source
	if p.TempJitterC > 0 {
		src = rng.New(seed)
	}

	runs, err := openRuns()
	if err != nil {
		return err
	}

	fmt.Println("running tomato growth simulation...")
	states, err := tomato.Simulate(p, src)
	if err != nil {
		return err
	}

	columns := []string{"day", "gdd", "germination_pct", "biomass", "height_cm", "leaves", "stage", "fruits", "health"}
	rows := make([][]float64, len(states))
	for i, d := range states {
		rows[i] = []float64{
			float64(d.Day), d.GDD, d.GerminationPct, d.Biomass, d.HeightCm,
			float64(d.Leaves), float64(d.Stage), float64(d.Fruits), d.Health,
		}
	}
	params := map[string]float64{
		"avg_temp_c": p.AvgTempC, "soil_moisture_pct": p.SoilMoisturePct,
		"sunlight_hours": p.SunlightHours, "nutrient_index": p.NutrientIndex,
		"pest_pressure": p.PestPressure, "days": float64(p.Days), "temp_jitter_c": p.TempJitterC,
	}
	runID, err := runs.Save("tomato", params, columns, rows)
	if err != nil {
		return err
	}

	final := states[len(states)-1]
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("days: %d\n", len(states))
	fmt.Printf("final stage: %s\n", final.Stage)
	fmt.Printf("height: %.1f cm\n", final.HeightCm)
	fmt.Printf("leaves: %.0f\n", final.Leaves)
	fmt.Printf("fruits: %.1f\n", final.Fruits)
	fmt.Printf("health: %.2f\n", final.Health)
	return nil
}

func runDataset(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	exp, err := reg.Get(args[0])
	if err != nil {
		return err
	}

	var set *dataset.Set
	if daily {
		if args[0] != "tomato" {
			return fmt.Errorf("--daily only applies to the tomato experiment")
		}
		set, err = dataset.GenerateTomatoDaily(samples, seed)
	} else {
		set, err = exp.GenerateDataset(samples, seed)
	}
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := append(append([]string{}, set.FeatureNames...), set.TargetNames...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range set.Rows {
		rec := make([]string, 0, len(row.Features)+len(row.Targets))
		for _, v := range row.Features {
			rec = append(rec, strconv.FormatFloat(v, 'f', 6, 64))
		}
		for _, v := range row.Targets {
			rec = append(rec, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func runTrain(cmd *cobra.Command, args []string) error {
	name := args[0]

	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		f := cmd.Flags()
		if !f.Changed("samples") {
			samples = cfg.Training.Samples
		}
		if !f.Changed("epochs") {
			epochs = cfg.Training.Epochs
		}
		if !f.Changed("batch") {
			batchSize = cfg.Training.BatchSize
		}
		if !f.Changed("lr") {
			learnRate = cfg.Training.LearningRate
		}
		if !f.Changed("seed") {
			seed = cfg.Training.Seed
		}
	}

	reg := experiment.NewRegistry()
	exp, err := reg.Get(name)
	if err != nil {
		return err
	}

	fmt.Printf("generating %d samples...\n", samples)
	set, err := exp.GenerateDataset(samples, seed)
	if err != nil {
		return err
	}

	var history []ml.EpochStats
	opts := ml.Options{
		Epochs:       epochs,
		BatchSize:    batchSize,
		LearningRate: learnRate,
		Seed:         seed,
		OnEpochEnd:   func(s ml.EpochStats) { history = append(history, s) },
	}

	fmt.Printf("training %s for %d epochs...\n", name, epochs)
	summary, err := exp.Train(cmd.Context(), set, opts)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EPOCH\tLOSS\tVAL_LOSS\tMAE")
	stride := epochs / 10
	if stride < 1 {
		stride = 1
	}
	for i, s := range history {
		if i%stride == 0 || i == len(history)-1 {
			fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%.6f\n", s.Epoch, s.Loss, s.ValLoss, s.MAE)
		}
	}
	w.Flush()

	fmt.Printf("\nrun id: %s\n", summary.RunID)
	fmt.Printf("completed in %v\n", summary.Elapsed)
	fmt.Printf("final loss: %.6f (val %.6f, mae %.6f)\n", summary.FinalLoss, summary.FinalVal, summary.FinalMAE)

	if plotLoss && len(history) > 1 {
		losses := make([]float64, len(history))
		for i, s := range history {
			losses[i] = s.Loss
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(losses,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("training loss"),
		))
	}

	kv, err := openKV(cmd.Context())
	if err != nil {
		return err
	}
	defer kv.Close()
	if err := exp.Save(cmd.Context(), kv); err != nil {
		return err
	}
	fmt.Printf("model saved to %s\n", filepath.Join(dataDir, "models.db"))
	return nil
}

func runPredict(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx := cmd.Context()

	kv, err := openKV(ctx)
	if err != nil {
		return err
	}
	defer kv.Close()

	switch name {
	case "acid-litmus", "acid-universal":
		variant := experiment.LitmusVariant
		if name == "acid-universal" {
			variant = experiment.UniversalVariant
		}
		exp := experiment.NewAcidBase(variant)
		if err := exp.Load(ctx, kv); err != nil {
			return fmt.Errorf("no trained model for %s, run train first: %w", name, err)
		}
		predicted, err := exp.PredictColor(ctx, ph, pathLength)
		if err != nil {
			return err
		}
		actual, err := exp.RunSimulation(ph, pathLength, 0, nil)
		if err != nil {
			return err
		}
		fmt.Printf("pH: %.2f\n", ph)
		printColor("predicted", predicted)
		printColor("simulated", actual)

	case "pendulum":
		p, err := pendulumParams(cmd)
		if err != nil {
			return err
		}
		exp := experiment.NewPendulum()
		if err := exp.Load(ctx, kv); err != nil {
			return fmt.Errorf("no trained model for %s, run train first: %w", name, err)
		}
		predicted, err := exp.PredictPeriod(ctx, p)
		if err != nil {
			return err
		}
		result, err := exp.RunSimulation(p)
		if err != nil {
			return err
		}
		fmt.Printf("predicted period: %.4fs\n", predicted)
		fmt.Printf("simulated period: %.4fs\n", result.Period)
		fmt.Printf("error: %.2f%%\n", 100*absf(predicted-result.Period)/result.Period)

	case "tomato":
		p, err := tomatoParams(cmd)
		if err != nil {
			return err
		}
		exp := experiment.NewTomato()
		if err := exp.Load(ctx, kv); err != nil {
			return fmt.Errorf("no trained model for %s, run train first: %w", name, err)
		}
		predicted, err := exp.PredictHeight(ctx, p)
		if err != nil {
			return err
		}
		states, err := exp.RunSimulation(p, nil)
		if err != nil {
			return err
		}
		actual := states[len(states)-1].HeightCm
		fmt.Printf("predicted height: %.1f cm\n", predicted)
		fmt.Printf("simulated height: %.1f cm\n", actual)

	default:
		return fmt.Errorf("unknown experiment: %s", name)
	}
	return nil
}

func printColor(label string, c chem.RGB) {
	hex := fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	swatch := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("        ")
	fmt.Printf("%s: rgb(%d, %d, %d)  %s  %s\n", label, c.R, c.G, c.B, hex, swatch)
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := openRuns()
	if err != nil {
		return err
	}
	metas, err := runs.List()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDOMAIN\tTIME\tROWS")
	for _, m := range metas {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			m.ID, m.Domain, m.Timestamp.Format("2006-01-02 15:04:05"), m.Rows)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runs, err := openRuns()
	if err != nil {
		return err
	}
	meta, err := runs.Load(args[0])
	if err != nil {
		return err
	}
	columns, rows, err := runs.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("domain: %s\n", meta.Domain)
	fmt.Printf("samples: %d\n\n", len(rows))

	// Column 0 is the time axis; plot the next few value columns.
	maxPlots := 4
	for col := 1; col < len(columns) && col <= maxPlots; col++ {
		data := make([]float64, len(rows))
		for i := range rows {
			if col < len(rows[i]) {
				data[i] = rows[i][col]
			}
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(columns[col]),
		))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runs, err := openRuns()
	if err != nil {
		return err
	}
	meta, err := runs.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runs, err := openRuns()
	if err != nil {
		return err
	}
	columns, rows, err := runs.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, row := range rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	switch args[0] {
	case "pendulum":
		p, err := pendulumParams(cmd)
		if err != nil {
			return err
		}
		return viz.RunPendulum(p)
	case "tomato":
		p, err := tomatoParams(cmd)
		if err != nil {
			return err
		}
		return viz.RunTomato(p, seed)
	default:
		return fmt.Errorf("no live view for experiment: %s", args[0])
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	kv, err := openKV(ctx)
	if err != nil {
		return err
	}
	defer kv.Close()

	srv := httpapi.NewServer(experiment.NewRegistry())
	if err := srv.LoadSaved(ctx, kv); err != nil {
		return err
	}

	fmt.Printf("inference API listening on %s\n", addr)
	return http.ListenAndServe(addr, srv.Handler(os.Stdout))
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	p, err := pendulumParams(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators (dt=%.4f, duration=%.1fs)\n\n", p.Dt, p.Duration)
	fmt.Printf("%-10s  %-12s  %-12s  %-12s  %-10s\n", "integrator", "final_theta", "period", "energy_drift", "time_ms")
	fmt.Println(strings.Repeat("-", 64))

	for _, name := range args {
		step, err := newStepper(name)
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := pendulum.Simulate(p, step)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}

		first := result.Samples[0].Energy
		last := result.Samples[len(result.Samples)-1]
		drift := last.Energy - first
		fmt.Printf("%-10s  %12.6f  %12.4f  %12.2e  %10.2f\n",
			name, last.Theta, result.Period, drift, float64(elapsed.Microseconds())/1000)
	}
	return nil
}
