package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/avendal/sedlab/internal/batch"
	"github.com/avendal/sedlab/internal/config"
	"github.com/avendal/sedlab/internal/fit"
	"github.com/avendal/sedlab/internal/grid"
	"github.com/avendal/sedlab/internal/isochrone"
	"github.com/avendal/sedlab/internal/passband"
	"github.com/avendal/sedlab/internal/pipeline"
	"github.com/avendal/sedlab/internal/sed"
	"github.com/avendal/sedlab/internal/store"
	"github.com/avendal/sedlab/internal/svgexport"
	"github.com/avendal/sedlab/internal/viz"
)

var (
	dataDir  string
	library  string
	lawName  string
	av       float64
	rv       float64
	distance float64
	bandList string
	bandDir  string
	gridLo   float64
	gridHi   float64
	gridN    int
	workers  int
	// Single-star parameters
	teff float64
	logg float64
	logl float64
	// Star source
	isoFile string
	logAge  float64
	zMetal  float64
	// Config file
	configFile string
	preset     string
	// Output
	svgOut  string
	compare string
	outFile string
	// Color-magnitude axes
	blueBand string
	redBand  string
	// Fit grids
	colorList string
	avMin     float64
	avMax     float64
	avSteps   int
	rvMin     float64
	rvMax     float64
	rvSteps   int
	// Sweep
	sweepSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sedlab",
		Short: "stellar population photometry lab",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "runs", "run directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "push an isochrone population through dust to magnitudes",
		RunE:  runChain,
	}
	runCmd.Flags().StringVar(&library, "library", "planck", "spectral library")
	runCmd.Flags().StringVar(&lawName, "law", "ccm89", "extinction law")
	runCmd.Flags().Float64Var(&av, "av", 1.0, "visual extinction A(V)")
	runCmd.Flags().Float64Var(&rv, "rv", 0, "R(V), 0 means law default")
	runCmd.Flags().Float64Var(&distance, "distance", 10, "distance in pc")
	runCmd.Flags().StringVar(&bandList, "bands", "U,B,V,R,I", "passbands")
	runCmd.Flags().StringVar(&bandDir, "band-dir", "", "extra passband curve directories")
	runCmd.Flags().Float64Var(&gridLo, "grid-lo", 1000, "grid start in angstrom")
	runCmd.Flags().Float64Var(&gridHi, "grid-hi", 30000, "grid end in angstrom")
	runCmd.Flags().IntVar(&gridN, "grid-n", 1200, "grid samples")
	runCmd.Flags().IntVar(&workers, "workers", 0, "parallel stars, 0 means NumCPU")
	runCmd.Flags().StringVar(&isoFile, "isochrone", "demo", "isochrone table (demo or path)")
	runCmd.Flags().Float64Var(&logAge, "age", 8.0, "log10 age in years")
	runCmd.Flags().Float64Var(&zMetal, "z", isochrone.SolarZ, "metal mass fraction")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	sedCmd := &cobra.Command{
		Use:   "sed",
		Short: "plot one star's spectrum before and after dust",
		RunE:  plotStar,
	}
	sedCmd.Flags().Float64Var(&teff, "teff", 5772, "effective temperature in K")
	sedCmd.Flags().Float64Var(&logg, "logg", 4.44, "log surface gravity")
	sedCmd.Flags().Float64Var(&logl, "logl", 0.0, "log luminosity in Lsun")
	sedCmd.Flags().StringVar(&library, "library", "planck", "spectral library")
	sedCmd.Flags().StringVar(&lawName, "law", "ccm89", "extinction law")
	sedCmd.Flags().Float64Var(&av, "av", 1.0, "visual extinction A(V)")
	sedCmd.Flags().Float64Var(&rv, "rv", 0, "R(V), 0 means law default")
	sedCmd.Flags().Float64Var(&distance, "distance", 10, "distance in pc")
	sedCmd.Flags().StringVar(&bandList, "bands", "U,B,V,R,I", "passbands")
	sedCmd.Flags().Float64Var(&gridLo, "grid-lo", 1000, "grid start in angstrom")
	sedCmd.Flags().Float64Var(&gridHi, "grid-hi", 30000, "grid end in angstrom")
	sedCmd.Flags().IntVar(&gridN, "grid-n", 1200, "grid samples")

	zeropointsCmd := &cobra.Command{
		Use:   "zeropoints",
		Short: "print the zeropoint table for a band set",
		RunE:  printZeropointTable,
	}
	zeropointsCmd.Flags().StringVar(&bandList, "bands", "U,B,V,R,I", "passbands")
	zeropointsCmd.Flags().StringVar(&bandDir, "band-dir", "", "extra passband curve directories")

	bandsCmd := &cobra.Command{
		Use:   "bands [name]",
		Short: "list passbands or plot one throughput curve",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listBands,
	}
	bandsCmd.Flags().StringVar(&bandDir, "band-dir", "", "extra passband curve directories")

	lawsCmd := &cobra.Command{
		Use:   "laws",
		Short: "list extinction laws",
		RunE:  listLaws,
	}

	curveCmd := &cobra.Command{
		Use:   "curve [law]",
		Short: "plot extinction curves A(lambda)/A(V)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotCurve,
	}
	curveCmd.Flags().StringVar(&compare, "compare", "", "comma-separated laws to overlay")
	curveCmd.Flags().Float64Var(&rv, "rv", 0, "R(V), 0 means law default")
	curveCmd.Flags().Float64Var(&gridLo, "grid-lo", 1000, "grid start in angstrom")
	curveCmd.Flags().Float64Var(&gridHi, "grid-hi", 12000, "grid end in angstrom")
	curveCmd.Flags().IntVar(&gridN, "grid-n", 600, "grid samples")
	curveCmd.Flags().StringVar(&svgOut, "svg", "", "write the plot to an svg file")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive single-star SED explorer",
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&teff, "teff", 5772, "effective temperature in K")
	liveCmd.Flags().Float64Var(&logg, "logg", 4.44, "log surface gravity")
	liveCmd.Flags().Float64Var(&logl, "logl", 0.0, "log luminosity in Lsun")
	liveCmd.Flags().StringVar(&library, "library", "planck", "spectral library")
	liveCmd.Flags().StringVar(&lawName, "law", "ccm89", "extinction law")
	liveCmd.Flags().Float64Var(&av, "av", 1.0, "visual extinction A(V)")
	liveCmd.Flags().Float64Var(&rv, "rv", 0, "R(V), 0 means law default")
	liveCmd.Flags().StringVar(&bandList, "bands", "B,V,R", "passbands")
	liveCmd.Flags().Float64Var(&gridLo, "grid-lo", 1000, "grid start in angstrom")
	liveCmd.Flags().Float64Var(&gridHi, "grid-hi", 30000, "grid end in angstrom")
	liveCmd.Flags().IntVar(&gridN, "grid-n", 600, "grid samples")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outFile, "out", "", "write to file instead of stdout")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "dump a run's magnitude table as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a run's composite SED",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "write the plot to an svg file")

	cmdCmd := &cobra.Command{
		Use:   "cmd [run_id]",
		Short: "color-magnitude diagram of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdDiagram,
	}
	cmdCmd.Flags().StringVar(&blueBand, "blue", "B", "blue color band")
	cmdCmd.Flags().StringVar(&redBand, "red", "V", "red color band")

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "grid-search A(V) and R(V) against observed colors",
		RunE:  fitStar,
	}
	fitCmd.Flags().Float64Var(&teff, "teff", 5772, "effective temperature in K")
	fitCmd.Flags().Float64Var(&logg, "logg", 4.44, "log surface gravity")
	fitCmd.Flags().Float64Var(&logl, "logl", 0.0, "log luminosity in Lsun")
	fitCmd.Flags().StringVar(&library, "library", "planck", "spectral library")
	fitCmd.Flags().StringVar(&lawName, "law", "ccm89", "extinction law")
	fitCmd.Flags().StringVar(&bandList, "bands", "B,V,I", "passbands")
	fitCmd.Flags().StringVar(&colorList, "colors", "", "observed colors, e.g. B-V=0.65,V-I=0.40")
	fitCmd.Flags().Float64Var(&avMin, "av-min", 0, "A(V) grid start")
	fitCmd.Flags().Float64Var(&avMax, "av-max", 3, "A(V) grid end")
	fitCmd.Flags().IntVar(&avSteps, "av-steps", 16, "A(V) grid points")
	fitCmd.Flags().Float64Var(&rvMin, "rv-min", 0, "R(V) grid start, 0 disables")
	fitCmd.Flags().Float64Var(&rvMax, "rv-max", 0, "R(V) grid end")
	fitCmd.Flags().IntVar(&rvSteps, "rv-steps", 0, "R(V) grid points")
	fitCmd.Flags().Float64Var(&gridLo, "grid-lo", 1000, "grid start in angstrom")
	fitCmd.Flags().Float64Var(&gridHi, "grid-hi", 30000, "grid end in angstrom")
	fitCmd.Flags().IntVar(&gridN, "grid-n", 600, "grid samples")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep A(V) and tabulate reddening statistics",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&library, "library", "planck", "spectral library")
	sweepCmd.Flags().StringVar(&lawName, "law", "ccm89", "extinction law")
	sweepCmd.Flags().StringVar(&bandList, "bands", "B,V", "passbands")
	sweepCmd.Flags().Float64Var(&avMin, "av-min", 0, "A(V) sweep start")
	sweepCmd.Flags().Float64Var(&avMax, "av-max", 3, "A(V) sweep end")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 13, "sweep points")
	sweepCmd.Flags().StringVar(&isoFile, "isochrone", "demo", "isochrone table (demo or path)")
	sweepCmd.Flags().Float64Var(&logAge, "age", 8.0, "log10 age in years")
	sweepCmd.Flags().Float64Var(&zMetal, "z", isochrone.SolarZ, "metal mass fraction")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLAW\tAV\tDIST\tAGE\tBANDS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%.0f pc\t%.1f\t%s\n",
					name, p.Law, p.Av, p.DistancePc, p.Source.LogAge,
					strings.Join(p.Bands, ","))
			}
			return w.Flush()
		},
	}

	isochroneCmd := &cobra.Command{
		Use:   "isochrone [file]",
		Short: "inspect an isochrone table and its column aliases",
		Args:  cobra.MaximumNArgs(1),
		RunE:  inspectIsochrone,
	}
	isochroneCmd.Flags().Float64Var(&logAge, "age", 8.0, "log10 age in years")
	isochroneCmd.Flags().Float64Var(&zMetal, "z", isochrone.SolarZ, "metal mass fraction")

	rootCmd.AddCommand(runCmd, sedCmd, zeropointsCmd, bandsCmd, lawsCmd, curveCmd,
		liveCmd, listCmd, showCmd, exportCmd, exportCSVCmd, plotCmd, cmdCmd,
		fitCmd, batchCmd, sweepCmd, presetsCmd, isochroneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runChain(cmd *cobra.Command, args []string) error {
	// Load preset if specified
	if preset != "" {
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		library = cfg.Library
		lawName = cfg.Law
		av = cfg.Av
		rv = cfg.Rv
		distance = cfg.DistancePc
		bandList = strings.Join(cfg.Bands, ",")
		gridLo = cfg.Grid.Lo
		gridHi = cfg.Grid.Hi
		gridN = cfg.Grid.N
		isoFile = cfg.Source.Isochrone
		logAge = cfg.Source.LogAge
		zMetal = cfg.Source.Z
	}

	// Load config file if specified (CLI flags override config)
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if !cmd.Flags().Changed("library") {
			library = cfg.Library
		}
		if !cmd.Flags().Changed("law") {
			lawName = cfg.Law
		}
		if !cmd.Flags().Changed("av") {
			av = cfg.Av
		}
		if !cmd.Flags().Changed("rv") {
			rv = cfg.Rv
		}
		if !cmd.Flags().Changed("distance") {
			distance = cfg.DistancePc
		}
		if !cmd.Flags().Changed("bands") {
			bandList = strings.Join(cfg.Bands, ",")
		}
		if !cmd.Flags().Changed("grid-lo") {
			gridLo = cfg.Grid.Lo
		}
		if !cmd.Flags().Changed("grid-hi") {
			gridHi = cfg.Grid.Hi
		}
		if !cmd.Flags().Changed("grid-n") {
			gridN = cfg.Grid.N
		}
		if !cmd.Flags().Changed("workers") {
			workers = cfg.Workers
		}
		if !cmd.Flags().Changed("isochrone") {
			isoFile = cfg.Source.Isochrone
		}
		if !cmd.Flags().Changed("age") {
			logAge = cfg.Source.LogAge
		}
		if !cmd.Flags().Changed("z") {
			zMetal = cfg.Source.Z
		}
		if cfg.StoreDir != "" && !cmd.Flags().Changed("data") {
			dataDir = cfg.StoreDir
		}
		if len(cfg.BandDirs) > 0 && !cmd.Flags().Changed("band-dir") {
			bandDir = strings.Join(cfg.BandDirs, ",")
		}
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	stars, err := loadStars(isoFile, logAge, zMetal)
	if err != nil {
		return err
	}

	registry := pipeline.NewRegistry()

	lib, err := registry.GetLibrary(library)
	if err != nil {
		return err
	}
	law, err := registry.GetLaw(lawName)
	if err != nil {
		return err
	}
	bands, err := loadBands(splitList(bandList), splitList(bandDir))
	if err != nil {
		return err
	}

	runCfg := pipeline.Config{
		Library:    library,
		Law:        lawName,
		Av:         av,
		Rv:         rv,
		DistancePc: distance,
		Bands:      splitList(bandList),
		GridLo:     gridLo,
		GridHi:     gridHi,
		GridN:      gridN,
		Workers:    workers,
	}

	p, err := pipeline.New(lib, law, bands, runCfg)
	if err != nil {
		return err
	}
	for _, m := range registry.DefaultMetrics() {
		p.AddMetric(m)
	}

	fmt.Printf("running chain: %d stars through %s + %s into %d bands...\n",
		len(stars), library, lawName, len(bands))
	start := time.Now()

	result, err := p.Run(context.Background(), stars)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(p.Config(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("stars: %d (%d skipped)\n", len(result.Rows), result.StarsSkipped)

	fmt.Println("\nzeropoints:")
	if err := printZeropoints(result.Zeropoints); err != nil {
		return err
	}

	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Stats) {
		fmt.Printf("  %s: %.6f\n", name, result.Stats[name])
	}

	if result.StarsSkipped > 0 {
		fmt.Println("\nskipped:")
		for _, serr := range result.Errors {
			fmt.Printf("  %v\n", serr)
		}
	}

	return nil
}

func plotStar(cmd *cobra.Command, args []string) error {
	registry := pipeline.NewRegistry()

	lib, err := registry.GetLibrary(library)
	if err != nil {
		return err
	}
	law, err := registry.GetLaw(lawName)
	if err != nil {
		return err
	}
	if rv == 0 && law != nil {
		rv = law.RvDefault()
	}

	star := sed.Star{Teff: teff, LogG: logg, LogL: logl}
	spec, err := lib.Spectrum(star)
	if err != nil {
		return err
	}

	wave := grid.Logspace(gridLo, gridHi, gridN)
	intrinsic, err := spec.Resample(wave)
	if err != nil {
		return err
	}
	if distance != 10 {
		f := 10 / distance
		intrinsic.Scale(f * f)
	}
	attenuated, err := intrinsic.Attenuate(law, av, rv)
	if err != nil {
		return err
	}

	fmt.Printf("star: teff=%.0fK logg=%.2f logL=%.2f at %.0f pc\n", teff, logg, logl, distance)
	fmt.Printf("dust: %s av=%.2f rv=%.2f\n\n", lawName, av, rv)
	fmt.Println(viz.SEDPlot(wave, intrinsic.Flux, attenuated.Flux))

	bands, err := loadBands(splitList(bandList), nil)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BAND\tPIVOT\tVEGA\tAB\tST")
	for _, b := range bands {
		vega, err := b.Mag(attenuated, passband.Vega)
		if err != nil {
			fmt.Fprintf(w, "%s\t%.1f\t--\t--\t--\n", b.Name, b.PivotWave())
			continue
		}
		ab, _ := b.Mag(attenuated, passband.AB)
		st, _ := b.Mag(attenuated, passband.ST)
		fmt.Fprintf(w, "%s\t%.1f\t%.3f\t%.3f\t%.3f\n", b.Name, b.PivotWave(), vega, ab, st)
	}
	return w.Flush()
}

func printZeropointTable(cmd *cobra.Command, args []string) error {
	bands, err := loadBands(splitList(bandList), splitList(bandDir))
	if err != nil {
		return err
	}

	infos := make([]pipeline.BandInfo, len(bands))
	for i, b := range bands {
		ab, err := b.Zeropoint(passband.AB)
		if err != nil {
			return err
		}
		st, err := b.Zeropoint(passband.ST)
		if err != nil {
			return err
		}
		vega, err := b.Zeropoint(passband.Vega)
		if err != nil {
			return err
		}
		infos[i] = pipeline.BandInfo{
			Band:     b.Name,
			Detector: b.Detector.String(),
			Pivot:    b.PivotWave(),
			Width:    b.EffectiveWidth(),
			AB:       ab,
			ST:       st,
			Vega:     vega,
		}
	}
	return printZeropoints(infos)
}

func listBands(cmd *cobra.Command, args []string) error {
	dirs := splitList(bandDir)

	if len(args) == 1 {
		b, err := passband.Find(args[0], dirs)
		if err != nil {
			return err
		}
		lo, hi := b.WaveRange()
		fmt.Printf("band: %s (%s detector)\n", b.Name, b.Detector)
		fmt.Printf("range: %.0f..%.0f A, pivot %.1f A, fwhm %.1f A\n\n",
			lo, hi, b.PivotWave(), b.Fwhm())
		fmt.Println(viz.ThroughputPlot(b.Wave, b.Throughput, b.Name))
		return nil
	}

	names := passband.BuiltinNames()
	bands := make([]*passband.Passband, 0, len(names))
	for _, name := range names {
		b, err := passband.Builtin(name)
		if err != nil {
			return err
		}
		bands = append(bands, b)
	}
	for _, dir := range dirs {
		extra, err := passband.LoadDir(dir)
		if err != nil {
			return err
		}
		bands = append(bands, extra...)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDETECTOR\tRANGE\tPIVOT\tFWHM")
	for _, b := range bands {
		lo, hi := b.WaveRange()
		fmt.Fprintf(w, "%s\t%s\t%.0f..%.0f\t%.1f\t%.1f\n",
			b.Name, b.Detector, lo, hi, b.PivotWave(), b.Fwhm())
	}
	return w.Flush()
}

func listLaws(cmd *cobra.Command, args []string) error {
	registry := pipeline.NewRegistry()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LAW\tRV\tRANGE")
	for _, name := range registry.ListLaws() {
		law, err := registry.GetLaw(name)
		if err != nil {
			return err
		}
		lo, hi := law.WaveRange()
		fmt.Fprintf(w, "%s\t%.2f\t%.0f..%.0f A\n", name, law.RvDefault(), lo, hi)
	}
	return w.Flush()
}

func plotCurve(cmd *cobra.Command, args []string) error {
	names := splitList(compare)
	if len(names) == 0 {
		if len(args) == 0 {
			return fmt.Errorf("name a law or pass --compare")
		}
		names = args
	}

	registry := pipeline.NewRegistry()
	wave := grid.Logspace(gridLo, gridHi, gridN)

	curves := make(map[string][]float64, len(names))
	for _, name := range names {
		law, err := registry.GetLaw(name)
		if err != nil {
			return err
		}
		if law == nil {
			return fmt.Errorf("no curve for %q", name)
		}
		rvUse := rv
		if rvUse == 0 {
			rvUse = law.RvDefault()
		}
		alav, err := law.AlAv(wave, rvUse)
		if err != nil {
			return err
		}
		curves[name] = alav
	}

	if len(curves) == 1 {
		fmt.Println(viz.CurvePlot(wave, curves[names[0]], names[0]))
	} else {
		fmt.Println(viz.CurveComparePlot(wave, curves))
	}

	if svgOut != "" {
		var svg string
		if len(curves) == 1 {
			svg = svgexport.Curve(wave, curves[names[0]], names[0], 900, 480)
		} else {
			palette := []string{"#4aa8ff", "#ff5c5c", "#00ff88", "#ffd24a", "#d06bff"}
			sorted := make([]string, 0, len(curves))
			for name := range curves {
				sorted = append(sorted, name)
			}
			sort.Strings(sorted)
			series := make([]svgexport.Series, len(sorted))
			for i, name := range sorted {
				series[i] = svgexport.Series{
					Name:   name,
					Y:      curves[name],
					Stroke: palette[i%len(palette)],
				}
			}
			svg = svgexport.Chart(wave, series, "wavelength [A]", "A(lambda)/A(V)", 900, 480)
		}
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	registry := pipeline.NewRegistry()

	lib, err := registry.GetLibrary(library)
	if err != nil {
		return err
	}
	bands, err := loadBands(splitList(bandList), nil)
	if err != nil {
		return err
	}

	cfg := pipeline.Config{
		Library: library,
		Law:     lawName,
		Av:      av,
		Rv:      rv,
		GridLo:  gridLo,
		GridHi:  gridHi,
		GridN:   gridN,
	}
	star := sed.Star{Teff: teff, LogG: logg, LogL: logl}

	m := viz.NewLive(lib, bands, cfg, star)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLIBRARY\tLAW\tAV\tDIST\tSTARS\tSKIPPED\tTIME")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.0f pc\t%d\t%d\t%s\n",
			run.ID,
			run.Library,
			run.Law,
			run.Av,
			run.DistancePc,
			run.Stars,
			run.Skipped,
			run.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("library: %s\n", meta.Library)
	fmt.Printf("law: %s (av=%.2f rv=%.2f)\n", meta.Law, meta.Av, meta.Rv)
	fmt.Printf("distance: %.0f pc\n", meta.DistancePc)
	fmt.Printf("bands: %s\n", strings.Join(meta.Bands, ","))
	fmt.Printf("stars: %d (%d skipped)\n", meta.Stars, meta.Skipped)
	fmt.Printf("time: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))

	if len(meta.Stats) > 0 {
		fmt.Println("\nmetrics:")
		for _, name := range sortedKeys(meta.Stats) {
			fmt.Printf("  %s: %.6f\n", name, meta.Stats[name])
		}
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	data, err := st.LoadExport(args[0])
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := store.ExportJSON(outFile, data); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
		return nil
	}
	return store.ExportJSONStdout(data)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	header, rows, err := st.LoadTable(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	wave, intrinsic, attenuated, err := st.LoadSED(runID)
	if err != nil {
		return err
	}
	if len(wave) == 0 {
		return fmt.Errorf("run %s has no composite spectra", runID)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("dust: %s av=%.2f\n\n", meta.Law, meta.Av)
	fmt.Println(viz.SEDPlot(wave, intrinsic, attenuated))

	if svgOut != "" {
		svg := svgexport.SED(wave, intrinsic, attenuated, 900, 480)
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	return nil
}

func cmdDiagram(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	header, rows, err := st.LoadTable(runID)
	if err != nil {
		return err
	}

	blues := store.Column(header, rows, blueBand+"_vega")
	reds := store.Column(header, rows, redBand+"_vega")
	if len(blues) == 0 || len(blues) != len(reds) {
		return fmt.Errorf("run %s has no %s/%s magnitudes", runID, blueBand, redBand)
	}

	points := make([]viz.ScatterPoint, len(blues))
	for i := range blues {
		points[i] = viz.ScatterPoint{X: blues[i] - reds[i], Y: reds[i]}
	}

	fmt.Printf("color-magnitude diagram: %s (%d stars)\n\n", runID, len(points))
	fmt.Println(viz.CMDScatter(points, 70, 20))
	fmt.Printf("\nx: %s-%s color  y: %s vega mag, bright end up\n", blueBand, redBand, redBand)
	return nil
}

func fitStar(cmd *cobra.Command, args []string) error {
	colors, err := parseColors(colorList)
	if err != nil {
		return err
	}

	registry := pipeline.NewRegistry()
	lib, err := registry.GetLibrary(library)
	if err != nil {
		return err
	}
	law, err := registry.GetLaw(lawName)
	if err != nil {
		return err
	}
	if law == nil {
		return fmt.Errorf("fit needs an extinction law")
	}

	cfg := pipeline.Config{
		Library: library,
		Law:     lawName,
		Bands:   splitList(bandList),
		GridLo:  gridLo,
		GridHi:  gridHi,
		GridN:   gridN,
	}
	star := sed.Star{Teff: teff, LogG: logg, LogL: logl}

	avGrid := grid.Linspace(avMin, avMax, avSteps)
	var rvGrid []float64
	if rvSteps > 1 && rvMax > rvMin {
		rvGrid = grid.Linspace(rvMin, rvMax, rvSteps)
	}

	fmt.Printf("fitting %d colors over %d grid points...\n",
		len(colors), len(avGrid)*max(len(rvGrid), 1))
	start := time.Now()

	bestAv, bestRv, residual, err := fit.FitReddening(
		context.Background(), lib, law, cfg, star, colors, avGrid, rvGrid)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start))
	fmt.Printf("best fit: av=%.3f rv=%.2f (residual %.3e)\n", bestAv, bestRv, residual)
	if bestRv > 0 {
		fmt.Printf("e(b-v): %.3f\n", bestAv/bestRv)
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := batch.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, err := batch.RunScenario(context.Background(), scenario, st)
	if err != nil {
		return err
	}

	fmt.Printf("\nscenario %s: %d steps completed\n", scenario.Name, len(results))
	for i, res := range results {
		if res.RunID != "" {
			fmt.Printf("  step %d -> %s\n", i+1, res.RunID)
		} else {
			fmt.Printf("  step %d: %d stars (not saved)\n", i+1, len(res.Result.Rows))
		}
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	stars, err := loadStars(isoFile, logAge, zMetal)
	if err != nil {
		return err
	}

	sweep := &batch.AvSweep{
		Library:  library,
		Law:      lawName,
		Bands:    splitList(bandList),
		AvMin:    avMin,
		AvMax:    avMax,
		NumSteps: sweepSteps,
		Stars:    stars,
	}

	results, err := batch.RunSweep(context.Background(), sweep)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AV\tE(B-V)\tDIMMING\tSKIPPED")
	excess := make([]float64, len(results))
	for i, r := range results {
		excess[i] = r.ColorExcess
		fmt.Fprintf(w, "%.3f\t%.4f\t%.4f\t%d\n", r.Av, r.ColorExcess, r.Dimming, r.Skipped)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	graph := asciigraph.Plot(excess,
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("color excess vs A(V), %s", lawName)),
	)
	fmt.Println(graph)
	return nil
}

func inspectIsochrone(cmd *cobra.Command, args []string) error {
	name := "demo"
	if len(args) == 1 {
		name = args[0]
	}

	var (
		table *isochrone.Table
		err   error
	)
	if name == "demo" {
		table, err = isochrone.Demo()
	} else {
		table, err = isochrone.Load(name)
	}
	if err != nil {
		return err
	}

	fmt.Printf("table: %s (%d blocks)\n", name, len(table.Blocks))
	ages := table.Ages()
	parts := make([]string, len(ages))
	for i, a := range ages {
		parts[i] = strconv.FormatFloat(a, 'f', 2, 64)
	}
	fmt.Printf("ages: %s\n", strings.Join(parts, " "))

	block, dist := table.Nearest(logAge, zMetal)
	if block == nil {
		return isochrone.ErrNoBlocks
	}
	fmt.Printf("\nnearest block to age=%.2f z=%.4f: logAge=%.2f z=%.4f, %d rows (distance %.3f)\n",
		logAge, zMetal, block.LogAge, block.Z, len(block.Rows), dist)

	fmt.Println("\ncolumns:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RAW\tCANONICAL\tALIASED")
	for i, col := range block.Columns {
		raw := col
		if i < len(block.Raw) {
			raw = block.Raw[i]
		}
		aliased := ""
		if raw != col {
			aliased = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", raw, col, aliased)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stars, err := block.Stars()
	if err != nil {
		return err
	}
	n := len(stars)
	if n > 5 {
		n = 5
	}
	fmt.Println("\nstars:")
	sw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(sw, "TEFF\tLOGG\tLOGL\tMASS\tSTAGE")
	for _, s := range stars[:n] {
		fmt.Fprintf(sw, "%.0f\t%.2f\t%.2f\t%.2f\t%s\n", s.Teff, s.LogG, s.LogL, s.Mass, s.Label)
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	if len(stars) > n {
		fmt.Printf("... %d more\n", len(stars)-n)
	}
	return nil
}

// loadStars resolves the star source: the embedded demo table or a
// file, narrowed to the block nearest the requested age and z.
func loadStars(iso string, logAge, z float64) ([]sed.Star, error) {
	var (
		table *isochrone.Table
		err   error
	)
	if iso == "" || iso == "demo" {
		table, err = isochrone.Demo()
	} else {
		table, err = isochrone.Load(iso)
	}
	if err != nil {
		return nil, err
	}

	block, dist := table.Nearest(logAge, z)
	if block == nil {
		return nil, isochrone.ErrNoBlocks
	}
	if dist > 0.5 {
		return nil, fmt.Errorf("no isochrone block near logAge=%.2f z=%.4f (closest is %.2f away)", logAge, z, dist)
	}
	if dist > 0.01 {
		fmt.Printf("note: using block logAge=%.2f z=%.4f (distance %.2f)\n", block.LogAge, block.Z, dist)
	}
	return block.Stars()
}

func loadBands(names, dirs []string) ([]*passband.Passband, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no passbands selected")
	}
	bands := make([]*passband.Passband, len(names))
	for i, name := range names {
		b, err := passband.Find(name, dirs)
		if err != nil {
			return nil, err
		}
		bands[i] = b
	}
	return bands, nil
}

func printZeropoints(infos []pipeline.BandInfo) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BAND\tDETECTOR\tPIVOT\tWIDTH\tAB\tST\tVEGA")
	for _, zp := range infos {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%.4f\t%.4f\t%.4f\n",
			zp.Band, zp.Detector, zp.Pivot, zp.Width, zp.AB, zp.ST, zp.Vega)
	}
	return w.Flush()
}

// parseColors reads "B-V=0.65,V-I=0.40" into observed colors.
func parseColors(s string) ([]fit.Color, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("no colors given, use --colors B-V=0.65")
	}
	colors := make([]fit.Color, len(parts))
	for i, part := range parts {
		expr, val, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("bad color %q, want BAND-BAND=VALUE", part)
		}
		blue, red, ok := strings.Cut(expr, "-")
		if !ok || blue == "" || red == "" {
			return nil, fmt.Errorf("bad color %q, want BAND-BAND=VALUE", part)
		}
		observed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("bad color value %q: %w", val, err)
		}
		colors[i] = fit.Color{Blue: blue, Red: red, Observed: observed}
	}
	return colors, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
