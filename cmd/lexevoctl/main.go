package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"lexevo/internal/evo"
	"lexevo/internal/model"
	"lexevo/internal/storage"
	"lexevo/pkg/lexevo"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "top":
		return runTop(ctx, args[1:])
	case "target":
		return runTarget(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: lexevoctl <init|reset|run|runs|fitness|diagnostics|top|target|export> [flags]", msg)
}

func storeFlags(fs *flag.FlagSet) (storeKind, dbPath *string) {
	storeKind = fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath = fs.String("db-path", "lexevo.db", "sqlite database path")
	return storeKind, dbPath
}

func newClient(storeKind, dbPath, benchmarksDir, exportsDir string) (*lexevo.Client, error) {
	return lexevo.New(lexevo.Options{
		StoreKind:     storeKind,
		DBPath:        dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, "", "")
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, "", "")
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Reset(ctx); err != nil {
		return err
	}
	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	target := fs.String("target", lexevo.DefaultTarget, "target string to evolve toward")
	population := fs.Int("pop", 0, "population size (0 uses the engine default)")
	generations := fs.Int("gens", lexevo.DefaultGenerations, "generation budget")
	crossover := fs.Float64("crossover", 0, "crossover rate (0 uses the engine default)")
	elitism := fs.Float64("elitism", 0, "elitism rate (0 uses the engine default)")
	mutation := fs.Float64("mutation", 0, "mutation rate (0 uses the engine default)")
	fitnessGoal := fs.Int("fitness-goal", 0, "early-stop best fitness goal (0 demands an exact match)")
	seed := fs.Int64("seed", 1, "rng seed")
	quiet := fs.Bool("quiet", false, "suppress per-generation progress output")
	benchmarksDir := fs.String("benchmarks-dir", "benchmarks", "run artifacts directory")
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadRunRequest(*configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(&req, setFlags, flagOverrides{
		RunID:       *runID,
		Target:      *target,
		Population:  *population,
		Generations: *generations,
		Crossover:   *crossover,
		Elitism:     *elitism,
		Mutation:    *mutation,
		FitnessGoal: *fitnessGoal,
		Seed:        *seed,
	})
	if !*quiet {
		req.OnGeneration = func(d model.GenerationDiagnostics) {
			fmt.Printf("generation %d: best=%q fitness=%d mean=%.1f\n", d.Generation, d.BestGene, d.BestFitness, d.MeanFitness)
		}
	}

	client, err := newClient(*storeKind, *dbPath, *benchmarksDir, "")
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	popSize := req.Population
	if popSize <= 0 {
		popSize = evo.DefaultPopulationSize
	}
	evaluations := int64(summary.Generations) * int64(popSize)
	if summary.Solved {
		fmt.Printf("solved in %s generations: %q\n", humanize.Comma(int64(summary.SolvedGeneration)), summary.FinalBestGene)
	} else {
		fmt.Printf("budget exhausted after %s generations: best=%q fitness=%d\n",
			humanize.Comma(int64(summary.Generations)), summary.FinalBestGene, summary.FinalBestFitness)
	}
	fmt.Printf("run-id=%s evaluations~%s artifacts=%s\n", summary.RunID, humanize.Comma(evaluations), summary.ArtifactsDir)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "maximum runs to list")
	benchmarksDir := fs.String("benchmarks-dir", "benchmarks", "run artifacts directory")
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *benchmarksDir, "")
	if err != nil {
		return err
	}
	defer client.Close()

	items, err := client.Runs(ctx, lexevo.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, item := range items {
		status := "unsolved"
		if item.Solved {
			status = "solved"
		}
		fmt.Printf("%s  %s  target=%q pop=%d gens=%d seed=%d best=%d %s\n",
			item.RunID, item.CreatedAtUTC, item.Target, item.Population, item.Generations, item.Seed, item.FinalBestFitness, status)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the most recent run")
	limit := fs.Int("limit", 0, "maximum generations to print (0 prints all)")
	benchmarksDir := fs.String("benchmarks-dir", "benchmarks", "run artifacts directory")
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *benchmarksDir, "")
	if err != nil {
		return err
	}
	defer client.Close()

	history, err := client.FitnessHistory(ctx, lexevo.FitnessHistoryRequest{RunID: *runID, Latest: *latest, Limit: *limit})
	if err != nil {
		return err
	}
	for i, best := range history {
		fmt.Printf("generation %d: best fitness %d\n", i+1, best)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the most recent run")
	limit := fs.Int("limit", 0, "maximum generations to print (0 prints all)")
	benchmarksDir := fs.String("benchmarks-dir", "benchmarks", "run artifacts directory")
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *benchmarksDir, "")
	if err != nil {
		return err
	}
	defer client.Close()

	diagnostics, err := client.Diagnostics(ctx, lexevo.DiagnosticsRequest{RunID: *runID, Latest: *latest, Limit: *limit})
	if err != nil {
		return err
	}
	for _, d := range diagnostics {
		fmt.Printf("generation %d: best=%d mean=%.2f worst=%d distinct=%s gene=%q\n",
			d.Generation, d.BestFitness, d.MeanFitness, d.WorstFitness, humanize.Comma(int64(d.DistinctGenes)), d.BestGene)
	}
	return nil
}

func runTop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the most recent run")
	limit := fs.Int("limit", 0, "maximum records to print (0 prints all)")
	benchmarksDir := fs.String("benchmarks-dir", "benchmarks", "run artifacts directory")
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *benchmarksDir, "")
	if err != nil {
		return err
	}
	defer client.Close()

	top, err := client.TopChromosomes(ctx, lexevo.TopChromosomesRequest{RunID: *runID, Latest: *latest, Limit: *limit})
	if err != nil {
		return err
	}
	for _, record := range top {
		fmt.Printf("#%d fitness=%d gene=%q\n", record.Rank, record.Fitness, record.Chromosome.Gene)
	}
	return nil
}

func runTarget(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("target", flag.ContinueOnError)
	target := fs.String("target", "", "target string")
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, "", "")
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.TargetSummary(ctx, *target)
	if err != nil {
		return err
	}
	status := "unsolved"
	if summary.Solved {
		status = "solved"
	}
	fmt.Printf("target=%q best=%d gene=%q %s\n", summary.Target, summary.BestFitness, summary.BestGene, status)
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the most recent run")
	outDir := fs.String("out-dir", "", "export destination directory")
	benchmarksDir := fs.String("benchmarks-dir", "benchmarks", "run artifacts directory")
	exportsDir := fs.String("exports-dir", "exports", "default export directory")
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *benchmarksDir, *exportsDir)
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.Export(ctx, lexevo.ExportRequest{RunID: *runID, Latest: *latest, OutDir: *outDir})
	if err != nil {
		return err
	}
	fmt.Printf("exported run %s to %s\n", summary.RunID, summary.Directory)
	return nil
}
