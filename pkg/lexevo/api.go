// Package lexevo is the embeddable client for running and inspecting
// string-evolution experiments.
package lexevo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"lexevo/internal/evo"
	"lexevo/internal/model"
	"lexevo/internal/platform"
	"lexevo/internal/stats"
	"lexevo/internal/storage"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultExportsDir    = "exports"
	defaultDBPath        = "lexevo.db"

	DefaultTarget      = "Hello, world!"
	DefaultGenerations = 1000
)

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
	ExportsDir    string
}

type Client struct {
	store storage.Store
	lab   *platform.Lab

	benchmarksDir string
	exportsDir    string
}

type RunRequest struct {
	RunID       string
	Target      string
	Population  int
	Generations int

	// Rates of zero fall back to the engine defaults. To run with a truly
	// zero rate, pass a negative value; it biases the branch off exactly
	// like the engine treats out-of-range rates.
	Crossover float64
	Elitism   float64
	Mutation  float64

	FitnessGoal  int
	Seed         int64
	OnGeneration func(model.GenerationDiagnostics)
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	BestByGeneration []int
	Generations      int
	Solved           bool
	SolvedGeneration int
	FinalBestFitness int
	FinalBestGene    string
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Target           string
	Seed             int64
	Population       int
	Generations      int
	Solved           bool
	FinalBestFitness int
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type TopChromosomesRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type TargetSummaryItem struct {
	Target      string
	Description string
	BestFitness int
	BestGene    string
	Solved      bool
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	benchmarksDir := opts.BenchmarksDir
	if benchmarksDir == "" {
		benchmarksDir = defaultBenchmarksDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		benchmarksDir: benchmarksDir,
		exportsDir:    exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensureLab(ctx)
	return err
}

func (c *Client) Reset(ctx context.Context) error {
	lab, err := c.ensureLab(ctx)
	if err != nil {
		return err
	}
	return lab.Reset(ctx)
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Target == "" {
		req.Target = DefaultTarget
	}
	if req.Population <= 0 {
		req.Population = evo.DefaultPopulationSize
	}
	if req.Generations <= 0 {
		req.Generations = DefaultGenerations
	}
	if req.Crossover == 0 {
		req.Crossover = evo.DefaultCrossoverRate
	}
	if req.Elitism == 0 {
		req.Elitism = evo.DefaultElitismRate
	}
	if req.Mutation == 0 {
		req.Mutation = evo.DefaultMutationRate
	}
	if req.FitnessGoal < 0 {
		return RunSummary{}, errors.New("fitness goal must be >= 0")
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	lab, err := c.ensureLab(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	now := time.Now().UTC()
	result, err := lab.RunEvolution(ctx, platform.EvolutionConfig{
		RunID:          runID,
		Target:         req.Target,
		PopulationSize: req.Population,
		Generations:    req.Generations,
		CrossoverRate:  req.Crossover,
		ElitismRate:    req.Elitism,
		MutationRate:   req.Mutation,
		FitnessGoal:    req.FitnessGoal,
		Seed:           req.Seed,
		OnGeneration:   req.OnGeneration,
	})
	if err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.benchmarksDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:          runID,
			Target:         req.Target,
			PopulationSize: req.Population,
			Generations:    req.Generations,
			CrossoverRate:  req.Crossover,
			ElitismRate:    req.Elitism,
			MutationRate:   req.Mutation,
			FitnessGoal:    req.FitnessGoal,
			Seed:           req.Seed,
		},
		BestByGeneration:      result.BestByGeneration,
		GenerationDiagnostics: result.GenerationDiagnostics,
		FinalBestFitness:      result.BestFitness,
		FinalBestGene:         result.BestGene,
		Solved:                result.Solved,
		SolvedGeneration:      result.SolvedGeneration,
		TopChromosomes:        result.TopFinal,
	})
	if err != nil {
		return RunSummary{}, err
	}

	if err := stats.AppendRunIndex(c.benchmarksDir, stats.RunIndexEntry{
		RunID:            runID,
		Target:           req.Target,
		PopulationSize:   req.Population,
		Generations:      result.Generations,
		Seed:             req.Seed,
		Solved:           result.Solved,
		FinalBestFitness: result.BestFitness,
		CreatedAtUTC:     now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            runID,
		ArtifactsDir:     filepath.Clean(runDir),
		BestByGeneration: append([]int(nil), result.BestByGeneration...),
		Generations:      result.Generations,
		Solved:           result.Solved,
		SolvedGeneration: result.SolvedGeneration,
		FinalBestFitness: result.BestFitness,
		FinalBestGene:    result.BestGene,
	}, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:            e.RunID,
			CreatedAtUTC:     e.CreatedAtUTC,
			Target:           e.Target,
			Seed:             e.Seed,
			Population:       e.PopulationSize,
			Generations:      e.Generations,
			Solved:           e.Solved,
			FinalBestFitness: e.FinalBestFitness,
		})
	}
	return out, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID := req.RunID
	if req.Latest {
		latest, err := c.latestRunID()
		if err != nil {
			return ExportSummary{}, err
		}
		runID = latest
	}

	exportedDir, err := stats.ExportRunArtifacts(c.benchmarksDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]int, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, req.Limit)
	if err != nil {
		return nil, err
	}

	if _, err := c.ensureLab(ctx); err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]int(nil), history...), nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.GenerationDiagnostics, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, req.Limit)
	if err != nil {
		return nil, err
	}

	if _, err := c.ensureLab(ctx); err != nil {
		return nil, err
	}
	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	out := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(out, diagnostics)
	return out, nil
}

func (c *Client) TopChromosomes(ctx context.Context, req TopChromosomesRequest) ([]model.TopChromosomeRecord, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, req.Limit)
	if err != nil {
		return nil, err
	}

	if _, err := c.ensureLab(ctx); err != nil {
		return nil, err
	}
	top, ok, err := c.store.GetTopChromosomes(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("top chromosomes not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(top) > req.Limit {
		top = top[:req.Limit]
	}
	out := make([]model.TopChromosomeRecord, len(top))
	copy(out, top)
	return out, nil
}

func (c *Client) TargetSummary(ctx context.Context, target string) (TargetSummaryItem, error) {
	if target == "" {
		return TargetSummaryItem{}, errors.New("target is required")
	}
	if _, err := c.ensureLab(ctx); err != nil {
		return TargetSummaryItem{}, err
	}
	summary, ok, err := c.store.GetTargetSummary(ctx, target)
	if err != nil {
		return TargetSummaryItem{}, err
	}
	if !ok {
		return TargetSummaryItem{}, fmt.Errorf("target summary not found: %q", target)
	}
	return TargetSummaryItem{
		Target:      summary.Target,
		Description: summary.Description,
		BestFitness: summary.BestFitness,
		BestGene:    summary.BestGene,
		Solved:      summary.Solved,
	}, nil
}

func (c *Client) resolveRunID(runID string, latest bool, limit int) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if limit < 0 {
		return "", errors.New("limit must be >= 0")
	}
	if latest {
		return c.latestRunID()
	}
	if runID == "" {
		return "", errors.New("run id or latest is required")
	}
	return runID, nil
}

func (c *Client) latestRunID() (string, error) {
	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs available")
	}
	return entries[0].RunID, nil
}

func (c *Client) ensureLab(ctx context.Context) (*platform.Lab, error) {
	if c.lab != nil {
		return c.lab, nil
	}
	lab := platform.NewLab(platform.Config{Store: c.store})
	if err := lab.Init(ctx); err != nil {
		return nil, err
	}
	c.lab = lab
	return c.lab, nil
}
