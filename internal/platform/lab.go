package platform

import (
	"context"
	"fmt"
	"sync"

	"lexevo/internal/evo"
	"lexevo/internal/model"
	"lexevo/internal/storage"
)

type Config struct {
	Store storage.Store
}

type StopReason string

const (
	StopReasonNormal   StopReason = "normal"
	StopReasonShutdown StopReason = "shutdown"
)

type EvolutionConfig struct {
	RunID          string
	Target         string
	PopulationSize int
	Generations    int
	CrossoverRate  float64
	ElitismRate    float64
	MutationRate   float64
	FitnessGoal    int
	Seed           int64
	Control        chan evo.MonitorCommand
	OnGeneration   func(model.GenerationDiagnostics)
}

type EvolutionResult struct {
	RunID                 string
	BestByGeneration      []int
	GenerationDiagnostics []model.GenerationDiagnostics
	Generations           int
	Solved                bool
	SolvedGeneration      int
	BestFitness           int
	BestGene              string
	TopFinal              []model.TopChromosomeRecord
}

// Lab owns the store and the control channels of active runs.
type Lab struct {
	store storage.Store

	mu             sync.RWMutex
	started        bool
	lastStopReason StopReason
	runs           map[string]chan evo.MonitorCommand
}

func NewLab(cfg Config) *Lab {
	return &Lab{
		store:          cfg.Store,
		runs:           make(map[string]chan evo.MonitorCommand),
		lastStopReason: StopReasonNormal,
	}
}

func (l *Lab) Init(ctx context.Context) error {
	if l.store == nil {
		return fmt.Errorf("store is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return nil
	}
	if err := l.store.Init(ctx); err != nil {
		return err
	}
	l.started = true
	return nil
}

func (l *Lab) Reset(ctx context.Context) error {
	if err := l.StopWithReason(StopReasonShutdown); err != nil {
		return err
	}
	if resetter, ok := l.store.(storage.Resetter); ok {
		if err := resetter.Reset(ctx); err != nil {
			return err
		}
	}
	return l.Init(ctx)
}

func (l *Lab) Stop() {
	_ = l.StopWithReason(StopReasonNormal)
}

func (l *Lab) StopWithReason(reason StopReason) error {
	if reason == "" {
		reason = StopReasonNormal
	}
	switch reason {
	case StopReasonNormal, StopReasonShutdown:
	default:
		return fmt.Errorf("unsupported stop reason: %s", reason)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, control := range l.runs {
		select {
		case control <- evo.CommandStop:
		default:
		}
	}
	l.started = false
	l.lastStopReason = reason
	l.runs = make(map[string]chan evo.MonitorCommand)
	return nil
}

func (l *Lab) Started() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.started
}

func (l *Lab) LastStopReason() StopReason {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastStopReason
}

// RunEvolution drives a full run and persists its outcome: the final
// population snapshot, the fitness history, per-generation diagnostics, the
// top chromosomes, and the rolled-up target summary.
func (l *Lab) RunEvolution(ctx context.Context, cfg EvolutionConfig) (EvolutionResult, error) {
	runID := cfg.RunID
	if runID == "" {
		return EvolutionResult{}, fmt.Errorf("run id is required")
	}
	if !l.Started() {
		return EvolutionResult{}, fmt.Errorf("lab is not initialized")
	}

	control := cfg.Control
	if control == nil {
		control = make(chan evo.MonitorCommand, 16)
	}
	if err := l.registerRunControl(runID, control); err != nil {
		return EvolutionResult{}, err
	}
	defer l.unregisterRunControl(runID)

	monitor, err := evo.NewPopulationMonitor(evo.MonitorConfig{
		Target:         cfg.Target,
		PopulationSize: cfg.PopulationSize,
		Generations:    cfg.Generations,
		CrossoverRate:  cfg.CrossoverRate,
		ElitismRate:    cfg.ElitismRate,
		MutationRate:   cfg.MutationRate,
		FitnessGoal:    cfg.FitnessGoal,
		Seed:           cfg.Seed,
		Control:        control,
		OnGeneration:   cfg.OnGeneration,
	})
	if err != nil {
		return EvolutionResult{}, err
	}

	result, err := monitor.Run(ctx)
	if err != nil {
		return EvolutionResult{}, err
	}

	final := make([]model.Chromosome, 0, len(result.FinalPopulation))
	for _, member := range result.FinalPopulation {
		final = append(final, model.Chromosome{Gene: member.Gene(), Fitness: member.Fitness()})
	}
	if err := l.store.SavePopulation(ctx, model.PopulationSnapshot{
		VersionedRecord: currentVersion(),
		ID:              runID,
		Target:          cfg.Target,
		Generation:      result.Generations,
		Chromosomes:     final,
	}); err != nil {
		return EvolutionResult{}, err
	}
	if err := l.store.SaveFitnessHistory(ctx, runID, result.BestByGeneration); err != nil {
		return EvolutionResult{}, err
	}
	if err := l.store.SaveGenerationDiagnostics(ctx, runID, result.GenerationDiagnostics); err != nil {
		return EvolutionResult{}, err
	}

	top := topChromosomes(final, 5)
	if err := l.store.SaveTopChromosomes(ctx, runID, top); err != nil {
		return EvolutionResult{}, err
	}

	out := EvolutionResult{
		RunID:                 runID,
		BestByGeneration:      result.BestByGeneration,
		GenerationDiagnostics: result.GenerationDiagnostics,
		Generations:           result.Generations,
		Solved:                result.Solved,
		SolvedGeneration:      result.SolvedGeneration,
		TopFinal:              top,
	}
	if len(final) > 0 {
		out.BestFitness = final[0].Fitness
		out.BestGene = final[0].Gene
		if err := l.updateTargetSummary(ctx, cfg.Target, final[0]); err != nil {
			return EvolutionResult{}, err
		}
	}
	return out, nil
}

func (l *Lab) PauseRun(runID string) error {
	return l.sendRunCommand(runID, evo.CommandPause)
}

func (l *Lab) ContinueRun(runID string) error {
	return l.sendRunCommand(runID, evo.CommandContinue)
}

func (l *Lab) StopRun(runID string) error {
	return l.sendRunCommand(runID, evo.CommandStop)
}

func (l *Lab) registerRunControl(runID string, control chan evo.MonitorCommand) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.started {
		return fmt.Errorf("lab is not initialized")
	}
	if _, exists := l.runs[runID]; exists {
		return fmt.Errorf("run already active: %s", runID)
	}
	l.runs[runID] = control
	return nil
}

func (l *Lab) unregisterRunControl(runID string) {
	l.mu.Lock()
	delete(l.runs, runID)
	l.mu.Unlock()
}

func (l *Lab) sendRunCommand(runID string, cmd evo.MonitorCommand) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	l.mu.RLock()
	control, ok := l.runs[runID]
	l.mu.RUnlock()
	if !ok {
		return fmt.Errorf("run not active: %s", runID)
	}
	select {
	case control <- cmd:
		return nil
	default:
		return fmt.Errorf("run control channel is full: %s", runID)
	}
}

// updateTargetSummary folds a run's best chromosome into the per-target
// best-ever record. Lower fitness wins.
func (l *Lab) updateTargetSummary(ctx context.Context, target string, best model.Chromosome) error {
	summary, ok, err := l.store.GetTargetSummary(ctx, target)
	if err != nil {
		return err
	}
	if !ok {
		summary = model.TargetSummary{
			VersionedRecord: currentVersion(),
			Target:          target,
			Description:     fmt.Sprintf("best observed result for target %q", target),
			BestFitness:     best.Fitness,
			BestGene:        best.Gene,
		}
	} else if best.Fitness < summary.BestFitness {
		summary.BestFitness = best.Fitness
		summary.BestGene = best.Gene
	}
	summary.Solved = summary.BestFitness == 0
	return l.store.SaveTargetSummary(ctx, summary)
}

func topChromosomes(sorted []model.Chromosome, limit int) []model.TopChromosomeRecord {
	if len(sorted) < limit {
		limit = len(sorted)
	}
	top := make([]model.TopChromosomeRecord, 0, limit)
	for i := 0; i < limit; i++ {
		top = append(top, model.TopChromosomeRecord{
			Rank:       i + 1,
			Fitness:    sorted[i].Fitness,
			Chromosome: sorted[i],
		})
	}
	return top
}

func currentVersion() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
}
