package evo

import (
	"context"
	"fmt"
	"math/rand"

	"lexevo/internal/model"
)

// MonitorCommand is an out-of-band control signal for a running evolution.
type MonitorCommand string

const (
	CommandPause    MonitorCommand = "pause"
	CommandContinue MonitorCommand = "continue"
	CommandStop     MonitorCommand = "stop"
)

type MonitorConfig struct {
	Target         string
	PopulationSize int
	Generations    int
	CrossoverRate  float64
	ElitismRate    float64
	MutationRate   float64

	// FitnessGoal stops the run once the best fitness reaches it or better.
	// Zero demands an exact match.
	FitnessGoal int

	Seed    int64
	Control chan MonitorCommand

	// OnGeneration, when set, observes each generation's diagnostics before
	// the next evolve step. This is where a driver prints progress.
	OnGeneration func(model.GenerationDiagnostics)
}

type RunResult struct {
	BestByGeneration      []int
	GenerationDiagnostics []model.GenerationDiagnostics
	FinalPopulation       []Chromosome
	Generations           int
	Solved                bool
	SolvedGeneration      int
}

// PopulationMonitor drives a population through its generation budget,
// honoring cancellation and pause/continue/stop commands.
type PopulationMonitor struct {
	cfg MonitorConfig
	rng *rand.Rand
}

func NewPopulationMonitor(cfg MonitorConfig) (*PopulationMonitor, error) {
	if cfg.Target == "" {
		return nil, fmt.Errorf("target is required")
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0")
	}
	if cfg.FitnessGoal < 0 {
		return nil, fmt.Errorf("fitness goal must be >= 0")
	}

	return &PopulationMonitor{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

func (m *PopulationMonitor) Run(ctx context.Context) (RunResult, error) {
	population := NewPopulation(m.rng, PopulationConfig{
		Target:    m.cfg.Target,
		Size:      m.cfg.PopulationSize,
		Crossover: m.cfg.CrossoverRate,
		Elitism:   m.cfg.ElitismRate,
		Mutation:  m.cfg.MutationRate,
	})

	result := RunResult{
		BestByGeneration:      make([]int, 0, m.cfg.Generations),
		GenerationDiagnostics: make([]model.GenerationDiagnostics, 0, m.cfg.Generations),
	}

	for gen := 1; gen <= m.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}
		stopped, err := m.drainControl(ctx)
		if err != nil {
			return RunResult{}, err
		}

		members := population.Chromosomes()
		diagnostics := summarizeGeneration(members, gen)
		result.BestByGeneration = append(result.BestByGeneration, diagnostics.BestFitness)
		result.GenerationDiagnostics = append(result.GenerationDiagnostics, diagnostics)
		result.Generations = gen
		if m.cfg.OnGeneration != nil {
			m.cfg.OnGeneration(diagnostics)
		}

		if diagnostics.BestFitness <= m.cfg.FitnessGoal {
			result.Solved = true
			result.SolvedGeneration = gen
			result.FinalPopulation = members
			return result, nil
		}
		if stopped {
			result.FinalPopulation = members
			return result, nil
		}

		population.Evolve()
	}

	result.FinalPopulation = population.Chromosomes()
	return result, nil
}

// drainControl consumes pending monitor commands without blocking, except
// while paused, where it waits for a continue or stop. Reports whether the
// run should stop after the current generation is recorded.
func (m *PopulationMonitor) drainControl(ctx context.Context) (bool, error) {
	if m.cfg.Control == nil {
		return false, nil
	}
	for {
		select {
		case cmd := <-m.cfg.Control:
			switch cmd {
			case CommandStop:
				return true, nil
			case CommandPause:
				if stop, err := m.awaitContinue(ctx); stop || err != nil {
					return stop, err
				}
			case CommandContinue:
				// Not paused; nothing to do.
			default:
				return false, fmt.Errorf("unsupported monitor command: %s", cmd)
			}
		case <-ctx.Done():
			return false, ctx.Err()
		default:
			return false, nil
		}
	}
}

func (m *PopulationMonitor) awaitContinue(ctx context.Context) (bool, error) {
	for {
		select {
		case cmd := <-m.cfg.Control:
			switch cmd {
			case CommandContinue:
				return false, nil
			case CommandStop:
				return true, nil
			case CommandPause:
				// Already paused.
			default:
				return false, fmt.Errorf("unsupported monitor command: %s", cmd)
			}
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

func summarizeGeneration(members []Chromosome, generation int) model.GenerationDiagnostics {
	if len(members) == 0 {
		return model.GenerationDiagnostics{Generation: generation}
	}

	total := 0
	worst := members[0].Fitness()
	genes := make(map[string]struct{}, len(members))
	for _, member := range members {
		total += member.Fitness()
		if member.Fitness() > worst {
			worst = member.Fitness()
		}
		genes[member.Gene()] = struct{}{}
	}

	return model.GenerationDiagnostics{
		Generation:    generation,
		BestFitness:   members[0].Fitness(),
		MeanFitness:   float64(total) / float64(len(members)),
		WorstFitness:  worst,
		DistinctGenes: len(genes),
		BestGene:      members[0].Gene(),
	}
}
