package storage

import (
	"context"

	"lexevo/internal/model"
)

// Store defines persistence operations for lexevo run data.
type Store interface {
	Init(ctx context.Context) error
	SavePopulation(ctx context.Context, snapshot model.PopulationSnapshot) error
	GetPopulation(ctx context.Context, id string) (model.PopulationSnapshot, bool, error)
	SaveTargetSummary(ctx context.Context, summary model.TargetSummary) error
	GetTargetSummary(ctx context.Context, target string) (model.TargetSummary, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []int) error
	GetFitnessHistory(ctx context.Context, runID string) ([]int, bool, error)
	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
	SaveTopChromosomes(ctx context.Context, runID string, top []model.TopChromosomeRecord) error
	GetTopChromosomes(ctx context.Context, runID string) ([]model.TopChromosomeRecord, bool, error)
}

// Resetter is implemented by stores that can drop all persisted state.
type Resetter interface {
	Reset(ctx context.Context) error
}
