package stats

import (
	"os"
	"path/filepath"
	"testing"

	"lexevo/internal/model"
)

func sampleArtifacts(runID string) RunArtifacts {
	return RunArtifacts{
		Config: RunConfig{
			RunID:          runID,
			Target:         "Hello",
			PopulationSize: 64,
			Generations:    10,
			CrossoverRate:  0.8,
			ElitismRate:    0.1,
			MutationRate:   0.03,
			Seed:           7,
		},
		BestByGeneration: []int{42, 30, 12},
		GenerationDiagnostics: []model.GenerationDiagnostics{
			{Generation: 1, BestFitness: 42, MeanFitness: 100, WorstFitness: 180, DistinctGenes: 60, BestGene: "Jekko"},
		},
		FinalBestFitness: 12,
		FinalBestGene:    "Hfllo",
		TopChromosomes: []model.TopChromosomeRecord{
			{Rank: 1, Fitness: 12, Chromosome: model.Chromosome{Gene: "Hfllo", Fitness: 12}},
		},
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatalf("expected an error for a missing run id")
	}
}

func TestWriteRunArtifactsRoundTrip(t *testing.T) {
	baseDir := t.TempDir()

	runDir, err := WriteRunArtifacts(baseDir, sampleArtifacts("run-1"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if runDir != filepath.Join(baseDir, "run-1") {
		t.Fatalf("unexpected run dir: %s", runDir)
	}

	for _, file := range []string{"config.json", "fitness_history.json", "generation_diagnostics.json", "top_chromosomes.json", "fitness_series.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("missing artifact %s: %v", file, err)
		}
	}

	cfg, ok, err := ReadRunConfig(baseDir, "run-1")
	if err != nil || !ok {
		t.Fatalf("read config: ok=%v err=%v", ok, err)
	}
	if cfg.Target != "Hello" || cfg.PopulationSize != 64 || cfg.Seed != 7 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	series, ok, err := ReadFitnessSeries(baseDir, "run-1")
	if err != nil || !ok {
		t.Fatalf("read series: ok=%v err=%v", ok, err)
	}
	if len(series) != 3 || series[0] != 42 || series[2] != 12 {
		t.Fatalf("unexpected series: %v", series)
	}
}

func TestReadRunConfigMissing(t *testing.T) {
	if _, ok, err := ReadRunConfig(t.TempDir(), "absent"); err != nil || ok {
		t.Fatalf("expected a clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestRunIndexOrderingAndReplacement(t *testing.T) {
	baseDir := t.TempDir()

	entries := []RunIndexEntry{
		{RunID: "run-a", CreatedAtUTC: "2026-08-01T10:00:00Z", FinalBestFitness: 20},
		{RunID: "run-b", CreatedAtUTC: "2026-08-02T10:00:00Z", FinalBestFitness: 10},
		{RunID: "run-c", CreatedAtUTC: "2026-08-02T10:00:00Z", FinalBestFitness: 5},
	}
	for _, entry := range entries {
		if err := AppendRunIndex(baseDir, entry); err != nil {
			t.Fatalf("append %s: %v", entry.RunID, err)
		}
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(index) != 3 {
		t.Fatalf("index length %d, want 3", len(index))
	}
	// Newest first; run-c was appended after run-b with the same timestamp.
	if index[0].RunID != "run-c" || index[1].RunID != "run-b" || index[2].RunID != "run-a" {
		t.Fatalf("unexpected order: %s %s %s", index[0].RunID, index[1].RunID, index[2].RunID)
	}

	// Appending an existing run id replaces its entry in place.
	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "run-a", CreatedAtUTC: "2026-08-01T10:00:00Z", FinalBestFitness: 3}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	index, err = ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list after replace: %v", err)
	}
	if len(index) != 3 {
		t.Fatalf("index length %d after replace, want 3", len(index))
	}
	if index[2].RunID != "run-a" || index[2].FinalBestFitness != 3 {
		t.Fatalf("replacement lost: %+v", index[2])
	}
}

func TestListRunIndexEmpty(t *testing.T) {
	index, err := ListRunIndex(t.TempDir())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(index) != 0 {
		t.Fatalf("expected an empty index, got %d entries", len(index))
	}
}

func TestAppendRunIndexRequiresRunID(t *testing.T) {
	if err := AppendRunIndex(t.TempDir(), RunIndexEntry{}); err == nil {
		t.Fatalf("expected an error for a missing run id")
	}
}

func TestExportRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := t.TempDir()

	if _, err := WriteRunArtifacts(baseDir, sampleArtifacts("run-1")); err != nil {
		t.Fatalf("write: %v", err)
	}

	dst, err := ExportRunArtifacts(baseDir, "run-1", outDir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if dst != filepath.Join(outDir, "run-1") {
		t.Fatalf("unexpected export dir: %s", dst)
	}
	for _, file := range []string{"config.json", "fitness_history.json", "generation_diagnostics.json", "top_chromosomes.json", "fitness_series.csv"} {
		if _, err := os.Stat(filepath.Join(dst, file)); err != nil {
			t.Fatalf("missing exported %s: %v", file, err)
		}
	}
}

func TestExportRunArtifactsUnknownRun(t *testing.T) {
	if _, err := ExportRunArtifacts(t.TempDir(), "absent", t.TempDir()); err == nil {
		t.Fatalf("expected an error for an unknown run")
	}
}
