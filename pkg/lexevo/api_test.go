package lexevo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := New(Options{
		StoreKind:     "memory",
		BenchmarksDir: t.TempDir(),
		ExportsDir:    t.TempDir(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return client
}

func smallRun(runID string) RunRequest {
	return RunRequest{
		RunID:       runID,
		Target:      "Hello",
		Population:  16,
		Generations: 5,
		Seed:        1,
	}
}

func TestRunProducesSummaryAndArtifacts(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	summary, err := client.Run(ctx, smallRun("run-1"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID != "run-1" {
		t.Fatalf("run id %q", summary.RunID)
	}
	if summary.Generations == 0 || len(summary.BestByGeneration) != summary.Generations {
		t.Fatalf("inconsistent summary: %+v", summary)
	}
	if summary.FinalBestGene == "" {
		t.Fatalf("expected a final best gene")
	}

	for _, file := range []string{"config.json", "fitness_history.json", "fitness_series.csv"} {
		if _, err := os.Stat(filepath.Join(summary.ArtifactsDir, file)); err != nil {
			t.Fatalf("missing artifact %s: %v", file, err)
		}
	}
}

func TestRunGeneratesRunID(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	req := smallRun("")
	summary, err := client.Run(ctx, req)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatalf("expected a generated run id")
	}
}

func TestRunRejectsNegativeFitnessGoal(t *testing.T) {
	client := newTestClient(t)

	req := smallRun("run-1")
	req.FitnessGoal = -1
	if _, err := client.Run(context.Background(), req); err == nil {
		t.Fatalf("expected an error for a negative fitness goal")
	}
}

func TestRunsListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	if _, err := client.Run(ctx, smallRun("run-old")); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := client.Run(ctx, smallRun("run-new")); err != nil {
		t.Fatalf("second run: %v", err)
	}

	items, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items %d, want 2", len(items))
	}
	if items[0].RunID != "run-new" || items[1].RunID != "run-old" {
		t.Fatalf("unexpected order: %s, %s", items[0].RunID, items[1].RunID)
	}

	limited, err := client.Runs(ctx, RunsRequest{Limit: 1})
	if err != nil {
		t.Fatalf("limited runs: %v", err)
	}
	if len(limited) != 1 || limited[0].RunID != "run-new" {
		t.Fatalf("unexpected limited listing: %+v", limited)
	}
}

func TestFitnessHistoryByRunIDAndLatest(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	summary, err := client.Run(ctx, smallRun("run-1"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	history, err := client.FitnessHistory(ctx, FitnessHistoryRequest{RunID: "run-1"})
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if len(history) != summary.Generations {
		t.Fatalf("history length %d, want %d", len(history), summary.Generations)
	}

	latest, err := client.FitnessHistory(ctx, FitnessHistoryRequest{Latest: true})
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(latest) != len(history) {
		t.Fatalf("latest history length %d, want %d", len(latest), len(history))
	}

	limited, err := client.FitnessHistory(ctx, FitnessHistoryRequest{RunID: "run-1", Limit: 2})
	if err != nil {
		t.Fatalf("limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limited length %d, want 2", len(limited))
	}
}

func TestResolveRunIDValidation(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	if _, err := client.FitnessHistory(ctx, FitnessHistoryRequest{RunID: "run-1", Latest: true}); err == nil {
		t.Fatalf("expected an error for run id plus latest")
	}
	if _, err := client.FitnessHistory(ctx, FitnessHistoryRequest{}); err == nil {
		t.Fatalf("expected an error for neither run id nor latest")
	}
	if _, err := client.FitnessHistory(ctx, FitnessHistoryRequest{Latest: true}); err == nil {
		t.Fatalf("expected an error with no runs recorded")
	}
	if _, err := client.FitnessHistory(ctx, FitnessHistoryRequest{RunID: "absent"}); err == nil {
		t.Fatalf("expected an error for an unknown run id")
	}
}

func TestDiagnosticsAndTopChromosomes(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	summary, err := client.Run(ctx, smallRun("run-1"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	diagnostics, err := client.Diagnostics(ctx, DiagnosticsRequest{Latest: true})
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if len(diagnostics) != summary.Generations {
		t.Fatalf("diagnostics length %d, want %d", len(diagnostics), summary.Generations)
	}
	if diagnostics[0].Generation != 1 {
		t.Fatalf("first diagnostics generation %d", diagnostics[0].Generation)
	}

	top, err := client.TopChromosomes(ctx, TopChromosomesRequest{RunID: "run-1"})
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) == 0 || top[0].Rank != 1 {
		t.Fatalf("unexpected top records: %+v", top)
	}
	if top[0].Fitness != summary.FinalBestFitness {
		t.Fatalf("top fitness %d, want %d", top[0].Fitness, summary.FinalBestFitness)
	}
}

func TestTargetSummaryAfterRun(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	if _, err := client.TargetSummary(ctx, ""); err == nil {
		t.Fatalf("expected an error for an empty target")
	}
	if _, err := client.TargetSummary(ctx, "Hello"); err == nil {
		t.Fatalf("expected an error before any run")
	}

	summary, err := client.Run(ctx, smallRun("run-1"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	item, err := client.TargetSummary(ctx, "Hello")
	if err != nil {
		t.Fatalf("target summary: %v", err)
	}
	if item.Target != "Hello" || item.BestFitness != summary.FinalBestFitness {
		t.Fatalf("unexpected summary: %+v", item)
	}
}

func TestExportLatestRun(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	if _, err := client.Export(ctx, ExportRequest{}); err == nil {
		t.Fatalf("expected an error for neither run id nor latest")
	}
	if _, err := client.Export(ctx, ExportRequest{RunID: "run-1", Latest: true}); err == nil {
		t.Fatalf("expected an error for run id plus latest")
	}

	if _, err := client.Run(ctx, smallRun("run-1")); err != nil {
		t.Fatalf("run: %v", err)
	}

	exported, err := client.Export(ctx, ExportRequest{Latest: true})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported.RunID != "run-1" {
		t.Fatalf("exported run id %q", exported.RunID)
	}
	if _, err := os.Stat(filepath.Join(exported.Directory, "config.json")); err != nil {
		t.Fatalf("missing exported config: %v", err)
	}
}

func TestResetClearsStore(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	if _, err := client.Run(ctx, smallRun("run-1")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := client.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := client.FitnessHistory(ctx, FitnessHistoryRequest{RunID: "run-1"}); err == nil {
		t.Fatalf("expected the store to be cleared")
	}
}
