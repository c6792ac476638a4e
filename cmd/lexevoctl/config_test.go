package main

import (
	"os"
	"path/filepath"
	"testing"

	"lexevo/pkg/lexevo"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "run.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRunRequestDefaults(t *testing.T) {
	req, err := loadRunRequest("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.Target != lexevo.DefaultTarget {
		t.Fatalf("target %q", req.Target)
	}
	if req.Generations != lexevo.DefaultGenerations {
		t.Fatalf("generations %d", req.Generations)
	}
	if req.Seed != 1 {
		t.Fatalf("seed %d", req.Seed)
	}
}

func TestLoadRunRequestFromFile(t *testing.T) {
	path := writeConfig(t, `{
		"run_id": "run-1",
		"target": "Hi there",
		"population_size": 256,
		"generations": 400,
		"crossover_rate": 0.9,
		"elitism_rate": 0.05,
		"mutation_rate": 0.1,
		"fitness_goal": 2,
		"seed": 99
	}`)

	req, err := loadRunRequest(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.RunID != "run-1" || req.Target != "Hi there" {
		t.Fatalf("unexpected identity fields: %+v", req)
	}
	if req.Population != 256 || req.Generations != 400 || req.FitnessGoal != 2 || req.Seed != 99 {
		t.Fatalf("unexpected numeric fields: %+v", req)
	}
	if req.Crossover != 0.9 || req.Elitism != 0.05 || req.Mutation != 0.1 {
		t.Fatalf("unexpected rates: %+v", req)
	}
}

func TestLoadRunRequestPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `{"target": "Hi"}`)

	req, err := loadRunRequest(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.Target != "Hi" {
		t.Fatalf("target %q", req.Target)
	}
	if req.Generations != lexevo.DefaultGenerations {
		t.Fatalf("generations %d, want the default", req.Generations)
	}
}

func TestLoadRunRequestRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, `{"tarjet": "Hi"}`)
	if _, err := loadRunRequest(path); err == nil {
		t.Fatalf("expected an error for an unknown key")
	}
}

func TestLoadRunRequestRejectsWrongTypes(t *testing.T) {
	cases := map[string]string{
		"string for int":    `{"generations": "many"}`,
		"fraction for int":  `{"population_size": 1.5}`,
		"number for string": `{"target": 7}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, content)
			if _, err := loadRunRequest(path); err == nil {
				t.Fatalf("expected a type error")
			}
		})
	}
}

func TestLoadRunRequestMissingFile(t *testing.T) {
	if _, err := loadRunRequest(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	req := lexevo.RunRequest{
		Target:      "from config",
		Population:  100,
		Generations: 200,
		Seed:        5,
	}

	applyFlagOverrides(&req, map[string]bool{"target": true, "seed": true}, flagOverrides{
		Target:      "from flag",
		Population:  999,
		Generations: 999,
		Seed:        42,
	})

	if req.Target != "from flag" || req.Seed != 42 {
		t.Fatalf("set flags did not win: %+v", req)
	}
	if req.Population != 100 || req.Generations != 200 {
		t.Fatalf("unset flags leaked over config values: %+v", req)
	}
}
