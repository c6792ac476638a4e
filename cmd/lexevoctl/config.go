package main

import (
	"encoding/json"
	"fmt"
	"os"

	"lexevo/pkg/lexevo"
)

// loadRunRequest builds a run request from a JSON config file, or from the
// built-in defaults when no path is given. Unknown keys are rejected so typos
// in config files surface immediately.
func loadRunRequest(path string) (lexevo.RunRequest, error) {
	req := lexevo.RunRequest{
		Target:      lexevo.DefaultTarget,
		Generations: lexevo.DefaultGenerations,
		Seed:        1,
	}
	if path == "" {
		return req, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return lexevo.RunRequest{}, err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return lexevo.RunRequest{}, fmt.Errorf("parse run config %s: %w", path, err)
	}

	for key, value := range raw {
		switch key {
		case "run_id":
			req.RunID, err = asString(key, value)
		case "target":
			req.Target, err = asString(key, value)
		case "population_size":
			req.Population, err = asInt(key, value)
		case "generations":
			req.Generations, err = asInt(key, value)
		case "crossover_rate":
			req.Crossover, err = asFloat64(key, value)
		case "elitism_rate":
			req.Elitism, err = asFloat64(key, value)
		case "mutation_rate":
			req.Mutation, err = asFloat64(key, value)
		case "fitness_goal":
			req.FitnessGoal, err = asInt(key, value)
		case "seed":
			req.Seed, err = asInt64(key, value)
		default:
			return lexevo.RunRequest{}, fmt.Errorf("unknown run config key: %s", key)
		}
		if err != nil {
			return lexevo.RunRequest{}, err
		}
	}
	return req, nil
}

type flagOverrides struct {
	RunID       string
	Target      string
	Population  int
	Generations int
	Crossover   float64
	Elitism     float64
	Mutation    float64
	FitnessGoal int
	Seed        int64
}

// applyFlagOverrides lets explicitly set flags win over config file values.
func applyFlagOverrides(req *lexevo.RunRequest, set map[string]bool, values flagOverrides) {
	if set["run-id"] {
		req.RunID = values.RunID
	}
	if set["target"] {
		req.Target = values.Target
	}
	if set["pop"] {
		req.Population = values.Population
	}
	if set["gens"] {
		req.Generations = values.Generations
	}
	if set["crossover"] {
		req.Crossover = values.Crossover
	}
	if set["elitism"] {
		req.Elitism = values.Elitism
	}
	if set["mutation"] {
		req.Mutation = values.Mutation
	}
	if set["fitness-goal"] {
		req.FitnessGoal = values.FitnessGoal
	}
	if set["seed"] {
		req.Seed = values.Seed
	}
}

func asString(key string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("config key %s: expected string, got %T", key, value)
	}
	return s, nil
}

func asInt(key string, value any) (int, error) {
	f, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("config key %s: expected number, got %T", key, value)
	}
	n := int(f)
	if float64(n) != f {
		return 0, fmt.Errorf("config key %s: expected integer, got %v", key, f)
	}
	return n, nil
}

func asInt64(key string, value any) (int64, error) {
	f, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("config key %s: expected number, got %T", key, value)
	}
	n := int64(f)
	if float64(n) != f {
		return 0, fmt.Errorf("config key %s: expected integer, got %v", key, f)
	}
	return n, nil
}

func asFloat64(key string, value any) (float64, error) {
	f, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("config key %s: expected number, got %T", key, value)
	}
	return f, nil
}
