package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Chromosome is the persisted form of one candidate solution.
type Chromosome struct {
	Gene    string `json:"gene"`
	Fitness int    `json:"fitness"`
}

// PopulationSnapshot is the full member list of one generation, sorted by
// fitness ascending.
type PopulationSnapshot struct {
	VersionedRecord
	ID          string       `json:"id"`
	Target      string       `json:"target"`
	Generation  int          `json:"generation"`
	Chromosomes []Chromosome `json:"chromosomes"`
}

// TargetSummary tracks the best result ever observed for a target string
// across runs. Lower fitness is better; zero means solved.
type TargetSummary struct {
	VersionedRecord
	Target      string `json:"target"`
	Description string `json:"description"`
	BestFitness int    `json:"best_fitness"`
	BestGene    string `json:"best_gene"`
	Solved      bool   `json:"solved"`
}

type GenerationDiagnostics struct {
	Generation    int     `json:"generation"`
	BestFitness   int     `json:"best_fitness"`
	MeanFitness   float64 `json:"mean_fitness"`
	WorstFitness  int     `json:"worst_fitness"`
	DistinctGenes int     `json:"distinct_genes"`
	BestGene      string  `json:"best_gene"`
}

type TopChromosomeRecord struct {
	Rank       int        `json:"rank"`
	Fitness    int        `json:"fitness"`
	Chromosome Chromosome `json:"chromosome"`
}
