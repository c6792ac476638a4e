package evo

import "math/rand"

const (
	// Random genes draw character codes from [geneCharMin, geneCharMax].
	geneCharMin = 32
	geneCharMax = 121

	// Mutated characters wrap modulo this value, which may land below the
	// printable range. That wrap is part of the engine's contract.
	geneCharMod = 122
)

// Chromosome is one trial solution: a gene string plus its fitness against
// the run target. Fitness is computed once at construction; lower is better
// and zero means the gene matches the target exactly. Chromosomes are
// immutable — Mate and Mutate return new values.
type Chromosome struct {
	gene    string
	fitness int
}

// NewChromosome builds a chromosome and scores it against target.
func NewChromosome(target, gene string) Chromosome {
	return Chromosome{gene: gene, fitness: Fitness(target, gene)}
}

// Fitness sums the absolute character-code difference at each position.
// Positions beyond the shorter of the two strings contribute nothing.
func Fitness(target, gene string) int {
	n := len(gene)
	if len(target) < n {
		n = len(target)
	}
	total := 0
	for i := 0; i < n; i++ {
		d := int(gene[i]) - int(target[i])
		if d < 0 {
			d = -d
		}
		total += d
	}
	return total
}

// GenRandom produces a chromosome with uniformly random characters, one per
// target position. Used only for initial-population seeding.
func GenRandom(rng *rand.Rand, target string) Chromosome {
	gene := make([]byte, len(target))
	for i := range gene {
		gene[i] = byte(rng.Intn(geneCharMax-geneCharMin+1) + geneCharMin)
	}
	return NewChromosome(target, string(gene))
}

func (c Chromosome) Gene() string { return c.gene }

func (c Chromosome) Fitness() int { return c.fitness }

// Mate performs single-point crossover with other. The pivot is uniform in
// [0, len-1), excluding the last index. Both children are returned scored.
func (c Chromosome) Mate(rng *rand.Rand, other Chromosome, target string) (Chromosome, Chromosome) {
	pivot := 0
	if len(c.gene) > 1 {
		pivot = rng.Intn(len(c.gene) - 1)
	}
	first := NewChromosome(target, c.gene[:pivot]+other.gene[pivot:])
	second := NewChromosome(target, other.gene[:pivot]+c.gene[pivot:])
	return first, second
}

// Mutate returns a copy of c with one randomly chosen character shifted by a
// uniform delta in [32, 121], wrapped modulo 122.
func (c Chromosome) Mutate(rng *rand.Rand, target string) Chromosome {
	if len(c.gene) == 0 {
		return c
	}
	gene := []byte(c.gene)
	delta := rng.Intn(90) + geneCharMin
	idx := rng.Intn(len(gene))
	gene[idx] = byte((int(gene[idx]) + delta) % geneCharMod)
	return NewChromosome(target, string(gene))
}
