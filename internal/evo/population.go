package evo

import (
	"math"
	"math/rand"
	"sort"
)

// tournamentSize is the number of contenders drawn per parent selection,
// on top of the initial random running best.
const tournamentSize = 3

const (
	DefaultPopulationSize = 1024
	DefaultCrossoverRate  = 0.8
	DefaultElitismRate    = 0.1
	DefaultMutationRate   = 0.03
)

// PopulationConfig carries the target string and the evolutionary rates.
// Rates are not validated: values outside [0,1] simply make the
// corresponding branch deterministic, and a non-positive size yields an
// empty population whose Evolve is a no-op.
type PopulationConfig struct {
	Target    string
	Size      int
	Crossover float64
	Elitism   float64
	Mutation  float64
}

// DefaultConfig returns the standard rates for target.
func DefaultConfig(target string) PopulationConfig {
	return PopulationConfig{
		Target:    target,
		Size:      DefaultPopulationSize,
		Crossover: DefaultCrossoverRate,
		Elitism:   DefaultElitismRate,
		Mutation:  DefaultMutationRate,
	}
}

// Population is a generation of chromosomes kept sorted by fitness
// ascending, so members[0] is always the current best. The member slice is
// owned exclusively by the population; accessors hand out copies.
type Population struct {
	cfg     PopulationConfig
	rng     *rand.Rand
	members []Chromosome
}

// NewPopulation seeds cfg.Size random chromosomes from rng and sorts them.
func NewPopulation(rng *rand.Rand, cfg PopulationConfig) *Population {
	size := cfg.Size
	if size < 0 {
		size = 0
	}
	members := make([]Chromosome, 0, size)
	for i := 0; i < size; i++ {
		members = append(members, GenRandom(rng, cfg.Target))
	}
	sortByFitness(members)
	return &Population{cfg: cfg, rng: rng, members: members}
}

func (p *Population) Config() PopulationConfig { return p.cfg }

func (p *Population) Size() int { return len(p.members) }

// Chromosomes returns a copy of the sorted member list.
func (p *Population) Chromosomes() []Chromosome {
	return append([]Chromosome(nil), p.members...)
}

// Best returns the lowest-fitness member, or false for an empty population.
func (p *Population) Best() (Chromosome, bool) {
	if len(p.members) == 0 {
		return Chromosome{}, false
	}
	return p.members[0], true
}

// Evolve replaces the member list with the next generation: the elite head
// is carried unchanged, the remainder is filled by crossover of
// tournament-selected parents or by mutation-tested survivors. The
// crossover path always appends two children, so the buffer can overshoot
// by one; it is truncated back to size before the final sort.
func (p *Population) Evolve() {
	size := len(p.members)
	if size == 0 {
		return
	}

	elite := int(math.Round(float64(size) * p.cfg.Elitism))
	if elite < 0 {
		elite = 0
	}
	if elite > size {
		elite = size
	}

	buf := make([]Chromosome, 0, size+1)
	buf = append(buf, p.members[:elite]...)

	for idx := elite; idx < size; {
		if p.rng.Float64() <= p.cfg.Crossover {
			first, second := p.selectParents()
			childA, childB := first.Mate(p.rng, second, p.cfg.Target)
			buf = append(buf, p.maybeMutate(childA), p.maybeMutate(childB))
			idx += 2
		} else {
			buf = append(buf, p.maybeMutate(p.members[idx]))
			idx++
		}
	}

	if len(buf) > size {
		buf = buf[:size]
	}
	sortByFitness(buf)
	p.members = buf
}

// tournamentSelect starts from one random member as the running best and
// lets tournamentSize random contenders (drawn with replacement) displace
// it on strictly lower fitness.
func (p *Population) tournamentSelect() Chromosome {
	best := p.members[p.rng.Intn(len(p.members))]
	for i := 0; i < tournamentSize; i++ {
		contender := p.members[p.rng.Intn(len(p.members))]
		if contender.Fitness() < best.Fitness() {
			best = contender
		}
	}
	return best
}

// selectParents runs two independent tournaments; the parents may coincide.
func (p *Population) selectParents() (Chromosome, Chromosome) {
	return p.tournamentSelect(), p.tournamentSelect()
}

func (p *Population) maybeMutate(c Chromosome) Chromosome {
	if p.rng.Float64() <= p.cfg.Mutation {
		return c.Mutate(p.rng, p.cfg.Target)
	}
	return c
}

// sortByFitness is stable so equal-fitness members keep insertion order.
func sortByFitness(members []Chromosome) {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].fitness < members[j].fitness
	})
}
