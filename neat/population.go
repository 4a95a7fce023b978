package neat

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/gofrs/uuid"
)

// FitnessFunc evaluates one network and returns its fitness; higher is better.
// It is called once per individual per generation and must not modify any
// other individual.
type FitnessFunc func(n *Network) float64

// Population holds the state of one evolutionary run: the innovation
// registry, the current networks and the hyperparameters. A Population is
// not safe for concurrent use.
type Population struct {
	Config       *Config
	RunID        uuid.UUID
	Innovations  *Innovations
	Networks     []*Network
	Fitness      []float64  // Raw fitness of Networks from the last evaluation
	Species      []*Species // Species of the last generation
	Reproduction *Reproduction
	Stagnation   *Stagnation
	Reporters    *ReporterSet
	Generation   int

	best        *Network // Best network found so far
	bestFitness float64
	rng         *rand.Rand
}

// NewPopulation validates config and creates the first generation.
// All randomness of the run is drawn from rng; when rng is nil a source
// seeded with config.Neat.Seed is used.
func NewPopulation(config *Config, rng *rand.Rand) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(config.Neat.Seed))
	}
	runID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to create run id: %w", err)
	}

	p := &Population{
		Config:       config,
		RunID:        runID,
		Innovations:  NewInnovations(config.Genome.NumInputs, config.Genome.NumOutputs),
		Reproduction: NewReproduction(&config.Reproduction, &config.Genome),
		Stagnation:   NewStagnation(&config.Stagnation),
		Reporters:    &ReporterSet{},
		bestFitness:  math.Inf(-1),
		rng:          rng,
	}
	p.GeneratePopulation(config.Neat.PopSize)
	return p, nil
}

// GeneratePopulation replaces the population with n freshly constructed
// networks that share the run's innovation registry. Later generations keep
// size n.
func (p *Population) GeneratePopulation(n int) {
	p.Networks = make([]*Network, n)
	for i := range p.Networks {
		p.Networks[i] = NewNetwork(p.Innovations, &p.Config.Genome, p.rng)
	}
	p.Fitness = nil
	p.Species = nil
}

// CalculateFitnesses evaluates every network once and returns the fitness
// vector aligned with the population.
func (p *Population) CalculateFitnesses(fitnessFunc FitnessFunc) []float64 {
	fitness := make([]float64, len(p.Networks))
	for i, n := range p.Networks {
		fitness[i] = fitnessFunc(n)
	}
	p.Fitness = fitness
	return fitness
}

// NextGeneration runs one generation: evaluate, speciate, share fitness,
// reproduce and replace the population. The next generation has the same
// size as the current one.
// It returns a copy of the best network of the evaluated generation when it
// reaches the fitness threshold, otherwise nil.
func (p *Population) NextGeneration(fitnessFunc FitnessFunc) (*Network, error) {
	if len(p.Networks) == 0 {
		return nil, fmt.Errorf("generation %d: %w", p.Generation, ErrEmptyPopulation)
	}
	p.Reporters.StartGeneration(p.Generation)

	// 1. Evaluate Fitness
	fitness := p.CalculateFitnesses(fitnessFunc)
	bestIdx := argMax(fitness)
	currentBest := p.Networks[bestIdx]
	if fitness[bestIdx] > p.bestFitness {
		p.best = currentBest.Clone()
		p.bestFitness = fitness[bestIdx]
	}
	p.Reporters.PostEvaluate(p.Generation, fitness, currentBest)

	var winner *Network
	if !p.Config.Neat.NoFitnessTermination && fitness[bestIdx] >= p.Config.Neat.FitnessThreshold {
		winner = currentBest.Clone()
		p.Reporters.FoundSolution(p.Generation, winner, fitness[bestIdx])
	}

	// 2. Speciate
	species := Speciate(p.Networks, p.Config)

	// 3. Share fitness
	shared := shareFitness(fitness, species)

	// Stagnation: drop the dominant species when the run stops improving.
	if p.Stagnation.Update(fitness[bestIdx]) {
		if i := dominantSpecies(species); i >= 0 {
			p.Reporters.SpeciesStagnant(p.Generation, species[i])
			species = append(species[:i:i], species[i+1:]...)
		}
		p.Stagnation.Reset()
	}

	// 4. Reproduce
	gen := &generation{
		networks: p.Networks,
		fitness:  fitness,
		shared:   shared,
		species:  species,
	}
	next := p.Reproduction.Reproduce(gen, len(p.Networks), p.Innovations, p.rng)
	if len(next) == 0 {
		return winner, fmt.Errorf("generation %d: reproduction: %w", p.Generation, ErrEmptyPopulation)
	}
	p.Species = species
	p.Reporters.EndGeneration(p.Generation, fitness, species)

	// 5. Replace
	p.Networks = next
	p.Generation++
	return winner, nil
}

// Run evolves the population for at most the given number of generations and
// stops early when a network reaches the fitness threshold.
// It returns that network, or nil when none was found.
func (p *Population) Run(fitnessFunc FitnessFunc, generations int) (*Network, error) {
	for i := 0; i < generations; i++ {
		winner, err := p.NextGeneration(fitnessFunc)
		if err != nil {
			return nil, err
		}
		if winner != nil {
			return winner, nil
		}
	}
	return nil, nil
}

// Best returns a copy of the fittest network evaluated so far, or nil before
// the first generation.
func (p *Population) Best() *Network {
	if p.best == nil {
		return nil
	}
	return p.best.Clone()
}

// BestFitness returns the fitness of Best.
func (p *Population) BestFitness() float64 {
	return p.bestFitness
}
