package neat

import (
	"math"
)

// Stagnation tracks whether the best fitness of the run keeps improving.
type Stagnation struct {
	Config      *StagnationConfig
	BestFitness float64 // Best raw fitness observed so far
	Counter     int     // Generations since BestFitness last improved
}

// NewStagnation creates a stagnation tracker that has not seen any fitness yet.
func NewStagnation(config *StagnationConfig) *Stagnation {
	return &Stagnation{
		Config:      config,
		BestFitness: math.Inf(-1),
	}
}

// Update records the best fitness of the current generation and reports
// whether the run has now stagnated for more than MaxStagnation generations.
func (s *Stagnation) Update(best float64) bool {
	if best > s.BestFitness {
		s.BestFitness = best
		s.Counter = 0
		return false
	}
	s.Counter++
	return s.Counter > s.Config.MaxStagnation
}

// Reset restarts the counter after a stagnant species has been removed.
func (s *Stagnation) Reset() {
	s.Counter = 0
}

// dominantSpecies returns the index of the species with the largest shared
// fitness, or -1 when removing it would leave no species at all.
func dominantSpecies(species []*Species) int {
	if len(species) < 2 {
		return -1
	}
	best := 0
	for i, s := range species {
		if s.SharedFitness > species[best].SharedFitness {
			best = i
		}
	}
	return best
}
