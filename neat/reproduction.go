package neat

import (
	"math"
	"math/rand"
	"sort"
)

// Reproduction creates the next generation from an evaluated, speciated population.
type Reproduction struct {
	Config *ReproductionConfig
	Genome *GenomeConfig
}

// NewReproduction creates a new reproduction manager.
func NewReproduction(config *ReproductionConfig, genome *GenomeConfig) *Reproduction {
	return &Reproduction{Config: config, Genome: genome}
}

// generation is the state of one evaluated and speciated population.
type generation struct {
	networks []*Network
	fitness  []float64 // Raw fitness, aligned with networks
	shared   []float64 // Fitness divided by species size
	species  []*Species
}

// shareFitness divides each fitness by the size of its species and fills in
// the per-species SharedFitness and Best fields.
func shareFitness(fitness []float64, species []*Species) []float64 {
	shared := make([]float64, len(fitness))
	for _, s := range species {
		size := float64(s.Size())
		s.SharedFitness = 0
		s.Best = s.Members[0]
		for _, m := range s.Members {
			shared[m] = fitness[m] / size
			s.SharedFitness += shared[m]
			if fitness[m] > fitness[s.Best] {
				s.Best = m
			}
		}
	}
	return shared
}

// Reproduce produces exactly popSize networks from the species of g.
func (r *Reproduction) Reproduce(g *generation, popSize int, inn *Innovations, rng *rand.Rand) []*Network {
	if len(g.species) == 0 {
		return nil
	}

	// Fitness may be negative; selection works on shared fitness shifted so the minimum is zero.
	floor := MinFloat(g.shared)
	weights := make([]float64, len(g.species))
	for i, s := range g.species {
		for _, m := range s.Members {
			weights[i] += g.shared[m] - floor
		}
	}
	quotas := computeSpawnAmounts(weights, popSize)

	pools := make([][]int, len(g.species))
	for i, s := range g.species {
		s.Offspring = quotas[i]
		pools[i] = r.parentPool(g, s)
	}

	next := make([]*Network, 0, popSize)
	for si, s := range g.species {
		remaining := s.Offspring
		if remaining == 0 {
			continue
		}

		// Elitism: the champion of a large enough species survives unchanged.
		if s.Size() > r.Config.ElitismMinSize {
			next = append(next, g.networks[s.Best].Clone())
			remaining--
		}

		for ; remaining > 0; remaining-- {
			if rng.Float64() < r.Config.NoCrossoverProb {
				child := g.networks[selectParent(g, pools[si], floor, rng)].Clone()
				child.Mutate(inn, r.Genome, rng)
				next = append(next, child)
				continue
			}

			parent1 := selectParent(g, pools[si], floor, rng)
			var parent2 int
			if len(g.species) > 1 && rng.Float64() < r.Config.InterspeciesMateRate {
				other := (si + 1 + rng.Intn(len(g.species)-1)) % len(g.species)
				parent2 = selectParent(g, pools[other], floor, rng)
			} else {
				parent2 = selectParent(g, pools[si], floor, rng)
			}

			// The fitter parent is the primary one.
			if g.fitness[parent2] > g.fitness[parent1] {
				parent1, parent2 = parent2, parent1
			}
			next = append(next, g.networks[parent1].Cross(g.networks[parent2], inn, r.Genome, rng))
		}
	}
	return next
}

// parentPool returns the members of s allowed to reproduce: the top
// survival_threshold fraction by raw fitness, at least one.
func (r *Reproduction) parentPool(g *generation, s *Species) []int {
	pool := make([]int, len(s.Members))
	copy(pool, s.Members)
	sort.SliceStable(pool, func(i, j int) bool {
		return g.fitness[pool[i]] > g.fitness[pool[j]]
	})
	cutoff := int(math.Ceil(r.Config.SurvivalThreshold * float64(len(pool))))
	if cutoff < 1 {
		cutoff = 1
	}
	if cutoff > len(pool) {
		cutoff = len(pool)
	}
	return pool[:cutoff]
}

// selectParent draws a population index from pool with probability
// proportional to shared fitness above floor. An all-zero pool is drawn uniformly.
func selectParent(g *generation, pool []int, floor float64, rng *rand.Rand) int {
	total := 0.0
	for _, m := range pool {
		total += g.shared[m] - floor
	}
	if total <= 0 {
		return pool[rng.Intn(len(pool))]
	}

	r := rng.Float64() * total
	for _, m := range pool {
		r -= g.shared[m] - floor
		if r < 0 {
			return m
		}
	}
	return pool[len(pool)-1]
}

// computeSpawnAmounts splits popSize offspring between species proportionally
// to their weights: round(popSize * w / sum(w)). Rounding drift is corrected
// by largest remainder so the amounts always sum to popSize. All-zero weights
// split the population evenly.
func computeSpawnAmounts(weights []float64, popSize int) []int {
	amounts := make([]int, len(weights))
	if len(weights) == 0 {
		return amounts
	}

	total := Sum(weights)
	exact := make([]float64, len(weights))
	for i, w := range weights {
		if total > 0 {
			exact[i] = float64(popSize) * w / total
		} else {
			exact[i] = float64(popSize) / float64(len(weights))
		}
		amounts[i] = int(math.Round(exact[i]))
	}

	diff := popSize
	for _, a := range amounts {
		diff -= a
	}
	if diff == 0 {
		return amounts
	}

	// Species that lost the most to rounding gain first; those that gained the most give back first.
	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra := exact[order[a]] - float64(amounts[order[a]])
		rb := exact[order[b]] - float64(amounts[order[b]])
		if diff > 0 {
			return ra > rb
		}
		return ra < rb
	})
	for k := 0; diff != 0; k = (k + 1) % len(order) {
		i := order[k]
		if diff > 0 {
			amounts[i]++
			diff--
		} else if amounts[i] > 0 {
			amounts[i]--
			diff++
		}
	}
	return amounts
}
