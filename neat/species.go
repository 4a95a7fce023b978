package neat

import (
	"math"
)

// Species represents a group of genetically similar networks within one generation.
// Species are rebuilt from scratch every generation and carry no identity across generations.
type Species struct {
	Representative []ConnectionGene // Snapshot of the founding member's genes, sorted by innovation
	Members        []int            // Indices into the population, in population order

	// Bookkeeping filled in during reproduction.
	SharedFitness float64 // Sum of the members' shared fitness
	Best          int     // Population index of the fittest member
	Offspring     int     // Number of children assigned for the next generation
}

// NewSpecies creates a species founded by the network at population index idx.
func NewSpecies(idx int, founder *Network) *Species {
	return &Species{
		Representative: founder.Connections(),
		Members:        []int{idx},
		Best:           idx,
	}
}

// Size returns the number of members.
func (s *Species) Size() int {
	return len(s.Members)
}

// Contains reports whether population index idx is a member.
func (s *Species) Contains(idx int) bool {
	for _, m := range s.Members {
		if m == idx {
			return true
		}
	}
	return false
}

// CompatibilityDistance measures how far apart two genomes are.
//
// Genes are aligned by innovation id. A gene only one side has is excess when
// its id is beyond the other genome's highest id and disjoint otherwise.
// Matching genes contribute the absolute difference of their weights.
//
//	d = c1*excess/N + c2*disjoint/N + c3*meanWeightDiff,  N = max(len(a), len(b))
//
// Both slices must be sorted by innovation id and non-empty.
func CompatibilityDistance(a, b []ConnectionGene, config *GenomeConfig) float64 {
	if len(a) == 0 || len(b) == 0 {
		panic(ErrEmptyGenome)
	}

	maxA := a[len(a)-1].Innovation
	maxB := b[len(b)-1].Innovation

	excess, disjoint, matching := 0, 0, 0
	weightDiff := 0.0

	// Walk both genomes from the highest innovation id down.
	i, j := len(a)-1, len(b)-1
	for i >= 0 || j >= 0 {
		switch {
		case j < 0 || (i >= 0 && a[i].Innovation > b[j].Innovation):
			if a[i].Innovation > maxB {
				excess++
			} else {
				disjoint++
			}
			i--
		case i < 0 || b[j].Innovation > a[i].Innovation:
			if b[j].Innovation > maxA {
				excess++
			} else {
				disjoint++
			}
			j--
		default:
			weightDiff += math.Abs(a[i].Weight - b[j].Weight)
			matching++
			i--
			j--
		}
	}

	n := float64(max(len(a), len(b)))
	d := config.CompatibilityExcessCoefficient*float64(excess)/n +
		config.CompatibilityDisjointCoefficient*float64(disjoint)/n
	if matching > 0 {
		d += config.CompatibilityWeightCoefficient * weightDiff / float64(matching)
	}
	return d
}

// Speciate partitions the population into species.
//
// Networks are visited in population order. Each joins the first species whose
// representative is closer than the compatibility threshold, or founds a new
// species with itself as representative.
func Speciate(population []*Network, config *Config) []*Species {
	threshold := config.SpeciesSet.CompatibilityThreshold
	var species []*Species

	for idx, n := range population {
		genes := n.connections
		placed := false
		for _, s := range species {
			if CompatibilityDistance(s.Representative, genes, &config.Genome) < threshold {
				s.Members = append(s.Members, idx)
				placed = true
				break
			}
		}
		if !placed {
			species = append(species, NewSpecies(idx, n))
		}
	}
	return species
}
