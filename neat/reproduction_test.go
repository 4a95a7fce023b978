package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSpawnAmounts(t *testing.T) {
	cases := []struct {
		name    string
		weights []float64
		popSize int
		want    []int
	}{
		{"proportional", []float64{3, 1}, 8, []int{6, 2}},
		{"rounding up is corrected", []float64{1, 1, 1}, 10, nil},
		{"rounding down is corrected", []float64{1, 1, 1, 1, 1, 1}, 8, nil},
		{"all zero splits evenly", []float64{0, 0}, 6, []int{3, 3}},
		{"zero weight gets nothing", []float64{0, 5}, 7, []int{0, 7}},
		{"single species", []float64{0.1}, 150, []int{150}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := computeSpawnAmounts(tc.weights, tc.popSize)
			require.Len(t, got, len(tc.weights))
			assert.Equal(t, tc.popSize, sumInts(got))
			for _, a := range got {
				assert.GreaterOrEqual(t, a, 0)
			}
			if tc.want != nil {
				assert.Equal(t, tc.want, got)
			}
		})
	}
	assert.Empty(t, computeSpawnAmounts(nil, 10))
}

func sumInts(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func TestShareFitness(t *testing.T) {
	species := []*Species{
		{Members: []int{0, 2}},
		{Members: []int{1, 3, 4}},
	}
	fitness := []float64{2, 3, 4, 9, 3}
	shared := shareFitness(fitness, species)

	assert.Equal(t, []float64{1, 1, 2, 3, 1}, shared)
	assert.Equal(t, 3.0, species[0].SharedFitness)
	assert.Equal(t, 5.0, species[1].SharedFitness)
	assert.Equal(t, 2, species[0].Best)
	assert.Equal(t, 3, species[1].Best)
}

func TestParentPool(t *testing.T) {
	r := NewReproduction(&ReproductionConfig{SurvivalThreshold: 0.5}, testGenomeConfig())
	g := &generation{fitness: []float64{1, 5, 3, 4, 2}}
	s := &Species{Members: []int{0, 1, 2, 3, 4}}
	assert.Equal(t, []int{1, 3, 2}, r.parentPool(g, s))

	r.Config.SurvivalThreshold = 0.01
	assert.Equal(t, []int{1}, r.parentPool(g, s), "at least one parent survives")
}

func TestSelectParent(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	g := &generation{shared: []float64{0, 0, 10, 0}}
	for i := 0; i < 50; i++ {
		assert.Equal(t, 2, selectParent(g, []int{0, 1, 2}, 0, rng))
	}

	g.shared = []float64{1, 1, 1}
	counts := map[int]int{}
	for i := 0; i < 300; i++ {
		counts[selectParent(g, []int{0, 1}, 1, rng)]++
	}
	assert.Equal(t, 300, counts[0]+counts[1])
	assert.NotZero(t, counts[0], "zero-weight pools fall back to a uniform draw")
	assert.NotZero(t, counts[1])
}

func reproductionFixture(t *testing.T, size int) (*generation, *Innovations) {
	t.Helper()
	networks, inn := evolvedPopulation(t, size, 23)
	fitness := make([]float64, size)
	for i := range fitness {
		fitness[i] = float64(i % 4)
	}
	return &generation{networks: networks, fitness: fitness}, inn
}

func TestReproduceKeepsPopulationSize(t *testing.T) {
	g, inn := reproductionFixture(t, 30)
	config := DefaultConfig(2, 1)
	config.SpeciesSet.CompatibilityThreshold = 0.5
	g.species = Speciate(g.networks, config)
	g.shared = shareFitness(g.fitness, g.species)

	r := NewReproduction(&config.Reproduction, &config.Genome)
	rng := rand.New(rand.NewSource(2))
	for _, popSize := range []int{30, 17, 45} {
		next := r.Reproduce(g, popSize, inn, rng)
		assert.Len(t, next, popSize)

		offspring := 0
		for _, s := range g.species {
			offspring += s.Offspring
		}
		assert.Equal(t, popSize, offspring)

		for _, n := range next {
			assert.True(t, n.IsAcyclic())
			assertConsistent(t, inn, n)
		}
	}
}

func TestReproduceElitism(t *testing.T) {
	g, inn := reproductionFixture(t, 6)
	g.fitness = []float64{1, 2, 3, 10, 2, 1}
	g.species = []*Species{{Members: []int{0, 1, 2, 3, 4, 5}}}
	g.shared = shareFitness(g.fitness, g.species)

	config := DefaultConfig(2, 1)
	config.Reproduction.ElitismMinSize = 5
	r := NewReproduction(&config.Reproduction, &config.Genome)
	rng := rand.New(rand.NewSource(4))

	next := r.Reproduce(g, 6, inn, rng)
	require.Len(t, next, 6)
	assert.Equal(t, g.networks[3].Connections(), next[0].Connections(), "champion survives unchanged")
	assert.Equal(t, g.networks[3].Nodes(), next[0].Nodes())
	assert.NotSame(t, g.networks[3], next[0])
}

func TestReproduceNegativeFitness(t *testing.T) {
	g, inn := reproductionFixture(t, 10)
	for i := range g.fitness {
		g.fitness[i] = -100 - float64(i)
	}
	g.species = []*Species{{Members: []int{0, 1, 2, 3, 4}}, {Members: []int{5, 6, 7, 8, 9}}}
	g.shared = shareFitness(g.fitness, g.species)

	config := DefaultConfig(2, 1)
	r := NewReproduction(&config.Reproduction, &config.Genome)
	next := r.Reproduce(g, 10, inn, rand.New(rand.NewSource(6)))
	assert.Len(t, next, 10)
	assert.Greater(t, g.species[0].Offspring, g.species[1].Offspring)
}

func TestReproduceWithoutSpecies(t *testing.T) {
	r := NewReproduction(&DefaultConfig(1, 1).Reproduction, testGenomeConfig())
	assert.Empty(t, r.Reproduce(&generation{}, 10, NewInnovations(1, 1), rand.New(rand.NewSource(1))))
}
