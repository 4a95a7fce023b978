package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStagnationUpdate(t *testing.T) {
	s := NewStagnation(&StagnationConfig{MaxStagnation: 2})

	assert.False(t, s.Update(1.0))
	assert.Equal(t, 0, s.Counter)
	assert.False(t, s.Update(1.0))
	assert.False(t, s.Update(0.5))
	assert.True(t, s.Update(1.0), "third generation without improvement")
	assert.Equal(t, 3, s.Counter)

	s.Reset()
	assert.Equal(t, 0, s.Counter)
	assert.Equal(t, 1.0, s.BestFitness)

	assert.False(t, s.Update(2.0))
	assert.Equal(t, 2.0, s.BestFitness)
	assert.Equal(t, 0, s.Counter)
}

func TestDominantSpecies(t *testing.T) {
	assert.Equal(t, -1, dominantSpecies(nil))
	assert.Equal(t, -1, dominantSpecies([]*Species{{SharedFitness: 9}}), "the last species is never removed")

	species := []*Species{{SharedFitness: 1}, {SharedFitness: 4}, {SharedFitness: 4}, {SharedFitness: -2}}
	assert.Equal(t, 1, dominantSpecies(species), "ties go to the first species")
}
