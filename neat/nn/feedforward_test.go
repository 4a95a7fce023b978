package nn_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/histneat/neat"
	"github.com/baldhumanity/histneat/neat/nn"
)

func TestCompileMatchesFeedForward(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	inn := neat.NewInnovations(3, 2)
	config := &neat.DefaultConfig(3, 2).Genome

	for i := 0; i < 25; i++ {
		g := neat.NewNetwork(inn, config, rng)
		for j := 0; j < 12; j++ {
			if rng.Float64() < 0.4 {
				g.AddNode(inn, rng)
			}
			g.AddConnection(inn, config, rng)
		}

		compiled, err := nn.Compile(g)
		require.NoError(t, err)

		for k := 0; k < 5; k++ {
			inputs := []float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
			want, err := g.FeedForward(inputs)
			require.NoError(t, err)
			got, err := compiled.Activate(inputs)
			require.NoError(t, err)
			assert.InDeltaSlice(t, want, got, 1e-9)
		}
	}
}

func TestCompiledFixture(t *testing.T) {
	nodes := []neat.NodeGene{
		{ID: 0, Type: neat.Sensor},
		{ID: 1, Type: neat.Sensor},
		{ID: 2, Type: neat.Bias},
		{ID: 3, Type: neat.Output},
		{ID: 4, Type: neat.Hidden},
		{ID: 5, Type: neat.Hidden}, // dangling
	}
	conns := []neat.ConnectionGene{
		{Innovation: 0, In: 0, Out: 4, Weight: 1, Enabled: true},
		{Innovation: 1, In: 1, Out: 4, Weight: 1, Enabled: true},
		{Innovation: 2, In: 2, Out: 4, Weight: -1, Enabled: true},
		{Innovation: 3, In: 0, Out: 3, Weight: 1, Enabled: true},
		{Innovation: 4, In: 1, Out: 3, Weight: 1, Enabled: true},
		{Innovation: 5, In: 4, Out: 3, Weight: -2, Enabled: true},
		{Innovation: 6, In: 4, Out: 5, Weight: 3, Enabled: true},
		{Innovation: 7, In: 0, Out: 5, Weight: 8, Enabled: false},
	}
	g, err := neat.NewNetworkFromGenes(neat.NewInnovations(2, 1), nodes, conns)
	require.NoError(t, err)
	compiled, err := nn.Compile(g)
	require.NoError(t, err)

	for _, tc := range []struct {
		in   []float64
		want float64
	}{
		{[]float64{0, 0}, neat.Sigmoid(0)},
		{[]float64{0, 1}, neat.Sigmoid(1)},
		{[]float64{1, 0}, neat.Sigmoid(1)},
		{[]float64{1, 1}, neat.Sigmoid(0)},
	} {
		out, err := compiled.Activate(tc.in)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, out[0], 1e-12)
	}

	_, err = compiled.Activate([]float64{1})
	assert.ErrorIs(t, err, neat.ErrInvalidInputSize)
}
