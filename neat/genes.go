package neat

import (
	"fmt"
	"math"
	"math/rand"
)

// --------------------------- NodeGene ---------------------------

// NodeGene represents a node (neuron) in a network genome.
type NodeGene struct {
	ID   int // Global node id; the layout of low ids is fixed by the sensor/output counts
	Type NodeType

	// Transient evaluation state, only meaningful during one FeedForward pass.
	value float64
	state evalState
}

// evalState marks the progress of a node within one evaluation pass.
type evalState uint8

const (
	unevaluated evalState = iota
	inProgress
	evaluated
)

// String returns a string representation of the NodeGene.
func (ng *NodeGene) String() string {
	return fmt.Sprintf("NodeGene(ID: %d, Type: %s)", ng.ID, ng.Type)
}

// Copy creates a copy of the NodeGene without its transient value.
func (ng *NodeGene) Copy() NodeGene {
	return NodeGene{ID: ng.ID, Type: ng.Type}
}

// giveInput caches the activated value of x on the node.
func (ng *NodeGene) giveInput(x float64) float64 {
	ng.value = Activate(ng.Type, x)
	ng.state = evaluated
	return ng.value
}

// clear drops the cached value.
func (ng *NodeGene) clear() {
	ng.value = 0
	ng.state = unevaluated
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionGene represents a weighted directed edge between two nodes.
// Innovation is the run-wide id shared by every genome carrying the same edge.
type ConnectionGene struct {
	Innovation int
	In         int
	Out        int
	Weight     float64
	Enabled    bool
}

// String returns a string representation of the ConnectionGene.
func (cg *ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(#%d: %d->%d, Weight: %.3f, Enabled: %t)",
		cg.Innovation, cg.In, cg.Out, cg.Weight, cg.Enabled)
}

// Copy creates a copy of the ConnectionGene.
func (cg *ConnectionGene) Copy() ConnectionGene {
	return *cg
}

// --------------------------- Weight Helpers ---------------------------

// newWeight draws a fresh weight according to the init settings in config.
func newWeight(config *GenomeConfig, rng *rand.Rand) float64 {
	mean, stdev := config.WeightInitMean, config.WeightInitStdev
	var val float64
	switch config.WeightInitType {
	case "uniform":
		// Approximate the range with two standard deviations around the mean.
		rangeMin := math.Max(config.WeightMinValue, mean-(2*stdev))
		rangeMax := math.Min(config.WeightMaxValue, mean+(2*stdev))
		if rangeMax < rangeMin {
			rangeMax = rangeMin
		}
		val = rng.Float64()*(rangeMax-rangeMin) + rangeMin
	default:
		val = rng.NormFloat64()*stdev + mean
	}
	return clamp(val, config.WeightMinValue, config.WeightMaxValue)
}

// perturbWeight adds gaussian noise scaled by the mutate power.
func perturbWeight(w float64, config *GenomeConfig, rng *rand.Rand) float64 {
	w += rng.NormFloat64() * config.WeightMutatePower
	return clamp(w, config.WeightMinValue, config.WeightMaxValue)
}
