// Package nn compiles a network genome into a flat phenotype that can be
// activated repeatedly without walking the genome.
package nn

import (
	"fmt"

	"github.com/campoy/unique"

	"github.com/baldhumanity/histneat/neat"
)

// neuralNode represents a node during network activation.
type neuralNode struct {
	ID     int
	Type   neat.NodeType
	Inputs []link // Enabled incoming connections
}

type link struct {
	From   int // Index into FeedForwardNetwork.values
	Weight float64
}

// FeedForwardNetwork is a phenotype with a precomputed evaluation order.
// Only nodes that can influence an output are kept.
type FeedForwardNetwork struct {
	NumSensors int
	NumOutputs int

	evalOrder []neuralNode // Topologically sorted non-input nodes
	slots     map[int]int  // Node id -> index into values
	outputs   []int        // Value index of each output node
	values    []float64
}

// Compile builds a runnable feed-forward network from a genome.
// It fails with neat.ErrCycle if the enabled connections are not acyclic.
func Compile(g *neat.Network) (*FeedForwardNetwork, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("failed to compile network: %w", err)
	}

	numSensors, numOutputs := g.NumSensors(), g.NumOutputs()
	incoming := make(map[int][]neat.ConnectionGene)
	for _, c := range g.Connections() {
		if c.Enabled {
			incoming[c.Out] = append(incoming[c.Out], c)
		}
	}

	// Walk back from the outputs to find every node that matters.
	required := []int{}
	stack := []int{}
	for i := 0; i < numOutputs; i++ {
		stack = append(stack, numSensors+1+i)
	}
	seen := make(map[int]bool)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		required = append(required, id)
		for _, c := range incoming[id] {
			stack = append(stack, c.In)
		}
	}
	// Sensors and bias always own a slot so inputs can be written by position.
	for id := 0; id <= numSensors; id++ {
		required = append(required, id)
	}
	unique.Slice(&required, func(i, j int) bool { return required[i] < required[j] })

	net := &FeedForwardNetwork{
		NumSensors: numSensors,
		NumOutputs: numOutputs,
		slots:      make(map[int]int, len(required)),
		values:     make([]float64, len(required)),
	}
	for i, id := range required {
		net.slots[id] = i
	}

	for _, id := range order {
		if id <= numSensors {
			continue
		}
		if _, ok := net.slots[id]; !ok {
			continue
		}
		node, _ := g.Node(id)
		compiled := neuralNode{ID: id, Type: node.Type}
		for _, c := range incoming[id] {
			compiled.Inputs = append(compiled.Inputs, link{From: net.slots[c.In], Weight: c.Weight})
		}
		net.evalOrder = append(net.evalOrder, compiled)
	}

	net.outputs = make([]int, numOutputs)
	for i := range net.outputs {
		net.outputs[i] = net.slots[numSensors+1+i]
	}
	return net, nil
}

// Activate computes the network's output for a given slice of input values.
// The input slice must match the number of sensors.
func (net *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != net.NumSensors {
		return nil, fmt.Errorf("%w: got %d inputs, network has %d sensors", neat.ErrInvalidInputSize, len(inputs), net.NumSensors)
	}

	for i := range net.values {
		net.values[i] = 0
	}
	for i, v := range inputs {
		net.values[net.slots[i]] = neat.Activate(neat.Sensor, v)
	}
	net.values[net.slots[net.NumSensors]] = neat.Activate(neat.Bias, 0)

	for _, node := range net.evalOrder {
		sum := 0.0
		for _, in := range node.Inputs {
			sum += net.values[in.From] * in.Weight
		}
		net.values[net.slots[node.ID]] = neat.Activate(node.Type, sum)
	}

	outputs := make([]float64, net.NumOutputs)
	for i, slot := range net.outputs {
		outputs[i] = net.values[slot]
	}
	return outputs, nil
}
