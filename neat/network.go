package neat

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Network is one genome: the node genes it uses and its connection genes
// ordered by innovation id. It also evaluates itself (the phenotype) and
// carries the elementary mutation and crossover operators.
//
// Node ids 0..NumSensors()-1 are sensors, NumSensors() is the bias node and the
// next NumOutputs() ids are the outputs. Every higher id is a hidden node.
// The graph of enabled connections is kept acyclic by the mutation operators.
type Network struct {
	numSensors int
	numOutputs int

	nodes       []NodeGene       // Sorted by ID
	connections []ConnectionGene // Sorted by Innovation
}

// NewNetwork builds the sensor, bias and output nodes of a fresh network and
// adds exactly one connection so the network starts minimally functional.
func NewNetwork(inn *Innovations, config *GenomeConfig, rng *rand.Rand) *Network {
	n := &Network{
		numSensors: inn.NumSensors(),
		numOutputs: inn.NumOutputs(),
	}
	fixed := n.numSensors + 1 + n.numOutputs
	n.nodes = make([]NodeGene, fixed)
	for id := range n.nodes {
		n.nodes[id] = NodeGene{ID: id, Type: n.fixedType(id)}
	}
	n.AddConnection(inn, config, rng)
	return n
}

// NewNetworkFromGenes assembles a network from explicit genes, for fixtures
// and hand-designed topologies. The genes are copied and sorted.
//
// The genes are recorded in inn so the network can be mutated and crossed
// like any other member of the run: hidden node ids are reserved, and each
// innovation id must either already name the same link or be the next free id.
// Nothing is recorded when an error is returned.
func NewNetworkFromGenes(inn *Innovations, nodes []NodeGene, connections []ConnectionGene) (*Network, error) {
	numSensors, numOutputs := inn.NumSensors(), inn.NumOutputs()
	if numSensors <= 0 || numOutputs <= 0 {
		return nil, fmt.Errorf("%w: need at least one sensor and one output", ErrInvalidNetwork)
	}
	n := &Network{
		numSensors:  numSensors,
		numOutputs:  numOutputs,
		nodes:       make([]NodeGene, 0, len(nodes)),
		connections: make([]ConnectionGene, 0, len(connections)),
	}
	for i := range nodes {
		n.nodes = append(n.nodes, nodes[i].Copy())
	}
	n.connections = append(n.connections, connections...)
	sort.Slice(n.nodes, func(i, j int) bool { return n.nodes[i].ID < n.nodes[j].ID })
	sort.Slice(n.connections, func(i, j int) bool {
		return n.connections[i].Innovation < n.connections[j].Innovation
	})

	// Check the fixed node layout.
	fixed := numSensors + 1 + numOutputs
	if len(n.nodes) < fixed {
		return nil, fmt.Errorf("%w: expected at least %d nodes, got %d", ErrInvalidNetwork, fixed, len(n.nodes))
	}
	for i, node := range n.nodes {
		if i > 0 && n.nodes[i-1].ID == node.ID {
			return nil, fmt.Errorf("%w: duplicate node id %d", ErrInvalidNetwork, node.ID)
		}
		if i < fixed {
			if node.ID != i || node.Type != n.fixedType(i) {
				return nil, fmt.Errorf("%w: node %d must be %s", ErrInvalidNetwork, i, n.fixedType(i))
			}
		} else if node.Type != Hidden {
			return nil, fmt.Errorf("%w: node %d must be hidden", ErrInvalidNetwork, node.ID)
		}
	}

	for i, c := range n.connections {
		if i > 0 && n.connections[i-1].Innovation == c.Innovation {
			return nil, fmt.Errorf("%w: duplicate innovation %d", ErrInvalidNetwork, c.Innovation)
		}
		if _, ok := n.indexOf(c.In); !ok {
			return nil, fmt.Errorf("%w: connection %d references unknown node %d", ErrInvalidNetwork, c.Innovation, c.In)
		}
		out, ok := n.indexOf(c.Out)
		if !ok {
			return nil, fmt.Errorf("%w: connection %d references unknown node %d", ErrInvalidNetwork, c.Innovation, c.Out)
		}
		if t := n.nodes[out].Type; t == Sensor || t == Bias {
			return nil, fmt.Errorf("%w: connection %d targets %s node %d", ErrInvalidNetwork, c.Innovation, t, c.Out)
		}
	}
	if !n.IsAcyclic() {
		return nil, fmt.Errorf("%w: enabled connections form a cycle", ErrInvalidNetwork)
	}
	if err := inn.adopt(n.nodes, n.connections); err != nil {
		return nil, err
	}
	return n, nil
}

// fixedType returns the type of a node id below the hidden range.
func (n *Network) fixedType(id int) NodeType {
	switch {
	case id < n.numSensors:
		return Sensor
	case id == n.numSensors:
		return Bias
	case id <= n.numSensors+n.numOutputs:
		return Output
	default:
		return Hidden
	}
}

// NumSensors returns the number of sensor nodes.
func (n *Network) NumSensors() int { return n.numSensors }

// NumOutputs returns the number of output nodes.
func (n *Network) NumOutputs() int { return n.numOutputs }

// Nodes returns a copy of the node genes ordered by id.
func (n *Network) Nodes() []NodeGene {
	nodes := make([]NodeGene, len(n.nodes))
	for i := range n.nodes {
		nodes[i] = n.nodes[i].Copy()
	}
	return nodes
}

// Connections returns a copy of the connection genes ordered by innovation id.
func (n *Network) Connections() []ConnectionGene {
	conns := make([]ConnectionGene, len(n.connections))
	copy(conns, n.connections)
	return conns
}

// Node returns the node gene with the given id.
func (n *Network) Node(id int) (NodeGene, bool) {
	i, ok := n.indexOf(id)
	if !ok {
		return NodeGene{}, false
	}
	return n.nodes[i].Copy(), true
}

// Connection returns the connection gene with the given innovation id.
func (n *Network) Connection(innovation int) (ConnectionGene, bool) {
	i, ok := n.findConnection(innovation)
	if !ok {
		return ConnectionGene{}, false
	}
	return n.connections[i], true
}

// Clone creates a deep copy of the network.
func (n *Network) Clone() *Network {
	return &Network{
		numSensors:  n.numSensors,
		numOutputs:  n.numOutputs,
		nodes:       n.Nodes(),
		connections: n.Connections(),
	}
}

// String returns a compact description of the genome.
func (n *Network) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Network(Sensors: %d, Outputs: %d, Nodes: %d, Connections: %d)",
		n.numSensors, n.numOutputs, len(n.nodes), len(n.connections))
	for i := range n.connections {
		b.WriteString("\n  ")
		b.WriteString(n.connections[i].String())
	}
	return b.String()
}

// indexOf finds the slice position of a node id.
func (n *Network) indexOf(id int) (int, bool) {
	i := sort.Search(len(n.nodes), func(i int) bool { return n.nodes[i].ID >= id })
	return i, i < len(n.nodes) && n.nodes[i].ID == id
}

// findConnection finds the slice position of an innovation id.
func (n *Network) findConnection(innovation int) (int, bool) {
	i := sort.Search(len(n.connections), func(i int) bool {
		return n.connections[i].Innovation >= innovation
	})
	return i, i < len(n.connections) && n.connections[i].Innovation == innovation
}

// addNode inserts a node gene, keeping the id order. Existing ids are left alone.
func (n *Network) addNode(node NodeGene) {
	i, ok := n.indexOf(node.ID)
	if ok {
		return
	}
	n.nodes = append(n.nodes, NodeGene{})
	copy(n.nodes[i+1:], n.nodes[i:])
	n.nodes[i] = node
}

// upsertConnection inserts a gene in innovation order, or overwrites the weight
// and enabled flag of the gene already carrying that innovation.
func (n *Network) upsertConnection(gene ConnectionGene) {
	i, ok := n.findConnection(gene.Innovation)
	if ok {
		n.connections[i].Weight = gene.Weight
		n.connections[i].Enabled = gene.Enabled
		return
	}
	n.connections = append(n.connections, ConnectionGene{})
	copy(n.connections[i+1:], n.connections[i:])
	n.connections[i] = gene
}

// --------------------------- Evaluation ---------------------------

// FeedForward evaluates the network on one input vector and returns the
// activation of every output node, in output id order.
//
// Sensors take the inputs, the bias node is set to 1.0, and each output pulls
// the weighted sum of its enabled incoming connections, resolving upstream
// nodes on demand. All cached node values are cleared before returning, so
// repeated calls with the same input yield the same output.
func (n *Network) FeedForward(inputs []float64) ([]float64, error) {
	if len(inputs) != n.numSensors {
		return nil, fmt.Errorf("%w: got %d inputs, network has %d sensors", ErrInvalidInputSize, len(inputs), n.numSensors)
	}
	defer n.clearValues()

	incoming := n.incoming()
	for i := 0; i < n.numSensors; i++ {
		n.nodes[i].giveInput(inputs[i])
	}
	n.nodes[n.numSensors].giveInput(1.0)

	outputs := make([]float64, n.numOutputs)
	for i := range outputs {
		v, err := n.evaluateNode(n.numSensors+1+i, incoming)
		if err != nil {
			return nil, err
		}
		outputs[i] = v
	}
	return outputs, nil
}

// incoming maps each node position to the positions of its enabled incoming connections.
func (n *Network) incoming() [][]int {
	in := make([][]int, len(n.nodes))
	for i := range n.connections {
		c := &n.connections[i]
		if !c.Enabled {
			continue
		}
		if pos, ok := n.indexOf(c.Out); ok {
			in[pos] = append(in[pos], i)
		}
	}
	return in
}

// evaluateNode returns the activation of the node at pos, computing and caching
// it first when needed. A node met again while its own inputs are still being
// resolved means the graph has a cycle.
func (n *Network) evaluateNode(pos int, incoming [][]int) (float64, error) {
	node := &n.nodes[pos]
	switch node.state {
	case evaluated:
		return node.value, nil
	case inProgress:
		return 0, fmt.Errorf("%w: node %d", ErrCycle, node.ID)
	}
	node.state = inProgress

	sum := 0.0
	for _, ci := range incoming[pos] {
		c := &n.connections[ci]
		src, ok := n.indexOf(c.In)
		if !ok {
			continue
		}
		v, err := n.evaluateNode(src, incoming)
		if err != nil {
			return 0, err
		}
		sum += c.Weight * v
	}
	return node.giveInput(sum), nil
}

func (n *Network) clearValues() {
	for i := range n.nodes {
		n.nodes[i].clear()
	}
}

// TopologicalOrder returns the node ids sorted so that every enabled
// connection points forward. Ties are broken by id.
func (n *Network) TopologicalOrder() ([]int, error) {
	g := simple.NewDirectedGraph()
	for i := range n.nodes {
		g.AddNode(simple.Node(n.nodes[i].ID))
	}
	for i := range n.connections {
		c := &n.connections[i]
		if !c.Enabled {
			continue
		}
		if c.In == c.Out {
			return nil, fmt.Errorf("%w: self loop on node %d", ErrCycle, c.In)
		}
		g.SetEdge(g.NewEdge(simple.Node(c.In), simple.Node(c.Out)))
	}

	sorted, err := topo.SortStabilized(g, byID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCycle, err)
	}
	ids := make([]int, len(sorted))
	for i, node := range sorted {
		ids[i] = int(node.ID())
	}
	return ids, nil
}

// IsAcyclic reports whether the enabled connections form a DAG.
func (n *Network) IsAcyclic() bool {
	_, err := n.TopologicalOrder()
	return err == nil
}

func byID(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}

// --------------------------- Mutation ---------------------------

// AddConnection adds (or revives) one connection ending at a random output or
// hidden node.
//
// Every node reachable from the chosen target through the run-wide connection
// graph is excluded as a source, as are outputs, so no cycle can form in any
// network. When the chosen pair already has an innovation id it is reused:
// a gene this network already carries is re-enabled with a fresh weight.
//
// It returns false when the target has no legal source, leaving the network unchanged.
func (n *Network) AddConnection(inn *Innovations, config *GenomeConfig, rng *rand.Rand) bool {
	first := n.numSensors + 1
	if len(n.nodes) <= first {
		return false
	}
	target := n.nodes[first+rng.Intn(len(n.nodes)-first)].ID

	blocked := inn.reachable(target)
	sources := make([]int, 0, len(n.nodes))
	for i := range n.nodes {
		node := &n.nodes[i]
		if node.Type == Output || (node.ID < len(blocked) && blocked[node.ID]) {
			continue
		}
		sources = append(sources, node.ID)
	}
	if len(sources) == 0 {
		return false
	}
	source := sources[rng.Intn(len(sources))]

	id, ok := inn.Lookup(source, target)
	if !ok {
		id = inn.register(source, target)
	}
	n.upsertConnection(ConnectionGene{
		Innovation: id,
		In:         source,
		Out:        target,
		Weight:     newWeight(config, rng),
		Enabled:    true,
	})
	return true
}

// AddNode splits a random enabled connection in two: source -> new node with
// weight 1.0 and new node -> target with the old weight. The old gene is disabled.
// Splitting a connection that was already split somewhere in the run reuses
// the node and connection ids minted back then.
//
// It returns false when there is no enabled connection to split.
func (n *Network) AddNode(inn *Innovations, rng *rand.Rand) bool {
	enabled := make([]int, 0, len(n.connections))
	for i := range n.connections {
		if n.connections[i].Enabled {
			enabled = append(enabled, i)
		}
	}
	if len(enabled) == 0 {
		return false
	}

	i := enabled[rng.Intn(len(enabled))]
	old := n.connections[i]
	n.connections[i].Enabled = false

	s := inn.split(old.Innovation)
	n.addNode(NodeGene{ID: s.Node, Type: Hidden})
	n.upsertConnection(ConnectionGene{Innovation: s.InConn, In: old.In, Out: s.Node, Weight: 1.0, Enabled: true})
	n.upsertConnection(ConnectionGene{Innovation: s.OutConn, In: s.Node, Out: old.Out, Weight: old.Weight, Enabled: true})
	return true
}

// Mutate applies, each with its own probability from config, one weight
// mutation, an AddNode and an AddConnection.
func (n *Network) Mutate(inn *Innovations, config *GenomeConfig, rng *rand.Rand) {
	if rng.Float64() < config.WeightMutateRate && len(n.connections) > 0 {
		c := &n.connections[rng.Intn(len(n.connections))]
		if rng.Float64() < config.WeightReplaceRate {
			c.Weight = newWeight(config, rng)
		} else {
			c.Weight = perturbWeight(c.Weight, config, rng)
		}
	}

	if rng.Float64() < config.NodeAddProb {
		n.AddNode(inn, rng)
	}
	if rng.Float64() < config.ConnAddProb {
		n.AddConnection(inn, config, rng)
	}
}

// Cross creates a child from n (the primary parent) and other.
//
// Genes of n with a matching innovation in other take other's weight half of
// the time; their enabled flag always comes from n. Genes only n has are copied
// as they are and genes only other has are not inherited. The child uses n's
// node set and is mutated before it is returned.
func (n *Network) Cross(other *Network, inn *Innovations, config *GenomeConfig, rng *rand.Rand) *Network {
	if len(n.connections) == 0 || len(other.connections) == 0 {
		panic(ErrEmptyGenome)
	}

	child := &Network{
		numSensors:  n.numSensors,
		numOutputs:  n.numOutputs,
		nodes:       n.Nodes(),
		connections: make([]ConnectionGene, 0, len(n.connections)),
	}

	j := 0
	for _, gene := range n.connections {
		for j < len(other.connections) && other.connections[j].Innovation < gene.Innovation {
			j++
		}
		if j < len(other.connections) && other.connections[j].Innovation == gene.Innovation {
			if rng.Float64() < 0.5 {
				gene.Weight = other.connections[j].Weight
			}
		}
		child.connections = append(child.connections, gene)
	}

	child.Mutate(inn, config, rng)
	return child
}
