package neat

import "fmt"

// Link is the structural identity of a connection: its endpoints.
type Link struct {
	In  int
	Out int
}

// Split records the ids minted the first time a connection was split by AddNode.
type Split struct {
	Node    int // The hidden node inserted into the connection
	InConn  int // Innovation of source -> Node
	OutConn int // Innovation of Node -> target
}

// Innovations is the historical-marking database of one evolutionary run.
// Every structural mutation mints or looks up its ids here, so the same
// mutation arising in unrelated networks ends up with identical ids.
//
// It is owned by the Population and passed explicitly into the operators.
// It is not safe for concurrent use.
type Innovations struct {
	numSensors int
	numOutputs int

	nextNode    int
	connections []Link  // Indexed by innovation id
	outgoing    [][]int // Indexed by source node id -> innovation ids leaving it
	splits      map[int]Split
}

// NewInnovations creates the registry for networks with the given number of
// sensors and outputs. Ids below numSensors+1+numOutputs are reserved for the
// sensor, bias and output nodes.
func NewInnovations(numSensors, numOutputs int) *Innovations {
	fixed := numSensors + 1 + numOutputs
	return &Innovations{
		numSensors: numSensors,
		numOutputs: numOutputs,
		nextNode:   fixed,
		outgoing:   make([][]int, fixed),
		splits:     make(map[int]Split),
	}
}

// NumSensors returns the number of sensor nodes of every network in the run.
func (inn *Innovations) NumSensors() int { return inn.numSensors }

// NumOutputs returns the number of output nodes of every network in the run.
func (inn *Innovations) NumOutputs() int { return inn.numOutputs }

// NumNodes returns the number of node ids minted so far.
func (inn *Innovations) NumNodes() int { return inn.nextNode }

// NumConnections returns the number of connection innovations minted so far.
func (inn *Innovations) NumConnections() int { return len(inn.connections) }

// Connection returns the endpoints of the connection with the given innovation id.
func (inn *Innovations) Connection(innovation int) (Link, bool) {
	if innovation < 0 || innovation >= len(inn.connections) {
		return Link{}, false
	}
	return inn.connections[innovation], true
}

// Lookup returns the innovation id of the in->out connection if it was ever created.
func (inn *Innovations) Lookup(in, out int) (int, bool) {
	if in < 0 || in >= len(inn.outgoing) {
		return 0, false
	}
	for _, id := range inn.outgoing[in] {
		if inn.connections[id].Out == out {
			return id, true
		}
	}
	return 0, false
}

// register mints the next innovation id for in->out.
// Callers must have checked Lookup first.
func (inn *Innovations) register(in, out int) int {
	id := len(inn.connections)
	inn.connections = append(inn.connections, Link{In: in, Out: out})
	inn.outgoing[in] = append(inn.outgoing[in], id)
	return id
}

// newNode mints the next hidden node id.
func (inn *Innovations) newNode() int {
	id := inn.nextNode
	inn.nextNode++
	inn.outgoing = append(inn.outgoing, nil)
	return id
}

// LookupSplit returns the ids produced when the given connection was first split.
func (inn *Innovations) LookupSplit(innovation int) (Split, bool) {
	s, ok := inn.splits[innovation]
	return s, ok
}

// split returns the ids for splitting the given connection, minting and
// recording them on first use.
func (inn *Innovations) split(innovation int) Split {
	if s, ok := inn.splits[innovation]; ok {
		return s
	}
	link := inn.connections[innovation]
	node := inn.newNode()
	s := Split{
		Node:    node,
		InConn:  inn.register(link.In, node),
		OutConn: inn.register(node, link.Out),
	}
	inn.splits[innovation] = s
	return s
}

// reachable marks every node reachable from start through the global
// connection graph, start included. The result is indexed by node id.
func (inn *Innovations) reachable(start int) []bool {
	seen := make([]bool, inn.nextNode)
	stack := []int{start}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[current] {
			continue
		}
		seen[current] = true
		for _, id := range inn.outgoing[current] {
			stack = append(stack, inn.connections[id].Out)
		}
	}
	return seen
}

// adopt records hand-built genes. Connections must be sorted by innovation id.
// On error the registry is restored to its previous state.
func (inn *Innovations) adopt(nodes []NodeGene, connections []ConnectionGene) (err error) {
	numConns, numNodes := len(inn.connections), inn.nextNode
	defer func() {
		if err != nil {
			inn.truncate(numConns, numNodes)
		}
	}()

	for i := range nodes {
		for inn.nextNode <= nodes[i].ID {
			inn.newNode()
		}
	}
	for _, c := range connections {
		want := Link{In: c.In, Out: c.Out}
		if link, ok := inn.Connection(c.Innovation); ok {
			if link != want {
				return fmt.Errorf("%w: innovation %d is %d->%d in this run, not %d->%d",
					ErrInvalidNetwork, c.Innovation, link.In, link.Out, c.In, c.Out)
			}
			continue
		}
		if c.Innovation != len(inn.connections) {
			return fmt.Errorf("%w: innovation %d is not the next free id %d",
				ErrInvalidNetwork, c.Innovation, len(inn.connections))
		}
		if id, ok := inn.Lookup(c.In, c.Out); ok {
			return fmt.Errorf("%w: %d->%d already has innovation %d", ErrInvalidNetwork, c.In, c.Out, id)
		}
		if inn.reachable(c.Out)[c.In] {
			return fmt.Errorf("%w: %d->%d closes a cycle in the run's connection graph", ErrInvalidNetwork, c.In, c.Out)
		}
		inn.register(c.In, c.Out)
	}
	return nil
}

// truncate forgets every connection and node minted after the given counts.
func (inn *Innovations) truncate(numConns, numNodes int) {
	for id := len(inn.connections) - 1; id >= numConns; id-- {
		in := inn.connections[id].In
		inn.outgoing[in] = inn.outgoing[in][:len(inn.outgoing[in])-1]
	}
	inn.connections = inn.connections[:numConns]
	inn.outgoing = inn.outgoing[:numNodes]
	inn.nextNode = numNodes
}
