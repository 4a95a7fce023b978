package neat

import (
	"fmt"
	"math"
)

// NodeType identifies the role of a node within a network.
// The set is closed: every node is exactly one of these four kinds.
type NodeType int

const (
	Sensor NodeType = iota
	Bias
	Output
	Hidden
)

// String returns the lowercase name of the node type.
func (t NodeType) String() string {
	switch t {
	case Sensor:
		return "sensor"
	case Bias:
		return "bias"
	case Output:
		return "output"
	case Hidden:
		return "hidden"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Activate applies the activation rule of the given node type to x.
//
//	Sensor -> identity
//	Bias   -> constant 1.0
//	Output -> logistic sigmoid
//	Hidden -> rectified linear
func Activate(t NodeType, x float64) float64 {
	switch t {
	case Sensor:
		return Identity(x)
	case Bias:
		return 1.0
	case Output:
		return Sigmoid(x)
	case Hidden:
		return ReLU(x)
	default:
		panic(fmt.Sprintf("unknown node type %d", int(t)))
	}
}

// --- Activation Function Implementations ---

// Sigmoid is the standard logistic function 1 / (1 + exp(-x)).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// ReLU (Rectified Linear Unit) activation function.
func ReLU(x float64) float64 {
	return math.Max(0, x)
}

// Identity activation function (linear).
func Identity(x float64) float64 {
	return x
}
