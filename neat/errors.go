package neat

import "errors"

var (
	// ErrInvalidInputSize is returned when an input vector does not match the number of sensors.
	ErrInvalidInputSize = errors.New("invalid input size")
	// ErrCycle is returned when evaluation reaches a node that is still being evaluated.
	ErrCycle = errors.New("cycle detected in network")
	// ErrEmptyGenome is the panic value for operations that need at least one connection gene.
	ErrEmptyGenome = errors.New("genome has no connection genes")
	// ErrEmptyPopulation is returned when a generation is run without any individuals.
	ErrEmptyPopulation = errors.New("population is empty")
	// ErrInvalidNetwork is returned when hand-built genes violate the node layout.
	ErrInvalidNetwork = errors.New("invalid network")
)
