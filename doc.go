// Package neat is the root of histneat, a Go implementation of NeuroEvolution
// of Augmenting Topologies (NEAT) with run-wide historical markings.
//
// The algorithm lives in the neat subpackage. Every structural mutation of a
// run is recorded in a single innovation registry, so the same connection or
// node split arising in unrelated networks gets the same ids. Networks are
// kept acyclic by construction and evaluate with a fixed activation per node
// role: identity for sensors, 1.0 for the bias, sigmoid for outputs and ReLU
// for hidden nodes. The nn subpackage compiles a network into a flat
// phenotype for repeated activation.
//
// Basic usage:
//
//	config, err := neat.LoadConfig("path/to/config")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	pop, err := neat.NewPopulation(config, nil)
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//	pop.Reporters.Add(neat.NewStdOutReporter(os.Stdout, pop.RunID, false))
//
//	winner, err := pop.Run(func(n *neat.Network) float64 {
//		out, err := n.FeedForward(inputs)
//		if err != nil {
//			return 0
//		}
//		return score(out)
//	}, 100)
//	if err != nil {
//		log.Fatalf("Error running generation: %v", err)
//	}
//	if winner != nil {
//		fmt.Println("Solution found!")
//	}
package neat
