package neat

import (
	"fmt"
	"io"
	"time"

	"github.com/gofrs/uuid"
	"github.com/gosuri/uitable"
)

// Reporter receives progress events from a Population.
// Implementations must not modify the networks or species they are given.
type Reporter interface {
	StartGeneration(generation int)
	PostEvaluate(generation int, fitness []float64, best *Network)
	SpeciesStagnant(generation int, s *Species)
	EndGeneration(generation int, fitness []float64, species []*Species)
	FoundSolution(generation int, best *Network, fitness float64)
}

// ReporterSet dispatches events to every registered reporter in order.
type ReporterSet struct {
	reporters []Reporter
}

// Add registers a reporter.
func (rs *ReporterSet) Add(r Reporter) {
	rs.reporters = append(rs.reporters, r)
}

// Remove unregisters a reporter.
func (rs *ReporterSet) Remove(r Reporter) {
	for i, existing := range rs.reporters {
		if existing == r {
			rs.reporters = append(rs.reporters[:i], rs.reporters[i+1:]...)
			return
		}
	}
}

// StartGeneration forwards the start of a generation.
func (rs *ReporterSet) StartGeneration(generation int) {
	for _, r := range rs.reporters {
		r.StartGeneration(generation)
	}
}

// PostEvaluate forwards the fitness of the evaluated population.
func (rs *ReporterSet) PostEvaluate(generation int, fitness []float64, best *Network) {
	for _, r := range rs.reporters {
		r.PostEvaluate(generation, fitness, best)
	}
}

// SpeciesStagnant forwards the removal of a stagnant species.
func (rs *ReporterSet) SpeciesStagnant(generation int, s *Species) {
	for _, r := range rs.reporters {
		r.SpeciesStagnant(generation, s)
	}
}

// EndGeneration forwards the end of a generation.
func (rs *ReporterSet) EndGeneration(generation int, fitness []float64, species []*Species) {
	for _, r := range rs.reporters {
		r.EndGeneration(generation, fitness, species)
	}
}

// FoundSolution forwards a network that met the fitness threshold.
func (rs *ReporterSet) FoundSolution(generation int, best *Network, fitness float64) {
	for _, r := range rs.reporters {
		r.FoundSolution(generation, best, fitness)
	}
}

// StdOutReporter prints a human readable progress log.
type StdOutReporter struct {
	w                 io.Writer
	runID             uuid.UUID
	showSpeciesDetail bool
	genStart          time.Time
}

// NewStdOutReporter creates a reporter writing to w. With showSpeciesDetail
// a table of all species is printed at the end of every generation.
func NewStdOutReporter(w io.Writer, runID uuid.UUID, showSpeciesDetail bool) *StdOutReporter {
	return &StdOutReporter{w: w, runID: runID, showSpeciesDetail: showSpeciesDetail}
}

// StartGeneration prints the generation header and starts its timer.
func (r *StdOutReporter) StartGeneration(generation int) {
	r.genStart = time.Now()
	fmt.Fprintf(r.w, "\n ****** Running generation %d (run %s) ****** \n\n", generation, r.runID)
}

// PostEvaluate prints fitness statistics and the size of the best network.
func (r *StdOutReporter) PostEvaluate(generation int, fitness []float64, best *Network) {
	fmt.Fprintf(r.w, "Population's average fitness: %.5f stdev: %.5f\n", Mean(fitness), Stdev(fitness))
	if best != nil {
		fmt.Fprintf(r.w, "Best fitness: %.5f - size: (%d, %d)\n",
			MaxFloat(fitness), len(best.nodes), len(best.connections))
	}
}

// SpeciesStagnant prints the removed species.
func (r *StdOutReporter) SpeciesStagnant(generation int, s *Species) {
	fmt.Fprintf(r.w, "Species of %d members removed due to stagnation (shared fitness %.3f)\n",
		s.Size(), s.SharedFitness)
}

// EndGeneration prints the species count, the optional species table and the elapsed time.
func (r *StdOutReporter) EndGeneration(generation int, fitness []float64, species []*Species) {
	fmt.Fprintf(r.w, "Population of %d members in %d species\n", len(fitness), len(species))
	if r.showSpeciesDetail && len(species) > 0 {
		table := uitable.New()
		table.MaxColWidth = 40
		table.AddRow("Species", "Size", "Best", "Shared", "Offspring")
		for i, s := range species {
			table.AddRow(i, s.Size(),
				fmt.Sprintf("%.3f", fitness[s.Best]),
				fmt.Sprintf("%.3f", s.SharedFitness),
				s.Offspring)
		}
		fmt.Fprintln(r.w, table)
	}
	fmt.Fprintf(r.w, "Generation time: %.3f sec\n", time.Since(r.genStart).Seconds())
}

// FoundSolution prints the winning network's fitness and complexity.
func (r *StdOutReporter) FoundSolution(generation int, best *Network, fitness float64) {
	fmt.Fprintf(r.w, "\nBest individual in generation %d meets fitness threshold - fitness %.5f, complexity: (%d, %d)\n",
		generation, fitness, len(best.nodes), len(best.connections))
}
