// Package engine computes the least fixed point of the points-to
// constraints of a program.
//
// A Solver owns every mutable structure of one run: the intern store of
// the heap abstraction, the points-to graph and the dependency recorder.
// Three drivers are available. The naive driver sweeps over every
// statement in every context of its method until a sweep changes nothing.
// The worklist driver only reprocesses statements whose inputs changed,
// and the parallel driver does the same in concurrent batches. All drivers
// compute the same result.
package engine

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/cs-au-dk/ctxpta/analysis/config"
	"github.com/cs-au-dk/ctxpta/analysis/deps"
	"github.com/cs-au-dk/ctxpta/analysis/heap"
	"github.com/cs-au-dk/ctxpta/analysis/ptgraph"
	"github.com/cs-au-dk/ctxpta/analysis/statement"
	"github.com/cs-au-dk/ctxpta/utils"
	"github.com/pkg/errors"
)

// State is the progress of a solver.
type State int

const (
	NotStarted State = iota
	Iterating
	Converged
	NonConverged
	// Failed means a statement could not be processed. The graph is
	// partial and must not be read as a result.
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case NonConverged:
		return "non-converged"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrNotConverged is returned when the naive driver exhausts its sweep
// bound before reaching a fixed point.
var ErrNotConverged = errors.New("fixed point not reached within the sweep bound")

// Solver solves the constraints of one program. A solver runs at most once.
type Solver struct {
	cfg    *config.Config
	logger *config.LogGroup
	reg    statement.Registrar

	store  *heap.Store
	policy heap.Policy
	graph  *ptgraph.Graph
	rec    *deps.Recorder

	state     State
	sweeps    int
	processed atomic.Int64

	// collapseEvery is the number of entries the worklist driver processes
	// between two cycle collapses.
	collapseEvery int

	// Colouring to restore on Close, if the solver turned it off.
	restoreColor bool

	// OnSweep, if set, is called after every sweep of the naive driver,
	// every drained worklist and every batch of the parallel driver.
	OnSweep func(sweep int, g *ptgraph.Graph)
}

// NewSolver prepares a run of the configured analysis over the statements
// of reg. With NoColorize set, printing is uncoloured until Close.
func NewSolver(cfg *config.Config, logger *config.LogGroup, reg statement.Registrar) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if reg.Entry() == nil {
		return nil, errors.New("program has no entry method")
	}
	if logger == nil {
		logger = config.NewLogGroup(cfg)
	}

	store := heap.NewStore()
	s := &Solver{
		cfg:           cfg,
		logger:        logger,
		reg:           reg,
		store:         store,
		policy:        cfg.NewPolicy(store),
		graph:         ptgraph.NewGraph(),
		collapseEvery: defaultCollapseEvery,
	}
	s.rec = deps.NewRecorder(s.graph, reg)

	if cfg.NoColorize && utils.Colorized() {
		utils.SetColorize(false)
		s.restoreColor = true
	}
	return s, nil
}

// State is the progress of the solver.
func (s *Solver) State() State {
	return s.state
}

// Policy is the context-sensitivity policy of the run.
func (s *Solver) Policy() heap.Policy {
	return s.policy
}

// Graph is the points-to graph computed so far.
func (s *Solver) Graph() *ptgraph.Graph {
	return s.graph
}

// Solve runs the configured driver to a fixed point. On ErrNotConverged
// the partial result is returned along with the error.
func (s *Solver) Solve() (*Result, error) {
	if s.state != NotStarted {
		return nil, errors.Errorf("solver already %s", s.state)
	}
	s.state = Iterating

	entry := s.reg.Entry()
	s.logger.Infof("Solving from %s with %v (%s driver)", entry, s.policy, s.cfg.Driver)

	var err error
	switch s.cfg.Driver {
	case config.DriverNaive:
		err = s.naive()
	case config.DriverWorklist:
		s.graph.SetListener(s.rec)
		s.graph.AddEntry(entry, s.policy.InitialContext())
		err = s.worklist()
	case config.DriverParallel:
		s.graph.SetListener(s.rec)
		s.graph.AddEntry(entry, s.policy.InitialContext())
		err = s.parallel()
	default:
		err = errors.Errorf("unknown driver %q", s.cfg.Driver)
	}

	switch {
	case err == nil:
		s.state = Converged
	case errors.Is(err, ErrNotConverged):
		s.state = NonConverged
		s.logger.Warnf("Stopped after %d sweeps without reaching a fixed point", s.sweeps)
		return s.result(), err
	default:
		s.state = Failed
		return nil, err
	}

	res := s.result()
	s.logger.Infof("Converged after %d sweeps, %d statements processed, %d call graph nodes",
		res.Sweeps, res.Processed, res.CallGraph.Len())
	return res, nil
}

// Close releases the intern tables of the run and turns colouring back on
// if NewSolver turned it off. Results remain readable.
func (s *Solver) Close() {
	s.store.Clear()
	if s.restoreColor {
		utils.SetColorize(true)
		s.restoreColor = false
	}
}

func (s *Solver) workers() int {
	if s.cfg.Workers > 0 {
		return s.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// process applies one entry, recording the nodes it reads.
func (s *Solver) process(id deps.EntryID) (bool, error) {
	e := s.rec.Entry(id)
	v := view{Graph: s.graph, rec: s.rec, id: id}
	return s.apply(e, v)
}

func (s *Solver) apply(e deps.Entry, g statement.Graph) (bool, error) {
	s.processed.Add(1)
	if s.logger.LogsTrace() {
		s.logger.Tracef("Processing %s", e)
	}

	changed, err := e.Statement.Process(e.Context, s.policy, g, s.reg)
	if err != nil {
		return false, errors.Wrapf(err, "processing %s in %s", e.Statement, e.Context)
	}
	return changed, nil
}

func (s *Solver) endSweep() {
	s.sweeps++
	if s.logger.LogsDebug() {
		s.logger.Debugf("Sweep %d: %d nodes, %d call graph nodes, %d statements processed",
			s.sweeps, s.graph.Len(), s.graph.CallGraph().Len(), s.processed.Load())
	}
	if s.OnSweep != nil {
		s.OnSweep(s.sweeps, s.graph)
	}
}

// view is the graph seen by a statement processed by a worklist driver.
// Reads are recorded so that the entry is rescheduled when they change.
type view struct {
	*ptgraph.Graph
	rec *deps.Recorder
	id  deps.EntryID
}

func (v view) PointsToSet(n ptgraph.NodeID) ptgraph.PointsToSet {
	v.rec.RecordRead(v.id, n)
	return v.Graph.PointsToSet(n)
}
