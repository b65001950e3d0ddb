package engine

import (
	"github.com/cs-au-dk/ctxpta/analysis/deps"
	"golang.org/x/sync/errgroup"
)

// naive sweeps over all statements in all contexts of their method until
// a sweep changes nothing.
func (s *Solver) naive() error {
	s.graph.AddEntry(s.reg.Entry(), s.policy.InitialContext())

	for {
		changed := false
		for _, st := range s.reg.AllStatements() {
			for _, ctx := range s.graph.ContextsOf(st.Method()) {
				c, err := s.apply(deps.Entry{Statement: st, Context: ctx}, s.graph)
				if err != nil {
					return err
				}
				changed = c || changed
			}
		}

		if s.cfg.CollapseCycles {
			s.collapseCycles()
		}
		s.endSweep()

		if !changed {
			return nil
		}
		if s.cfg.MaxSweeps > 0 && s.sweeps >= s.cfg.MaxSweeps {
			return ErrNotConverged
		}
	}
}

// defaultCollapseEvery is the default number of entries the worklist
// driver processes between two cycle collapses.
const defaultCollapseEvery = 1024

// worklist processes scheduled entries one at a time, lowest id first.
// Cycles are collapsed every collapseEvery entries and when the schedule
// drains.
func (s *Solver) worklist() error {
	for {
		pending := 0
		for id, ok := s.rec.TakeMin(); ok; id, ok = s.rec.TakeMin() {
			if _, err := s.process(id); err != nil {
				return err
			}
			if pending++; s.cfg.CollapseCycles && pending >= s.collapseEvery {
				pending = 0
				s.collapseCycles()
			}
		}

		// Collapsing reschedules the readers of merged nodes.
		if s.cfg.CollapseCycles && s.collapseCycles() > 0 {
			s.endSweep()
			continue
		}
		s.endSweep()
		return nil
	}
}

// parallel processes all scheduled entries in a batch, spread over a
// bounded number of goroutines, until no entry is scheduled.
func (s *Solver) parallel() error {
	workers := s.workers()
	for {
		batch := s.rec.TakeAll()
		if len(batch) == 0 {
			if s.cfg.CollapseCycles && s.collapseCycles() > 0 {
				continue
			}
			return nil
		}

		var eg errgroup.Group
		eg.SetLimit(workers)
		for _, id := range batch {
			id := id
			eg.Go(func() error {
				_, err := s.process(id)
				return err
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}

		if s.cfg.CollapseCycles {
			s.collapseCycles()
		}
		s.endSweep()
	}
}
