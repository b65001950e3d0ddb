package engine

import (
	"github.com/cs-au-dk/ctxpta/analysis/ptgraph"
	"github.com/cs-au-dk/ctxpta/analysis/statement"
	"github.com/cs-au-dk/ctxpta/utils/graph"
	"golang.org/x/exp/slices"
)

// copyGraph returns the unconditional copy edges between current
// representatives, and the sources of those edges in id order.
func (s *Solver) copyGraph() (map[ptgraph.NodeID][]ptgraph.NodeID, []ptgraph.NodeID) {
	adj := make(map[ptgraph.NodeID][]ptgraph.NodeID)
	for _, st := range s.reg.AllStatements() {
		c, ok := st.(statement.Copier)
		if !ok {
			continue
		}
		for _, ctx := range s.graph.ContextsOf(st.Method()) {
			for _, e := range c.CopyEdges(ctx, s.graph) {
				src, dst := s.graph.Find(e.Src), s.graph.Find(e.Dst)
				if src != dst {
					adj[src] = append(adj[src], dst)
				}
			}
		}
	}

	starts := make([]ptgraph.NodeID, 0, len(adj))
	for n := range adj {
		starts = append(starts, n)
	}
	slices.Sort(starts)
	return adj, starts
}

// collapseCycles merges the nodes of every cycle of copy edges into the
// member with the lowest id, and returns the number of merged nodes.
func (s *Solver) collapseCycles() int {
	adj, starts := s.copyGraph()
	scc := graph.OfEdges(adj).SCC(starts)

	merged := 0
	for _, comp := range scc.Cyclic() {
		rep := comp[0]
		for _, n := range comp {
			if n < rep {
				rep = n
			}
		}
		for _, n := range comp {
			if n != rep {
				s.graph.Collapse(n, rep)
				merged++
			}
		}
		if s.logger.LogsDebug() {
			s.logger.Debugf("Collapsed copy cycle of %d nodes into %s", len(comp), s.graph.Key(rep))
		}
	}
	return merged
}
