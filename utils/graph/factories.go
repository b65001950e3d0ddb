package graph

import (
	"github.com/cs-au-dk/ctxpta/analysis/callgraph"
	"github.com/cs-au-dk/ctxpta/analysis/program"
)

// FromCallGraph creates a graph over the methods of a context-sensitive
// call graph. Contexts are projected away and duplicate edges pruned.
func FromCallGraph(cg *callgraph.Graph) Graph[*program.Method] {
	return Of(cg.Callees)
}

// FromContextCallGraph creates a graph over the (method, context) nodes of
// a call graph, including the synthetic root.
func FromContextCallGraph(cg *callgraph.Graph) Graph[*callgraph.Node] {
	return Of(cg.Successors)
}
