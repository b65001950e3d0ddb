package callgraph

import (
	yb "github.com/yourbasic/graph"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Directed exports the call graph as a gonum directed graph. Node IDs are
// the Node.ID values. Self calls are dropped since simple graphs have no
// self loops.
func (g *Graph) Directed() *simple.DirectedGraph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	dg := simple.NewDirectedGraph()
	for _, n := range g.order {
		dg.AddNode(simple.Node(int64(n.ID)))
	}
	for _, n := range g.order {
		for _, e := range n.Out {
			if e.Callee == n {
				continue
			}
			from, to := dg.Node(int64(n.ID)), dg.Node(int64(e.Callee.ID))
			if !dg.HasEdgeFromTo(from.ID(), to.ID()) {
				dg.SetEdge(dg.NewEdge(from, to))
			}
		}
	}
	return dg
}

// Reachable reports whether to is transitively called from from.
func (g *Graph) Reachable(from, to *Node) bool {
	if from == to {
		return true
	}
	dg := g.Directed()
	var f, t graph.Node = dg.Node(int64(from.ID)), dg.Node(int64(to.ID))
	if f == nil || t == nil {
		return false
	}
	return topo.PathExistsIn(dg, f, t)
}

// RecursiveComponents returns the strongly connected components of the call
// graph that contain a cycle: components of more than one node, and single
// nodes calling themselves.
func (g *Graph) RecursiveComponents() [][]*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	yg := yb.New(len(g.order))
	for _, n := range g.order {
		for _, e := range n.Out {
			yg.Add(n.ID, e.Callee.ID)
		}
	}

	var res [][]*Node
	for _, comp := range yb.StrongComponents(yg) {
		if len(comp) == 1 && !yg.Edge(comp[0], comp[0]) {
			continue
		}
		nodes := make([]*Node, 0, len(comp))
		for _, id := range comp {
			nodes = append(nodes, g.order[id])
		}
		res = append(res, nodes)
	}
	return res
}
