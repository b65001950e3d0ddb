package engine

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cs-au-dk/ctxpta/analysis/callgraph"
	"github.com/cs-au-dk/ctxpta/analysis/heap"
	"github.com/cs-au-dk/ctxpta/analysis/program"
	"github.com/cs-au-dk/ctxpta/analysis/ptgraph"
	"github.com/cs-au-dk/ctxpta/utils/graph"
	"golang.org/x/exp/maps"
)

// Result is the outcome of a solver run.
type Result struct {
	Graph     *ptgraph.Graph
	CallGraph *callgraph.Graph
	State     State
	// Sweeps is the number of sweeps (naive driver), drained worklists
	// (worklist driver) or batches (parallel driver).
	Sweeps    int
	Processed int

	entry *program.Method
}

func (s *Solver) result() *Result {
	return &Result{
		Graph:     s.graph,
		CallGraph: s.graph.CallGraph(),
		State:     s.state,
		Sweeps:    s.sweeps,
		Processed: int(s.processed.Load()),
		entry:     s.reg.Entry(),
	}
}

// PointsTo returns the points-to set of the node named by key. Nodes that
// were never created point to nothing.
func (r *Result) PointsTo(key ptgraph.NodeKey) ptgraph.PointsToSet {
	n, ok := r.Graph.Lookup(key)
	if !ok {
		return ptgraph.PointsToSet{}
	}
	return r.Graph.PointsToSet(n)
}

// ReachableMethods returns the methods reachable from the entry point,
// ordered by name.
func (r *Result) ReachableMethods() []*program.Method {
	ms := graph.FromCallGraph(r.CallGraph).Reachable(r.entry)
	sort.Slice(ms, func(i, j int) bool {
		return ms[i].QualifiedName() < ms[j].QualifiedName()
	})
	return ms
}

// ContextsOf returns the contexts m was analysed in, ordered by their
// printed form. Discovery order depends on scheduling under the parallel
// driver; this order does not.
func (r *Result) ContextsOf(m *program.Method) []heap.Context {
	ctxs := r.CallGraph.ContextsOf(m)
	sort.SliceStable(ctxs, func(i, j int) bool {
		return ctxs[i].String() < ctxs[j].String()
	})
	return ctxs
}

// CalledFrom returns the call graph nodes transitively called from n,
// including n itself.
func (r *Result) CalledFrom(n *callgraph.Node) []*callgraph.Node {
	return graph.FromContextCallGraph(r.CallGraph).Reachable(n)
}

// Snapshot renders every non-empty points-to set, keyed by the printed
// node name. Collapsed nodes report the set of their representative.
// Snapshots of runs over the same program are comparable across solvers.
func (r *Result) Snapshot() map[string][]string {
	res := make(map[string][]string)
	for i := 0; i < r.Graph.Len(); i++ {
		n := ptgraph.NodeID(i)
		set := r.Graph.PointsToSet(n)
		if set.Empty() {
			continue
		}

		objs := make([]string, 0, set.Len())
		for _, o := range set.Entries() {
			objs = append(objs, o.String())
		}
		res[r.Graph.Key(n).String()] = objs
	}
	return res
}

// CallEdges renders the call graph edges in sorted order.
func (r *Result) CallEdges() []string {
	var res []string
	for _, n := range r.CallGraph.Nodes() {
		for _, e := range n.Out {
			res = append(res, e.String())
		}
	}
	sort.Strings(res)
	return res
}

// WriteTo prints the result in a stable textual form.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "state: %s\n", r.State)

	sb.WriteString("reachable:\n")
	for _, m := range r.ReachableMethods() {
		fmt.Fprintf(&sb, "  %s %v\n", m, r.ContextsOf(m))
	}

	sb.WriteString("calls:\n")
	for _, e := range r.CallEdges() {
		fmt.Fprintf(&sb, "  %s\n", e)
	}

	sb.WriteString("points-to:\n")
	snap := r.Snapshot()
	keys := maps.Keys(snap)
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %s -> {%s}\n", k, strings.Join(snap[k], ", "))
	}

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
