// Package ptgraph implements the points-to graph: an arena of pointer
// nodes, each holding the set of abstract objects it may point to, plus
// the context-sensitive call graph the analysis discovers along the way.
//
// Nodes may be collapsed into a representative. Collapsed nodes keep their
// identifier, and every identifier ever handed out resolves to its current
// representative through Find.
package ptgraph

import (
	"fmt"
	"sync"

	"github.com/cs-au-dk/ctxpta/analysis/callgraph"
	"github.com/cs-au-dk/ctxpta/analysis/heap"
	"github.com/cs-au-dk/ctxpta/analysis/program"
	"github.com/spakin/disjoint"
	"golang.org/x/exp/slices"
)

// NodeID is the arena index of a pointer node.
type NodeID int

// Listener observes graph mutations. Callbacks are invoked without any
// graph lock held, except that StartCollapseNode and FinishCollapseNode
// bracket the collapse itself.
type Listener interface {
	// NodeChanged is called when the points-to set of n grew.
	NodeChanged(n NodeID)
	// StartCollapseNode is called before n is merged into rep.
	StartCollapseNode(n, rep NodeID)
	// FinishCollapseNode is called after n was merged into rep.
	FinishCollapseNode(n, rep NodeID)
	// RecordNewContext is called when m is reached in ctx for the first time.
	RecordNewContext(m *program.Method, ctx heap.Context)
}

type nopListener struct{}

func (nopListener) NodeChanged(NodeID)                             {}
func (nopListener) StartCollapseNode(NodeID, NodeID)               {}
func (nopListener) FinishCollapseNode(NodeID, NodeID)              {}
func (nopListener) RecordNewContext(*program.Method, heap.Context) {}

type node struct {
	mu  sync.Mutex
	key NodeKey
	pts PointsToSet
}

// Graph is a points-to graph. It is safe for concurrent use: edge
// insertion locks only the target node, while node creation and collapse
// take the arena lock exclusively.
type Graph struct {
	mu    sync.RWMutex
	index map[NodeKey]NodeID
	nodes []*node

	// Union-find over node ids. canon maps the root element of every
	// class to the node chosen as its representative.
	ufMu  sync.Mutex
	elems []*disjoint.Element
	canon map[*disjoint.Element]NodeID

	collapseMu sync.Mutex

	hctxMu       sync.Mutex
	heapContexts map[heap.Context]struct{}

	cg       *callgraph.Graph
	listener Listener
}

// NewGraph creates an empty points-to graph.
func NewGraph() *Graph {
	return &Graph{
		index:        make(map[NodeKey]NodeID),
		canon:        make(map[*disjoint.Element]NodeID),
		heapContexts: make(map[heap.Context]struct{}),
		cg:           callgraph.New(),
		listener:     nopListener{},
	}
}

// SetListener registers the observer of graph mutations. It must be set
// before the graph is shared between goroutines.
func (g *Graph) SetListener(l Listener) {
	if l == nil {
		l = nopListener{}
	}
	g.listener = l
}

// Node returns the id of the node named by key, creating it if necessary.
func (g *Graph) Node(key NodeKey) NodeID {
	if id, ok := g.Lookup(key); ok {
		return id
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if id, ok := g.index[key]; ok {
		return id
	}

	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &node{key: key})
	g.index[key] = id

	el := disjoint.NewElement()
	el.Data = id
	g.ufMu.Lock()
	g.elems = append(g.elems, el)
	g.canon[el] = id
	g.ufMu.Unlock()
	return id
}

// Lookup returns the id of the node named by key, if it exists.
func (g *Graph) Lookup(key NodeKey) (NodeID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.index[key]
	return id, ok
}

// Key returns the name of node n.
func (g *Graph) Key(n NodeID) NodeKey {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.get(n).key
}

// Len is the number of nodes ever created, collapsed ones included.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

func (g *Graph) get(n NodeID) *node {
	if n < 0 || int(n) >= len(g.nodes) {
		panic(fmt.Errorf("unknown points-to node %d (graph has %d nodes)", n, len(g.nodes)))
	}
	return g.nodes[n]
}

// Find resolves n to the representative of its collapse class. A node
// that was never collapsed is its own representative.
func (g *Graph) Find(n NodeID) NodeID {
	g.ufMu.Lock()
	defer g.ufMu.Unlock()
	if n < 0 || int(n) >= len(g.elems) {
		panic(fmt.Errorf("unknown points-to node %d (graph has %d nodes)", n, len(g.elems)))
	}
	return g.canon[g.elems[n].Find()]
}

// PointsToSet returns a snapshot of the objects n may point to.
func (g *Graph) PointsToSet(n NodeID) PointsToSet {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nd := g.get(g.Find(n))
	nd.mu.Lock()
	defer nd.mu.Unlock()
	return nd.pts
}

// AddEdge adds o to the points-to set of n and reports whether the set grew.
func (g *Graph) AddEdge(n NodeID, o *heap.InstanceKey) bool {
	g.mu.RLock()
	rep := g.Find(n)
	nd := g.get(rep)
	nd.mu.Lock()
	var added bool
	nd.pts, added = nd.pts.Add(o)
	nd.mu.Unlock()
	g.mu.RUnlock()

	if added {
		g.recordHeapContext(o)
		g.listener.NodeChanged(rep)
	}
	return added
}

// AddEdges adds every object of s to the points-to set of n and reports
// whether the set grew.
func (g *Graph) AddEdges(n NodeID, s PointsToSet) bool {
	if s.Empty() {
		return false
	}

	g.mu.RLock()
	rep := g.Find(n)
	nd := g.get(rep)
	nd.mu.Lock()
	var changed bool
	nd.pts, changed = nd.pts.Union(s)
	nd.mu.Unlock()
	g.mu.RUnlock()

	if changed {
		s.ForEach(g.recordHeapContext)
		g.listener.NodeChanged(rep)
	}
	return changed
}

func (g *Graph) recordHeapContext(o *heap.InstanceKey) {
	g.hctxMu.Lock()
	defer g.hctxMu.Unlock()
	g.heapContexts[o.Context()] = struct{}{}
}

// Collapse merges n into rep. Afterwards both resolve to the
// representative of rep, which holds the union of both points-to sets.
// Readers never observe a partially merged state.
func (g *Graph) Collapse(n, rep NodeID) {
	g.collapseMu.Lock()
	defer g.collapseMu.Unlock()

	rn, rr := g.Find(n), g.Find(rep)
	if rn == rr {
		return
	}

	g.listener.StartCollapseNode(rn, rr)

	g.mu.Lock()
	g.ufMu.Lock()
	disjoint.Union(g.elems[rn], g.elems[rr])
	g.canon[g.elems[rr].Find()] = rr
	g.ufMu.Unlock()

	src, dst := g.get(rn), g.get(rr)
	var changed bool
	dst.pts, changed = dst.pts.Union(src.pts)
	src.pts = PointsToSet{}
	g.mu.Unlock()

	g.listener.FinishCollapseNode(rn, rr)
	if changed {
		g.listener.NodeChanged(rr)
	}
}

// Nodes returns the current representatives in id order.
func (g *Graph) Nodes() []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	res := make([]NodeID, 0, len(g.nodes))
	for i := range g.nodes {
		if id := NodeID(i); g.Find(id) == id {
			res = append(res, id)
		}
	}
	return res
}

// AllHeapContexts returns every heap context of an object that occurs in
// some points-to set, ordered by their printed form.
func (g *Graph) AllHeapContexts() []heap.Context {
	g.hctxMu.Lock()
	res := make([]heap.Context, 0, len(g.heapContexts))
	for c := range g.heapContexts {
		res = append(res, c)
	}
	g.hctxMu.Unlock()

	slices.SortFunc(res, func(a, b heap.Context) bool {
		return a.String() < b.String()
	})
	return res
}

// CallGraph is the call graph discovered so far.
func (g *Graph) CallGraph() *callgraph.Graph {
	return g.cg
}

// ContextsOf returns the contexts m is analysed in, in discovery order.
func (g *Graph) ContextsOf(m *program.Method) []heap.Context {
	return g.cg.ContextsOf(m)
}

// AddEntry registers m in ctx as an entry point of the analysis.
func (g *Graph) AddEntry(m *program.Method, ctx heap.Context) bool {
	n, created := g.cg.CreateNode(m, ctx)
	g.cg.AddEdge(g.cg.Root, nil, n)
	if created {
		g.listener.RecordNewContext(m, ctx)
	}
	return created
}

// AddCall records that callerM in callerCtx calls calleeM in calleeCtx at
// site. It reports whether the graph changed, and notifies the listener if
// the callee was not analysed in calleeCtx before.
func (g *Graph) AddCall(
	callerM *program.Method, callerCtx heap.Context,
	site *program.CallSite,
	calleeM *program.Method, calleeCtx heap.Context,
) bool {
	caller, _ := g.cg.CreateNode(callerM, callerCtx)
	callee, created := g.cg.CreateNode(calleeM, calleeCtx)
	added := g.cg.AddEdge(caller, site, callee)
	if created {
		g.listener.RecordNewContext(calleeM, calleeCtx)
	}
	return added || created
}
