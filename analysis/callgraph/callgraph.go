// Package callgraph holds the context-sensitive call graph grown by the
// points-to engine. Nodes are (method, context) pairs; edges are labelled
// with the call site they originate from.
package callgraph

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cs-au-dk/ctxpta/analysis/heap"
	"github.com/cs-au-dk/ctxpta/analysis/program"
)

type nodeKey struct {
	method  *program.Method
	context heap.Context
}

type edgeKey struct {
	caller *Node
	site   *program.CallSite
	callee *Node
}

// Node is one context-specialized analysis of a method. The root node is
// synthetic and has no method.
type Node struct {
	ID      int
	Method  *program.Method
	Context heap.Context
	In      []*Edge
	Out     []*Edge
}

func (n *Node) String() string {
	if n.Method == nil {
		return "<root>"
	}
	return fmt.Sprintf("%s %s", n.Method, n.Context)
}

// Edge is a call from Caller to Callee at Site. Site is nil for edges from
// the root and for class initializer triggers.
type Edge struct {
	Caller *Node
	Site   *program.CallSite
	Callee *Node
}

func (e *Edge) String() string {
	site := "-"
	if e.Site != nil {
		site = e.Site.String()
	}
	return fmt.Sprintf("%s --%s--> %s", e.Caller, site, e.Callee)
}

// Graph is a call graph over (method, context) nodes. It is safe for
// concurrent use.
type Graph struct {
	mu       sync.RWMutex
	Root     *Node
	nodes    map[nodeKey]*Node
	order    []*Node
	edges    map[edgeKey]*Edge
	contexts map[*program.Method][]heap.Context
}

// New creates a call graph containing only the synthetic root.
func New() *Graph {
	root := &Node{ID: 0}
	return &Graph{
		Root:     root,
		nodes:    make(map[nodeKey]*Node),
		order:    []*Node{root},
		edges:    make(map[edgeKey]*Edge),
		contexts: make(map[*program.Method][]heap.Context),
	}
}

// CreateNode returns the node of m in ctx, creating it if it does not
// exist yet. The second result reports whether the node was created.
func (g *Graph) CreateNode(m *program.Method, ctx heap.Context) (*Node, bool) {
	key := nodeKey{m, ctx}

	g.mu.RLock()
	n, ok := g.nodes[key]
	g.mu.RUnlock()
	if ok {
		return n, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.nodes[key]; ok {
		return n, false
	}
	n = &Node{ID: len(g.order), Method: m, Context: ctx}
	g.nodes[key] = n
	g.order = append(g.order, n)
	g.contexts[m] = append(g.contexts[m], ctx)
	return n, true
}

// Lookup returns the node of m in ctx, if it exists.
func (g *Graph) Lookup(m *program.Method, ctx heap.Context) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[nodeKey{m, ctx}]
	return n, ok
}

// AddEdge adds a call edge and reports whether it is new.
func (g *Graph) AddEdge(caller *Node, site *program.CallSite, callee *Node) bool {
	key := edgeKey{caller, site, callee}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.edges[key]; ok {
		return false
	}
	e := &Edge{Caller: caller, Site: site, Callee: callee}
	g.edges[key] = e
	caller.Out = append(caller.Out, e)
	callee.In = append(callee.In, e)
	return true
}

// Nodes returns all nodes, root first, in creation order.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*Node(nil), g.order...)
}

// Len is the number of nodes, excluding the root.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order) - 1
}

// NumEdges is the number of call edges.
func (g *Graph) NumEdges() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// ContextsOf returns the contexts m has been reached in, in the order
// they were discovered.
func (g *Graph) ContextsOf(m *program.Method) []heap.Context {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]heap.Context(nil), g.contexts[m]...)
}

// Successors returns the callees of n.
func (g *Graph) Successors(n *Node) []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[*Node]bool, len(n.Out))
	var succs []*Node
	for _, e := range n.Out {
		if !seen[e.Callee] {
			seen[e.Callee] = true
			succs = append(succs, e.Callee)
		}
	}
	return succs
}

// Callees returns every method called from m in any context.
func (g *Graph) Callees(m *program.Method) []*program.Method {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[*program.Method]bool)
	var res []*program.Method
	for _, ctx := range g.contexts[m] {
		for _, e := range g.nodes[nodeKey{m, ctx}].Out {
			if callee := e.Callee.Method; !seen[callee] {
				seen[callee] = true
				res = append(res, callee)
			}
		}
	}
	return res
}

func (g *Graph) String() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var sb strings.Builder
	for _, n := range g.order {
		sb.WriteString(n.String())
		sb.WriteString("\n")
		for _, e := range n.Out {
			sb.WriteString("  -> ")
			sb.WriteString(e.Callee.String())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
