// Package graph runs graph algorithms over directed graphs that are only
// known through a successor function: the copy edges between points-to
// nodes and the call graph at method or (method, context) granularity.
package graph

// Graph is a directed graph over comparable nodes. Successors are computed
// on first use and cached, so the successor function runs at most once per
// node.
type Graph[T comparable] struct {
	succ  func(T) []T
	cache map[T][]T
}

// Of creates a graph from a successor function.
func Of[T comparable](succ func(T) []T) Graph[T] {
	return Graph[T]{succ: succ, cache: make(map[T][]T)}
}

// OfEdges creates a graph from an adjacency map. Nodes missing from adj
// have no successors.
func OfEdges[T comparable](adj map[T][]T) Graph[T] {
	return Of(func(n T) []T { return adj[n] })
}

// Edges returns the successors of n.
func (G Graph[T]) Edges(n T) []T {
	es, ok := G.cache[n]
	if !ok {
		es = G.succ(n)
		G.cache[n] = es
	}
	return es
}
