package graph

import "github.com/cs-au-dk/ctxpta/utils/worklist"

// Walk visits the nodes reachable from starts in breadth-first order,
// each node once. It stops as soon as visit returns true and reports
// whether it stopped early.
func (G Graph[T]) Walk(visit func(T) (stop bool), starts ...T) bool {
	seen := make(map[T]struct{}, len(starts))
	w := worklist.Empty[T]()
	enqueue := func(n T) {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			w.Add(n)
		}
	}
	for _, n := range starts {
		enqueue(n)
	}

	for !w.IsEmpty() {
		n := w.GetNext()
		if visit(n) {
			return true
		}
		for _, m := range G.Edges(n) {
			enqueue(m)
		}
	}
	return false
}

// Reachable returns the nodes reachable from starts, starts included, in
// breadth-first order.
func (G Graph[T]) Reachable(starts ...T) []T {
	var res []T
	G.Walk(func(n T) bool {
		res = append(res, n)
		return false
	}, starts...)
	return res
}
