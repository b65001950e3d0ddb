package graph

// SCCDecomposition is the split of a graph into strongly connected
// components. Components are in reverse topological order: edges from
// component i only lead to components j <= i.
type SCCDecomposition[T comparable] struct {
	Components [][]T
	index      map[T]int
	graph      Graph[T]
}

// ComponentOf returns the index of the component of n, or -1 if n was not
// reached from the start nodes.
func (d SCCDecomposition[T]) ComponentOf(n T) int {
	if i, ok := d.index[n]; ok {
		return i
	}
	return -1
}

// Cyclic returns the components that contain a cycle: those with more than
// one node, and single nodes with an edge to themselves.
func (d SCCDecomposition[T]) Cyclic() [][]T {
	var res [][]T
	for i, comp := range d.Components {
		if len(comp) > 1 || d.selfLoop(comp[0], i) {
			res = append(res, comp)
		}
	}
	return res
}

func (d SCCDecomposition[T]) selfLoop(n T, comp int) bool {
	for _, e := range d.graph.Edges(n) {
		if d.index[e] == comp {
			return true
		}
	}
	return false
}

// tarjan is the state of one run of Tarjan's algorithm.
type tarjan[T comparable] struct {
	graph   Graph[T]
	order   map[T]int
	low     map[T]int
	onStack map[T]bool
	stack   []T
	res     SCCDecomposition[T]
}

// SCC computes the strongly connected components of the subgraph reachable
// from starts.
func (G Graph[T]) SCC(starts []T) SCCDecomposition[T] {
	t := &tarjan[T]{
		graph:   G,
		order:   make(map[T]int),
		low:     make(map[T]int),
		onStack: make(map[T]bool),
		res:     SCCDecomposition[T]{index: make(map[T]int), graph: G},
	}
	for _, n := range starts {
		if _, seen := t.order[n]; !seen {
			t.visit(n)
		}
	}
	return t.res
}

func (t *tarjan[T]) visit(n T) {
	t.order[n] = len(t.order)
	t.low[n] = t.order[n]
	t.stack = append(t.stack, n)
	t.onStack[n] = true

	for _, m := range t.graph.Edges(n) {
		if _, seen := t.order[m]; !seen {
			t.visit(m)
			t.low[n] = min(t.low[n], t.low[m])
		} else if t.onStack[m] {
			t.low[n] = min(t.low[n], t.order[m])
		}
	}

	if t.low[n] != t.order[n] {
		return
	}

	id := len(t.res.Components)
	var comp []T
	for {
		top := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[top] = false
		t.res.index[top] = id
		comp = append(comp, top)
		if top == n {
			break
		}
	}
	t.res.Components = append(t.res.Components, comp)
}
