// Package worklist implements a FIFO worklist for fixed-point style
// iterations where processing an element may produce new elements.
package worklist

// Worklist is a FIFO queue of pending elements. It is not safe for
// concurrent use.
type Worklist[T any] struct {
	list []T
	head int
}

// Start worklist execution with provided `starting` element and an iteration
// function. The iteration function exposes the next element and a function with
// which to add more elements to the worklist.
func Start[T any](start T, do func(next T, add func(el T))) {
	StartV([]T{start}, do)
}

// StartV starts worklist execution with a preloaded queue. See Start.
func StartV[T any](start []T, do func(next T, add func(el T))) {
	W := Empty[T]()
	for _, e := range start {
		W.Add(e)
	}

	W.Process(do)
}

func Empty[T any]() *Worklist[T] {
	return &Worklist[T]{}
}

// GetNext dequeues the oldest element. It returns the zero value if the
// worklist is empty.
func (w *Worklist[T]) GetNext() (ret T) {
	if w.IsEmpty() {
		return
	}
	next := w.list[w.head]
	var zero T
	w.list[w.head] = zero
	w.head++

	// Reclaim the consumed prefix once it dominates the buffer.
	if w.head > 32 && w.head*2 > len(w.list) {
		w.list = append(w.list[:0], w.list[w.head:]...)
		w.head = 0
	}
	return next
}

func (w *Worklist[T]) IsEmpty() bool {
	return w.head == len(w.list)
}

// Len is the number of pending elements.
func (w *Worklist[T]) Len() int {
	return len(w.list) - w.head
}

// Process runs do on elements until the worklist is empty.
func (w *Worklist[T]) Process(
	do func(
		next T,
		add func(element T))) {
	for !w.IsEmpty() {
		do(w.GetNext(), w.Add)
	}
}

func (w *Worklist[T]) Add(el T) {
	w.list = append(w.list, el)
}
