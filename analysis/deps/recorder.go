// Package deps records which statement applications read which points-to
// nodes, and turns graph changes into rescheduled work.
//
// A unit of work is an Entry: a statement paired with a context of its
// method. Entries get small integer ids in the order they are first seen,
// and scheduled ids are kept in a sparse bit set so the engine always
// takes the lowest pending id.
package deps

import (
	"fmt"
	"sync"

	"github.com/cs-au-dk/ctxpta/analysis/heap"
	"github.com/cs-au-dk/ctxpta/analysis/program"
	"github.com/cs-au-dk/ctxpta/analysis/ptgraph"
	"github.com/cs-au-dk/ctxpta/analysis/statement"
	"golang.org/x/tools/container/intsets"
)

// Entry is the application of a statement in one context.
type Entry struct {
	Statement statement.Statement
	Context   heap.Context
}

func (e Entry) String() string {
	return fmt.Sprintf("%s: %s in %s", e.Statement.Method(), e.Statement, e.Context)
}

// EntryID identifies an Entry within one Recorder.
type EntryID int

// Finder resolves collapsed nodes to their representative.
type Finder interface {
	Find(n ptgraph.NodeID) ptgraph.NodeID
}

// Recorder tracks read dependencies between entries and points-to nodes.
// It implements ptgraph.Listener. All methods are safe for concurrent use.
type Recorder struct {
	mu sync.Mutex

	graph Finder
	reg   statement.Registrar

	ids     map[Entry]EntryID
	entries []Entry

	readers   map[ptgraph.NodeID]*intsets.Sparse
	pending   map[ptgraph.NodeID]ptgraph.NodeID
	scheduled intsets.Sparse
}

var _ ptgraph.Listener = (*Recorder)(nil)

// NewRecorder creates a recorder for the nodes of graph. Statements of
// newly reached method contexts are looked up in reg.
func NewRecorder(graph Finder, reg statement.Registrar) *Recorder {
	return &Recorder{
		graph:   graph,
		reg:     reg,
		ids:     make(map[Entry]EntryID),
		readers: make(map[ptgraph.NodeID]*intsets.Sparse),
		pending: make(map[ptgraph.NodeID]ptgraph.NodeID),
	}
}

// ID returns the id of the entry (s, ctx), assigning a fresh one on first use.
func (r *Recorder) ID(s statement.Statement, ctx heap.Context) EntryID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id(Entry{s, ctx})
}

func (r *Recorder) id(e Entry) EntryID {
	if id, ok := r.ids[e]; ok {
		return id
	}
	id := EntryID(len(r.entries))
	r.entries = append(r.entries, e)
	r.ids[e] = id
	return id
}

// Entry returns the entry with the given id.
func (r *Recorder) Entry(id EntryID) Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 0 || int(id) >= len(r.entries) {
		panic(fmt.Errorf("unknown entry %d (recorder has %d entries)", id, len(r.entries)))
	}
	return r.entries[id]
}

// Len is the number of entries seen so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// RecordRead registers that processing id read the points-to set of n.
func (r *Recorder) RecordRead(id EntryID, n ptgraph.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readersOf(r.graph.Find(n)).Insert(int(id))
}

func (r *Recorder) readersOf(n ptgraph.NodeID) *intsets.Sparse {
	s, ok := r.readers[n]
	if !ok {
		s = new(intsets.Sparse)
		r.readers[n] = s
	}
	return s
}

// Readers returns the entries that depend on n, in id order.
func (r *Recorder) Readers(n ptgraph.NodeID) []EntryID {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.readers[r.graph.Find(n)]
	if !ok {
		return nil
	}
	var res []EntryID
	for _, id := range s.AppendTo(nil) {
		res = append(res, EntryID(id))
	}
	return res
}

// NodeChanged schedules every reader of n.
func (r *Recorder) NodeChanged(n ptgraph.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.readers[r.graph.Find(n)]; ok {
		r.scheduled.UnionWith(s)
	}
}

// StartCollapseNode notes that n is being merged into rep. Reads of n
// recorded until the collapse finishes are kept on n and moved to rep by
// FinishCollapseNode.
func (r *Recorder) StartCollapseNode(n, rep ptgraph.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[n] = rep
}

// FinishCollapseNode moves the readers of n to rep and schedules all
// readers of the merged node, since both sides may now see new objects.
func (r *Recorder) FinishCollapseNode(n, rep ptgraph.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pendingRep, ok := r.pending[n]; !ok || pendingRep != rep {
		panic(fmt.Errorf("collapse of %d into %d finished without being started", n, rep))
	}
	delete(r.pending, n)

	merged := r.readersOf(rep)
	if s, ok := r.readers[n]; ok {
		merged.UnionWith(s)
		delete(r.readers, n)
	}
	r.scheduled.UnionWith(merged)
}

// Collapsing reports whether a collapse is in progress.
func (r *Recorder) Collapsing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending) > 0
}

// RecordNewContext schedules the statements of m in ctx.
func (r *Recorder) RecordNewContext(m *program.Method, ctx heap.Context) {
	stmts := r.reg.StatementsFor(m)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range stmts {
		r.scheduled.Insert(int(r.id(Entry{s, ctx})))
	}
}

// Schedule adds id to the scheduled entries.
func (r *Recorder) Schedule(id EntryID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled.Insert(int(id))
}

// TakeMin removes and returns the scheduled entry with the lowest id.
func (r *Recorder) TakeMin() (EntryID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id int
	if !r.scheduled.TakeMin(&id) {
		return -1, false
	}
	return EntryID(id), true
}

// TakeAll removes and returns every scheduled entry in id order.
func (r *Recorder) TakeAll() []EntryID {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.scheduled.AppendTo(nil)
	r.scheduled.Clear()

	res := make([]EntryID, len(ids))
	for i, id := range ids {
		res[i] = EntryID(id)
	}
	return res
}

// Scheduled is the number of scheduled entries.
func (r *Recorder) Scheduled() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scheduled.Len()
}
