// Package statement defines the constraints the points-to engine solves.
//
// A statement is an immutable constraint attached to the method it occurs
// in. Processing a statement in a context reads points-to sets, adds edges
// and grows the call graph. Processing is idempotent: once the graph
// satisfies the constraint, processing it again changes nothing.
package statement

import (
	"github.com/cs-au-dk/ctxpta/analysis/config"
	"github.com/cs-au-dk/ctxpta/analysis/heap"
	"github.com/cs-au-dk/ctxpta/analysis/program"
	"github.com/cs-au-dk/ctxpta/analysis/ptgraph"
	"github.com/cs-au-dk/ctxpta/utils"
	"github.com/fatih/color"
	"github.com/pkg/errors"
)

var colorize = struct {
	Op func(...interface{}) string
}{
	Op: utils.Painter(color.FgHiRed),
}

// Statement is a constraint of a method body.
type Statement interface {
	// Method is the method the statement belongs to.
	Method() *program.Method
	// Process applies the constraint in ctx and reports whether the graph
	// changed. Malformed statements return an error.
	Process(ctx heap.Context, policy heap.Policy, g Graph, reg Registrar) (bool, error)
	String() string
}

// Graph is the view of the points-to graph a statement operates on.
// *ptgraph.Graph implements it; the engine wraps it to observe reads.
type Graph interface {
	Node(key ptgraph.NodeKey) ptgraph.NodeID
	PointsToSet(n ptgraph.NodeID) ptgraph.PointsToSet
	AddEdge(n ptgraph.NodeID, o *heap.InstanceKey) bool
	AddEdges(n ptgraph.NodeID, s ptgraph.PointsToSet) bool
	AddCall(
		callerM *program.Method, callerCtx heap.Context,
		site *program.CallSite,
		calleeM *program.Method, calleeCtx heap.Context,
	) bool
}

// Registrar provides the statements of the analysed program, its entry
// point and call resolution.
type Registrar interface {
	program.Resolver
	AllStatements() []Statement
	StatementsFor(m *program.Method) []Statement
	Entry() *program.Method
	Logger() *config.LogGroup
}

// CopyEdge is an unconditional flow from the points-to set of Src into
// the points-to set of Dst.
type CopyEdge struct {
	Src, Dst ptgraph.NodeID
}

// Copier is implemented by statements that only copy points-to sets
// between nodes, without filtering. Nodes on a cycle of copy edges always
// end up with equal points-to sets, so they may be collapsed.
type Copier interface {
	Statement
	CopyEdges(ctx heap.Context, g Graph) []CopyEdge
}

// local is the node of l in ctx.
func local(g Graph, l *program.Local, ctx heap.Context) ptgraph.NodeID {
	return g.Node(ptgraph.Local(l, ctx))
}

// pts reads the points-to set of l in ctx.
func pts(g Graph, l *program.Local, ctx heap.Context) ptgraph.PointsToSet {
	return g.PointsToSet(local(g, l, ctx))
}

// owned checks that every operand is a local of m.
func owned(s Statement, m *program.Method, ls ...*program.Local) error {
	for i, l := range ls {
		if l == nil {
			return errors.Errorf("%s: operand %d is missing", s, i)
		}
		if l.Method != m {
			return errors.Errorf("%s: operand %s is not a local of %s", s, l, m)
		}
	}
	return nil
}
