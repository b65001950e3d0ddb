package statement

import (
	"fmt"
	"strings"

	"github.com/cs-au-dk/ctxpta/analysis/heap"
	"github.com/cs-au-dk/ctxpta/analysis/program"
	"github.com/cs-au-dk/ctxpta/analysis/ptgraph"
	"github.com/pkg/errors"
)

func name(l *program.Local) string {
	if l == nil {
		return "<nil>"
	}
	return l.Name
}

// LocalAssign is the copy Dst = Src.
type LocalAssign struct {
	Dst, Src *program.Local
}

func (s *LocalAssign) Method() *program.Method { return s.Dst.Method }

func (s *LocalAssign) Process(ctx heap.Context, _ heap.Policy, g Graph, _ Registrar) (bool, error) {
	if err := owned(s, s.Method(), s.Src); err != nil {
		return false, err
	}
	return g.AddEdges(local(g, s.Dst, ctx), pts(g, s.Src, ctx)), nil
}

func (s *LocalAssign) CopyEdges(ctx heap.Context, g Graph) []CopyEdge {
	return []CopyEdge{{Src: local(g, s.Src, ctx), Dst: local(g, s.Dst, ctx)}}
}

func (s *LocalAssign) String() string {
	return fmt.Sprintf("%s = %s", name(s.Dst), name(s.Src))
}

// Phi merges the values of Srcs into Dst.
type Phi struct {
	Dst  *program.Local
	Srcs []*program.Local
}

func (s *Phi) Method() *program.Method { return s.Dst.Method }

func (s *Phi) Process(ctx heap.Context, _ heap.Policy, g Graph, _ Registrar) (bool, error) {
	if len(s.Srcs) == 0 {
		return false, errors.Errorf("%s: phi without operands", s)
	}
	if err := owned(s, s.Method(), s.Srcs...); err != nil {
		return false, err
	}

	dst := local(g, s.Dst, ctx)
	changed := false
	for _, src := range s.Srcs {
		changed = g.AddEdges(dst, pts(g, src, ctx)) || changed
	}
	return changed, nil
}

func (s *Phi) CopyEdges(ctx heap.Context, g Graph) []CopyEdge {
	dst := local(g, s.Dst, ctx)
	edges := make([]CopyEdge, 0, len(s.Srcs))
	for _, src := range s.Srcs {
		edges = append(edges, CopyEdge{Src: local(g, src, ctx), Dst: dst})
	}
	return edges
}

func (s *Phi) String() string {
	strs := make([]string, 0, len(s.Srcs))
	for _, src := range s.Srcs {
		strs = append(strs, name(src))
	}
	return fmt.Sprintf("%s = %s(%s)", name(s.Dst), colorize.Op("phi"), strings.Join(strs, ", "))
}

// Cast is the checked copy Dst = (Type) Src. Objects that are not
// instances of Type do not flow. A nil Type makes the cast unchecked.
type Cast struct {
	Dst, Src *program.Local
	Type     *program.Type
}

func (s *Cast) Method() *program.Method { return s.Dst.Method }

func (s *Cast) Process(ctx heap.Context, _ heap.Policy, g Graph, _ Registrar) (bool, error) {
	if err := owned(s, s.Method(), s.Src); err != nil {
		return false, err
	}
	return g.AddEdges(local(g, s.Dst, ctx), instancesOf(pts(g, s.Src, ctx), s.Type)), nil
}

// CopyEdges only reports the flow of unchecked casts.
func (s *Cast) CopyEdges(ctx heap.Context, g Graph) []CopyEdge {
	if s.Type != nil {
		return nil
	}
	return []CopyEdge{{Src: local(g, s.Src, ctx), Dst: local(g, s.Dst, ctx)}}
}

func (s *Cast) String() string {
	return fmt.Sprintf("%s = (%s) %s", name(s.Dst), s.Type, name(s.Src))
}

func instancesOf(set ptgraph.PointsToSet, typ *program.Type) ptgraph.PointsToSet {
	if typ == nil {
		return set
	}
	return set.Filter(func(o *heap.InstanceKey) bool {
		return o.Type().SubtypeOf(typ)
	})
}

// Return makes Src flow into the return value of its method.
type Return struct {
	Src *program.Local
}

func (s *Return) Method() *program.Method { return s.Src.Method }

func (s *Return) Process(ctx heap.Context, _ heap.Policy, g Graph, _ Registrar) (bool, error) {
	return g.AddEdges(g.Node(ptgraph.Return(s.Method(), ctx)), pts(g, s.Src, ctx)), nil
}

func (s *Return) CopyEdges(ctx heap.Context, g Graph) []CopyEdge {
	return []CopyEdge{{Src: local(g, s.Src, ctx), Dst: g.Node(ptgraph.Return(s.Method(), ctx))}}
}

func (s *Return) String() string {
	return colorize.Op("return ") + name(s.Src)
}

// Throw makes Src flow into the exceptions raised by its method.
type Throw struct {
	Src *program.Local
}

func (s *Throw) Method() *program.Method { return s.Src.Method }

func (s *Throw) Process(ctx heap.Context, _ heap.Policy, g Graph, _ Registrar) (bool, error) {
	return g.AddEdges(g.Node(ptgraph.Exception(s.Method(), ctx)), pts(g, s.Src, ctx)), nil
}

func (s *Throw) CopyEdges(ctx heap.Context, g Graph) []CopyEdge {
	return []CopyEdge{{Src: local(g, s.Src, ctx), Dst: g.Node(ptgraph.Exception(s.Method(), ctx))}}
}

func (s *Throw) String() string {
	return colorize.Op("throw ") + name(s.Src)
}

// Catch binds Dst to the exceptions raised in its method that are
// instances of Type. A nil Type catches everything.
//
// Caught exceptions are not removed from the exceptions the method
// propagates to its callers.
type Catch struct {
	Dst  *program.Local
	Type *program.Type
}

func (s *Catch) Method() *program.Method { return s.Dst.Method }

func (s *Catch) Process(ctx heap.Context, _ heap.Policy, g Graph, _ Registrar) (bool, error) {
	thrown := g.PointsToSet(g.Node(ptgraph.Exception(s.Method(), ctx)))
	return g.AddEdges(local(g, s.Dst, ctx), instancesOf(thrown, s.Type)), nil
}

func (s *Catch) CopyEdges(ctx heap.Context, g Graph) []CopyEdge {
	if s.Type != nil {
		return nil
	}
	return []CopyEdge{{Src: g.Node(ptgraph.Exception(s.Method(), ctx)), Dst: local(g, s.Dst, ctx)}}
}

func (s *Catch) String() string {
	typ := "*"
	if s.Type != nil {
		typ = s.Type.String()
	}
	return fmt.Sprintf("%s %s %s", colorize.Op("catch"), typ, name(s.Dst))
}
