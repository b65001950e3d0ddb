package statement

import (
	"fmt"

	"github.com/cs-au-dk/ctxpta/analysis/heap"
	"github.com/cs-au-dk/ctxpta/analysis/program"
	"github.com/cs-au-dk/ctxpta/analysis/ptgraph"
	"github.com/pkg/errors"
)

// New is the allocation Dst = new T at Site.
type New struct {
	Dst  *program.Local
	Site *program.AllocSite
}

func (s *New) Method() *program.Method { return s.Dst.Method }

func (s *New) Process(ctx heap.Context, policy heap.Policy, g Graph, _ Registrar) (bool, error) {
	if s.Site == nil {
		return false, errors.Errorf("%s: missing allocation site", s)
	}
	if s.Site.Method != s.Method() {
		return false, errors.Errorf("%s: allocation site belongs to %s", s, s.Site.Method)
	}
	return g.AddEdge(local(g, s.Dst, ctx), policy.Record(s.Site, ctx)), nil
}

func (s *New) String() string {
	return fmt.Sprintf("%s = %v", name(s.Dst), s.Site)
}

// objects calls f on every object base points to in ctx, and reports
// whether any call changed the graph.
func objects(g Graph, base *program.Local, ctx heap.Context, f func(*heap.InstanceKey) bool) bool {
	changed := false
	pts(g, base, ctx).ForEach(func(o *heap.InstanceKey) {
		changed = f(o) || changed
	})
	return changed
}

func instanceField(s Statement, f *program.Field) error {
	if f == nil {
		return errors.Errorf("%s: missing field", s)
	}
	if f.Static {
		return errors.Errorf("%s: %s is a static field", s, f)
	}
	return nil
}

func staticField(s Statement, f *program.Field) error {
	if f == nil {
		return errors.Errorf("%s: missing field", s)
	}
	if !f.Static {
		return errors.Errorf("%s: %s is not a static field", s, f)
	}
	return nil
}

// FieldStore is the store Base.Field = Src.
type FieldStore struct {
	Base  *program.Local
	Field *program.Field
	Src   *program.Local
}

func (s *FieldStore) Method() *program.Method { return s.Base.Method }

func (s *FieldStore) Process(ctx heap.Context, _ heap.Policy, g Graph, _ Registrar) (bool, error) {
	if err := instanceField(s, s.Field); err != nil {
		return false, err
	}
	if err := owned(s, s.Method(), s.Src); err != nil {
		return false, err
	}

	src := pts(g, s.Src, ctx)
	return objects(g, s.Base, ctx, func(o *heap.InstanceKey) bool {
		return g.AddEdges(g.Node(ptgraph.Field(o, s.Field)), src)
	}), nil
}

func (s *FieldStore) String() string {
	return fmt.Sprintf("%s.%s = %s", name(s.Base), s.Field.Name, name(s.Src))
}

// FieldLoad is the load Dst = Base.Field.
type FieldLoad struct {
	Dst   *program.Local
	Base  *program.Local
	Field *program.Field
}

func (s *FieldLoad) Method() *program.Method { return s.Dst.Method }

func (s *FieldLoad) Process(ctx heap.Context, _ heap.Policy, g Graph, _ Registrar) (bool, error) {
	if err := instanceField(s, s.Field); err != nil {
		return false, err
	}
	if err := owned(s, s.Method(), s.Base); err != nil {
		return false, err
	}

	dst := local(g, s.Dst, ctx)
	return objects(g, s.Base, ctx, func(o *heap.InstanceKey) bool {
		return g.AddEdges(dst, g.PointsToSet(g.Node(ptgraph.Field(o, s.Field))))
	}), nil
}

func (s *FieldLoad) String() string {
	return fmt.Sprintf("%s = %s.%s", name(s.Dst), name(s.Base), s.Field.Name)
}

// StaticFieldStore is the store Field = Src of a static field.
type StaticFieldStore struct {
	Field *program.Field
	Src   *program.Local
}

func (s *StaticFieldStore) Method() *program.Method { return s.Src.Method }

func (s *StaticFieldStore) Process(ctx heap.Context, _ heap.Policy, g Graph, _ Registrar) (bool, error) {
	if err := staticField(s, s.Field); err != nil {
		return false, err
	}
	return g.AddEdges(g.Node(ptgraph.StaticField(s.Field)), pts(g, s.Src, ctx)), nil
}

func (s *StaticFieldStore) CopyEdges(ctx heap.Context, g Graph) []CopyEdge {
	return []CopyEdge{{Src: local(g, s.Src, ctx), Dst: g.Node(ptgraph.StaticField(s.Field))}}
}

func (s *StaticFieldStore) String() string {
	return fmt.Sprintf("%v = %s", s.Field, name(s.Src))
}

// StaticFieldLoad is the load Dst = Field of a static field.
type StaticFieldLoad struct {
	Dst   *program.Local
	Field *program.Field
}

func (s *StaticFieldLoad) Method() *program.Method { return s.Dst.Method }

func (s *StaticFieldLoad) Process(ctx heap.Context, _ heap.Policy, g Graph, _ Registrar) (bool, error) {
	if err := staticField(s, s.Field); err != nil {
		return false, err
	}
	return g.AddEdges(local(g, s.Dst, ctx), g.PointsToSet(g.Node(ptgraph.StaticField(s.Field)))), nil
}

func (s *StaticFieldLoad) CopyEdges(ctx heap.Context, g Graph) []CopyEdge {
	return []CopyEdge{{Src: g.Node(ptgraph.StaticField(s.Field)), Dst: local(g, s.Dst, ctx)}}
}

func (s *StaticFieldLoad) String() string {
	return fmt.Sprintf("%s = %v", name(s.Dst), s.Field)
}

// ArrayStore is the store Base[*] = Src. Only array objects have contents.
type ArrayStore struct {
	Base, Src *program.Local
}

func (s *ArrayStore) Method() *program.Method { return s.Base.Method }

func (s *ArrayStore) Process(ctx heap.Context, _ heap.Policy, g Graph, _ Registrar) (bool, error) {
	if err := owned(s, s.Method(), s.Src); err != nil {
		return false, err
	}

	src := pts(g, s.Src, ctx)
	return objects(g, s.Base, ctx, func(o *heap.InstanceKey) bool {
		return o.Site().IsArray() && g.AddEdges(g.Node(ptgraph.ArrayContents(o)), src)
	}), nil
}

func (s *ArrayStore) String() string {
	return fmt.Sprintf("%s[*] = %s", name(s.Base), name(s.Src))
}

// ArrayLoad is the load Dst = Base[*].
type ArrayLoad struct {
	Dst, Base *program.Local
}

func (s *ArrayLoad) Method() *program.Method { return s.Dst.Method }

func (s *ArrayLoad) Process(ctx heap.Context, _ heap.Policy, g Graph, _ Registrar) (bool, error) {
	if err := owned(s, s.Method(), s.Base); err != nil {
		return false, err
	}

	dst := local(g, s.Dst, ctx)
	return objects(g, s.Base, ctx, func(o *heap.InstanceKey) bool {
		return o.Site().IsArray() && g.AddEdges(dst, g.PointsToSet(g.Node(ptgraph.ArrayContents(o))))
	}), nil
}

func (s *ArrayLoad) String() string {
	return fmt.Sprintf("%s = %s[*]", name(s.Dst), name(s.Base))
}
