package statement

import (
	"bytes"
	"sort"
	"strings"
	"testing"

	"github.com/cs-au-dk/ctxpta/analysis/config"
	"github.com/cs-au-dk/ctxpta/analysis/heap"
	"github.com/cs-au-dk/ctxpta/analysis/program"
	"github.com/cs-au-dk/ctxpta/analysis/ptgraph"
	"github.com/cs-au-dk/ctxpta/utils"
	"github.com/stretchr/testify/require"
)

// solve applies every statement in every context of its method until
// nothing changes.
func solve(t *testing.T, reg *Registry, p heap.Policy) *ptgraph.Graph {
	t.Helper()

	g := ptgraph.NewGraph()
	g.AddEntry(reg.Entry(), p.InitialContext())
	for changed := true; changed; {
		changed = false
		for _, s := range reg.AllStatements() {
			for _, ctx := range g.ContextsOf(s.Method()) {
				c, err := s.Process(ctx, p, g, reg)
				require.NoError(t, err, "processing %s", s)
				changed = c || changed
			}
		}
	}
	return g
}

// sites returns the sorted allocation labels of the objects l points to.
func sites(g *ptgraph.Graph, l *program.Local, ctx heap.Context) []string {
	id, ok := g.Lookup(ptgraph.Local(l, ctx))
	if !ok {
		return nil
	}
	res := []string{}
	g.PointsToSet(id).ForEach(func(o *heap.InstanceKey) {
		res = append(res, o.Site().Label)
	})
	sort.Strings(res)
	return res
}

func testLogger(buf *bytes.Buffer) *config.LogGroup {
	cfg := config.NewDefault()
	cfg.NoColorize = true
	l := config.NewLogGroup(cfg)
	l.SetAllOutput(buf)
	return l
}

func TestCopyStatements(t *testing.T) {
	A := program.NewClass("A", nil)
	B := program.NewClass("B", nil)
	main := program.NewMethod(nil, "main", true)
	a, b, c, d, e := main.Local("a", A), main.Local("b", A), main.Local("c", nil), main.Local("d", B), main.Local("e", B)

	reg := NewRegistry(main, nil, nil).Add(
		&New{Dst: a, Site: program.NewAllocSite(main, "s1", A)},
		&LocalAssign{Dst: b, Src: a},
		&Phi{Dst: c, Srcs: []*program.Local{b, d}},
		&New{Dst: d, Site: program.NewAllocSite(main, "s2", B)},
		&Cast{Dst: e, Src: c, Type: B},
	)

	p := heap.NewInsensitive(heap.NewStore())
	g := solve(t, reg, p)
	ctx := p.InitialContext()

	require.Equal(t, []string{"s1"}, sites(g, b, ctx))
	require.Equal(t, []string{"s1", "s2"}, sites(g, c, ctx))
	require.Equal(t, []string{"s2"}, sites(g, e, ctx))
}

func TestHeapStatements(t *testing.T) {
	A := program.NewClass("A", nil)
	S := program.NewClass("S", nil)
	main := program.NewMethod(nil, "main", true)
	f := program.NewField(A, "f", false)
	sg := program.NewField(S, "g", true)
	x, y, z, w := main.Local("x", A), main.Local("y", A), main.Local("z", A), main.Local("w", A)
	arr, r, r2 := main.Local("arr", program.NewArray(A)), main.Local("r", A), main.Local("r2", A)

	reg := NewRegistry(main, nil, nil).Add(
		&FieldLoad{Dst: z, Base: x, Field: f},
		&New{Dst: x, Site: program.NewAllocSite(main, "x", A)},
		&New{Dst: y, Site: program.NewAllocSite(main, "y", A)},
		&FieldStore{Base: x, Field: f, Src: y},
		&StaticFieldStore{Field: sg, Src: y},
		&StaticFieldLoad{Dst: w, Field: sg},
		&New{Dst: arr, Site: program.NewAllocSite(main, "arr", program.NewArray(A))},
		&ArrayStore{Base: arr, Src: x},
		&ArrayLoad{Dst: r, Base: arr},
		// x is not an array and has no contents.
		&ArrayStore{Base: x, Src: y},
		&ArrayLoad{Dst: r2, Base: x},
	)

	p := heap.NewCallSiteSensitive(heap.NewStore(), 1, 1)
	g := solve(t, reg, p)
	ctx := p.InitialContext()

	require.Equal(t, []string{"y"}, sites(g, z, ctx))
	require.Equal(t, []string{"y"}, sites(g, w, ctx))
	require.Equal(t, []string{"x"}, sites(g, r, ctx))
	require.Empty(t, sites(g, r2, ctx))
}

func TestVirtualCallDispatch(t *testing.T) {
	A := program.NewClass("A", nil)
	B := program.NewClass("B", A)
	X := program.NewClass("X", nil)
	aGet := program.NewMethod(A, "get", false)
	bGet := program.NewMethod(B, "get", false)
	main := program.NewMethod(nil, "main", true)

	a, b, r1, r2 := main.Local("a", A), main.Local("b", A), main.Local("r1", X), main.Local("r2", X)
	ra, rb := aGet.Local("r", X), bGet.Local("r", X)

	reg := NewRegistry(main, nil, nil).Add(
		&New{Dst: a, Site: program.NewAllocSite(main, "sa", A)},
		&New{Dst: b, Site: program.NewAllocSite(main, "sb", B)},
		&Call{Site: program.NewCallSite(main, "1", program.Virtual, aGet), Receiver: a, Result: r1},
		&Call{Site: program.NewCallSite(main, "2", program.Virtual, aGet), Receiver: b, Result: r2},
		&New{Dst: ra, Site: program.NewAllocSite(aGet, "ax", X)},
		&Return{Src: ra},
		&New{Dst: rb, Site: program.NewAllocSite(bGet, "bx", X)},
		&Return{Src: rb},
	)

	p := heap.NewObjectSensitive(heap.NewStore())
	g := solve(t, reg, p)
	ctx := p.InitialContext()

	require.Equal(t, []string{"ax"}, sites(g, r1, ctx))
	require.Equal(t, []string{"bx"}, sites(g, r2, ctx))

	require.Len(t, g.ContextsOf(aGet), 1)
	require.Len(t, g.ContextsOf(bGet), 1)
	require.Equal(t, []string{"sb"}, sites(g, bGet.This, g.ContextsOf(bGet)[0]))
	require.Equal(t, []*program.Method{aGet, bGet}, g.CallGraph().Callees(main))
}

func TestArgumentsAndExceptions(t *testing.T) {
	E := program.NewClass("E", nil)
	Other := program.NewClass("Other", nil)
	id := program.NewMethod(nil, "id", true, "p")
	fail := program.NewMethod(nil, "fail", true)
	main := program.NewMethod(nil, "main", true)

	arg, res := main.Local("arg", E), main.Local("res", E)
	caught, missed, all := main.Local("caught", E), main.Local("missed", Other), main.Local("all", nil)
	ex := fail.Local("ex", E)

	reg := NewRegistry(main, nil, nil).Add(
		&New{Dst: arg, Site: program.NewAllocSite(main, "arg", E)},
		&Call{Site: program.NewCallSite(main, "1", program.Static, id), Args: []*program.Local{arg}, Result: res},
		&Call{Site: program.NewCallSite(main, "2", program.Static, fail)},
		&Catch{Dst: caught, Type: E},
		&Catch{Dst: missed, Type: Other},
		&Catch{Dst: all},
		&Return{Src: id.Params[0]},
		&New{Dst: ex, Site: program.NewAllocSite(fail, "ex", E)},
		&Throw{Src: ex},
	)

	p := heap.NewCallSiteSensitive(heap.NewStore(), 1, 1)
	g := solve(t, reg, p)
	ctx := p.InitialContext()

	require.Equal(t, []string{"arg"}, sites(g, res, ctx))
	require.Equal(t, []string{"ex"}, sites(g, caught, ctx))
	require.Empty(t, sites(g, missed, ctx))
	require.Equal(t, []string{"ex"}, sites(g, all, ctx))
}

func TestClassInitRunsInInitialContext(t *testing.T) {
	S := program.NewClass("S", nil)
	clinit := program.NewMethod(S, "<clinit>", true)
	clinit.Initializer = true
	f := program.NewMethod(nil, "f", true)
	main := program.NewMethod(nil, "main", true)

	reg := NewRegistry(main, nil, nil).Add(
		&Call{Site: program.NewCallSite(main, "1", program.Static, f)},
		&Call{Site: program.NewCallSite(main, "2", program.Static, f)},
		&ClassInit{In: f, Init: clinit},
	)

	p := heap.NewCallSiteSensitive(heap.NewStore(), 1, 1)
	g := solve(t, reg, p)

	require.Len(t, g.ContextsOf(f), 2)
	require.Equal(t, []heap.Context{p.InitialContext()}, g.ContextsOf(clinit))
}

func TestUnresolvedCallsAreSkipped(t *testing.T) {
	A := program.NewClass("A", nil)
	I := program.NewInterface("I")
	run := program.NewMethod(I, "run", false)
	run.Abstract = true
	main := program.NewMethod(nil, "main", true)
	a, r := main.Local("a", A), main.Local("r", A)

	var buf bytes.Buffer
	call := &Call{Site: program.NewCallSite(main, "1", program.Virtual, run), Receiver: a, Result: r}
	reg := NewRegistry(main, nil, testLogger(&buf)).Add(
		&New{Dst: a, Site: program.NewAllocSite(main, "sa", A)},
		call,
	)

	p := heap.NewInsensitive(heap.NewStore())
	g := solve(t, reg, p)

	require.Empty(t, sites(g, r, p.InitialContext()))
	require.Empty(t, g.ContextsOf(run))
	require.Equal(t, 1, strings.Count(buf.String(), "No target for"))

	// The run's logger remembers the warning, not the statement value.
	copied := &Call{Site: call.Site, Receiver: call.Receiver, Result: call.Result}
	changed, err := copied.Process(p.InitialContext(), p, g, reg)
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, 1, strings.Count(buf.String(), "No target for"))
}

func TestMalformedStatements(t *testing.T) {
	A := program.NewClass("A", nil)
	main := program.NewMethod(nil, "main", true)
	other := program.NewMethod(nil, "other", true)
	callee := program.NewMethod(nil, "callee", true, "p")
	get := program.NewMethod(A, "get", false)
	x, y := main.Local("x", A), main.Local("y", A)

	bad := map[string]Statement{
		"arity":          &Call{Site: program.NewCallSite(main, "1", program.Static, callee)},
		"no receiver":    &Call{Site: program.NewCallSite(main, "2", program.Virtual, get)},
		"foreign local":  &LocalAssign{Dst: x, Src: other.Local("z", A)},
		"foreign site":   &New{Dst: x, Site: program.NewAllocSite(other, "s", A)},
		"static field":   &FieldStore{Base: x, Field: program.NewField(A, "s", true), Src: y},
		"instance field": &StaticFieldLoad{Dst: x, Field: program.NewField(A, "f", false)},
		"empty phi":      &Phi{Dst: x},
		"clinit":         &ClassInit{In: main, Init: get},
	}

	p := heap.NewInsensitive(heap.NewStore())
	for desc, s := range bad {
		t.Run(desc, func(t *testing.T) {
			g := ptgraph.NewGraph()
			reg := NewRegistry(main, nil, nil).Add(s)
			_, err := s.Process(p.InitialContext(), p, g, reg)
			require.Error(t, err)
		})
	}
}

func TestCopyEdges(t *testing.T) {
	utils.SetColorize(false)

	A := program.NewClass("A", nil)
	main := program.NewMethod(nil, "main", true)
	a, b, c := main.Local("a", A), main.Local("b", A), main.Local("c", A)
	ctx := heap.NewInsensitive(heap.NewStore()).InitialContext()
	g := ptgraph.NewGraph()

	node := func(l *program.Local) ptgraph.NodeID { return g.Node(ptgraph.Local(l, ctx)) }

	var copier Copier = &LocalAssign{Dst: b, Src: a}
	require.Equal(t, []CopyEdge{{Src: node(a), Dst: node(b)}}, copier.CopyEdges(ctx, g))

	copier = &Phi{Dst: c, Srcs: []*program.Local{a, b}}
	require.Equal(t, []CopyEdge{{Src: node(a), Dst: node(c)}, {Src: node(b), Dst: node(c)}}, copier.CopyEdges(ctx, g))
	require.Equal(t, "c = phi(a, b)", copier.String())

	require.Empty(t, (&Cast{Dst: b, Src: a, Type: A}).CopyEdges(ctx, g))
	require.Len(t, (&Cast{Dst: b, Src: a}).CopyEdges(ctx, g), 1)
	require.Equal(t, "b = (A) a", (&Cast{Dst: b, Src: a, Type: A}).String())

	ret := (&Return{Src: a}).CopyEdges(ctx, g)
	require.Equal(t, ptgraph.ReturnNode, g.Key(ret[0].Dst).Kind)
}
