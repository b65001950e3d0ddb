package engine

import (
	"io"

	"github.com/cs-au-dk/ctxpta/analysis/config"
	"github.com/cs-au-dk/ctxpta/analysis/program"
	"github.com/cs-au-dk/ctxpta/analysis/statement"
)

func quietLogger(cfg *config.Config) *config.LogGroup {
	l := config.NewLogGroup(cfg)
	l.SetAllOutput(io.Discard)
	return l
}

func testConfig(driver string) *config.Config {
	cfg := config.NewDefault()
	cfg.Driver = driver
	cfg.Workers = 4
	cfg.NoColorize = true
	return cfg
}

// twoCallSites is the program
//
//	main() { a = new A; b = new A; x = id(a); y = id(b) }
//	id(p) { return p }
type twoCallSites struct {
	reg          *statement.Registry
	main, id     *program.Method
	a, b, x, y   *program.Local
	siteA, siteB *program.AllocSite
	call1, call2 *program.CallSite
}

func newTwoCallSites() twoCallSites {
	A := program.NewClass("A", nil)
	main := program.NewMethod(nil, "main", true)
	id := program.NewMethod(nil, "id", true, "p")

	p := twoCallSites{
		main:  main,
		id:    id,
		a:     main.Local("a", A),
		b:     main.Local("b", A),
		x:     main.Local("x", A),
		y:     main.Local("y", A),
		siteA: program.NewAllocSite(main, "a", A),
		siteB: program.NewAllocSite(main, "b", A),
		call1: program.NewCallSite(main, "1", program.Static, id),
		call2: program.NewCallSite(main, "2", program.Static, id),
	}
	p.reg = statement.NewRegistry(main, nil, nil).Add(
		&statement.New{Dst: p.a, Site: p.siteA},
		&statement.New{Dst: p.b, Site: p.siteB},
		&statement.Call{Site: p.call1, Args: []*program.Local{p.a}, Result: p.x},
		&statement.Call{Site: p.call2, Args: []*program.Local{p.b}, Result: p.y},
		&statement.Return{Src: id.Params[0]},
	)
	return p
}

// twoReceivers is the program
//
//	class A { m() { return new X } }
//	class B extends A { m() { return new Y } }
//	main() { a = new A; b = new B; u = a.m(); v = b.m() }
type twoReceivers struct {
	reg          *statement.Registry
	aM, bM       *program.Method
	u, v         *program.Local
	siteX, siteY *program.AllocSite
}

func newTwoReceivers() twoReceivers {
	A := program.NewClass("A", nil)
	B := program.NewClass("B", A)
	X := program.NewClass("X", nil)
	Y := program.NewClass("Y", nil)
	aM := program.NewMethod(A, "m", false)
	bM := program.NewMethod(B, "m", false)
	main := program.NewMethod(nil, "main", true)

	a, b := main.Local("a", A), main.Local("b", A)
	p := twoReceivers{
		aM:    aM,
		bM:    bM,
		u:     main.Local("u", nil),
		v:     main.Local("v", nil),
		siteX: program.NewAllocSite(aM, "x", X),
		siteY: program.NewAllocSite(bM, "y", Y),
	}
	rx, ry := aM.Local("r", X), bM.Local("r", Y)
	p.reg = statement.NewRegistry(main, nil, nil).Add(
		&statement.New{Dst: a, Site: program.NewAllocSite(main, "a", A)},
		&statement.New{Dst: b, Site: program.NewAllocSite(main, "b", B)},
		&statement.Call{Site: program.NewCallSite(main, "1", program.Virtual, aM), Receiver: a, Result: p.u},
		&statement.Call{Site: program.NewCallSite(main, "2", program.Virtual, aM), Receiver: b, Result: p.v},
		&statement.New{Dst: rx, Site: p.siteX},
		&statement.Return{Src: rx},
		&statement.New{Dst: ry, Site: p.siteY},
		&statement.Return{Src: ry},
	)
	return p
}

// copyCycle is the program
//
//	main() { a = new A; b = a; c = phi(b, d); d = c; a = d }
type copyCycle struct {
	reg        *statement.Registry
	a, b, c, d *program.Local
}

func newCopyCycle() copyCycle {
	A := program.NewClass("A", nil)
	main := program.NewMethod(nil, "main", true)
	p := copyCycle{
		a: main.Local("a", A),
		b: main.Local("b", A),
		c: main.Local("c", A),
		d: main.Local("d", A),
	}
	p.reg = statement.NewRegistry(main, nil, nil).Add(
		&statement.New{Dst: p.a, Site: program.NewAllocSite(main, "s", A)},
		&statement.LocalAssign{Dst: p.b, Src: p.a},
		&statement.Phi{Dst: p.c, Srcs: []*program.Local{p.b, p.d}},
		&statement.LocalAssign{Dst: p.d, Src: p.c},
		&statement.LocalAssign{Dst: p.a, Src: p.d},
	)
	return p
}

// copyChain is a chain of copies listed against the flow, so the naive
// driver needs one sweep per link.
func newCopyChain(n int) *statement.Registry {
	A := program.NewClass("A", nil)
	main := program.NewMethod(nil, "main", true)

	locals := make([]*program.Local, n)
	for i := range locals {
		locals[i] = main.Local(string(rune('a'+i)), A)
	}

	reg := statement.NewRegistry(main, nil, nil)
	for i := n - 1; i > 0; i-- {
		reg.Add(&statement.LocalAssign{Dst: locals[i], Src: locals[i-1]})
	}
	reg.Add(&statement.New{Dst: locals[0], Site: program.NewAllocSite(main, "s", A)})
	return reg
}

// newLinkedLists exercises every statement kind: two lists built through
// the same methods, array contents, static fields, exceptions, class
// initialization, recursion and a copy cycle.
func newLinkedLists() *statement.Registry {
	Obj := program.NewClass("Obj", nil)
	Exc := program.NewClass("Exc", Obj)
	Node := program.NewClass("Node", Obj)
	List := program.NewClass("List", Obj)
	Reg := program.NewClass("Registry", Obj)

	next := program.NewField(Node, "next", false)
	val := program.NewField(Node, "val", false)
	head := program.NewField(List, "head", false)
	last := program.NewField(Reg, "last", true)

	add := program.NewMethod(List, "add", false, "v")
	first := program.NewMethod(List, "first", false)
	fail := program.NewMethod(nil, "fail", true)
	rec := program.NewMethod(nil, "rec", true, "p")
	clinit := program.NewMethod(Reg, "<clinit>", true)
	clinit.Initializer = true
	main := program.NewMethod(nil, "main", true)

	l := func(m *program.Method, name string) *program.Local { return m.Local(name, nil) }

	reg := statement.NewRegistry(main, nil, nil)

	// List.add(v) { n = new Node; n.val = v; h = this.head; n.next = h; this.head = n; Registry.last = n }
	n, h := l(add, "n"), l(add, "h")
	reg.Add(
		&statement.New{Dst: n, Site: program.NewAllocSite(add, "node", Node)},
		&statement.FieldStore{Base: n, Field: val, Src: add.Params[0]},
		&statement.FieldLoad{Dst: h, Base: add.This, Field: head},
		&statement.FieldStore{Base: n, Field: next, Src: h},
		&statement.FieldStore{Base: add.This, Field: head, Src: n},
		&statement.ClassInit{In: add, Init: clinit},
		&statement.StaticFieldStore{Field: last, Src: n},
	)

	// List.first() { h = this.head; r = h.val; return r }
	fh, fr := l(first, "h"), l(first, "r")
	reg.Add(
		&statement.FieldLoad{Dst: fh, Base: first.This, Field: head},
		&statement.FieldLoad{Dst: fr, Base: fh, Field: val},
		&statement.Return{Src: fr},
	)

	// fail() { e = new Exc; throw e }
	fe := l(fail, "e")
	reg.Add(
		&statement.New{Dst: fe, Site: program.NewAllocSite(fail, "exc", Exc)},
		&statement.Throw{Src: fe},
	)

	// rec(p) { q = rec(p); return p }
	rq := l(rec, "q")
	reg.Add(
		&statement.Call{Site: program.NewCallSite(rec, "r", program.Static, rec), Args: []*program.Local{rec.Params[0]}, Result: rq},
		&statement.Return{Src: rec.Params[0]},
	)

	// <clinit>() { s = new Obj; Registry.last = s }
	cs := l(clinit, "s")
	reg.Add(
		&statement.New{Dst: cs, Site: program.NewAllocSite(clinit, "init", Obj)},
		&statement.StaticFieldStore{Field: last, Src: cs},
	)

	l1, l2, o1, o2 := l(main, "l1"), l(main, "l2"), l(main, "o1"), l(main, "o2")
	r1, r2, arr, e := l(main, "r1"), l(main, "r2"), l(main, "arr"), l(main, "e")
	a, b, c, d := l(main, "a"), l(main, "b"), l(main, "c"), l(main, "d")
	caught, lst, nd, rr := l(main, "caught"), l(main, "last"), l(main, "node"), l(main, "rec")
	reg.Add(
		&statement.New{Dst: l1, Site: program.NewAllocSite(main, "l1", List)},
		&statement.New{Dst: l2, Site: program.NewAllocSite(main, "l2", List)},
		&statement.New{Dst: o1, Site: program.NewAllocSite(main, "o1", Obj)},
		&statement.New{Dst: o2, Site: program.NewAllocSite(main, "o2", Exc)},
		&statement.Call{Site: program.NewCallSite(main, "1", program.Virtual, add), Receiver: l1, Args: []*program.Local{o1}},
		&statement.Call{Site: program.NewCallSite(main, "2", program.Virtual, add), Receiver: l2, Args: []*program.Local{o2}},
		&statement.Call{Site: program.NewCallSite(main, "3", program.Virtual, first), Receiver: l1, Result: r1},
		&statement.Call{Site: program.NewCallSite(main, "4", program.Virtual, first), Receiver: l2, Result: r2},
		&statement.New{Dst: arr, Site: program.NewAllocSite(main, "arr", program.NewArray(Obj))},
		&statement.ArrayStore{Base: arr, Src: r1},
		&statement.ArrayStore{Base: arr, Src: r2},
		&statement.ArrayLoad{Dst: e, Base: arr},
		&statement.Cast{Dst: a, Src: e, Type: Exc},
		&statement.LocalAssign{Dst: b, Src: a},
		&statement.Phi{Dst: c, Srcs: []*program.Local{b, d}},
		&statement.LocalAssign{Dst: d, Src: c},
		&statement.LocalAssign{Dst: a, Src: d},
		&statement.Call{Site: program.NewCallSite(main, "5", program.Static, fail)},
		&statement.Catch{Dst: caught, Type: Exc},
		&statement.StaticFieldLoad{Dst: lst, Field: last},
		&statement.FieldLoad{Dst: nd, Base: lst, Field: next},
		&statement.Call{Site: program.NewCallSite(main, "6", program.Static, rec), Args: []*program.Local{o1}, Result: rr},
	)
	return reg
}
