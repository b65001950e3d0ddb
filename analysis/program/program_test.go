package program

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubtypeOf(t *testing.T) {
	foo := NewInterface("Foo")
	base := NewClass("Base", nil)
	c1 := NewClass("C1", base, foo)
	c2 := NewClass("C2", nil, foo)

	require.True(t, c1.SubtypeOf(c1))
	require.True(t, c1.SubtypeOf(base))
	require.True(t, c1.SubtypeOf(foo))
	require.True(t, c2.SubtypeOf(foo))
	require.False(t, c2.SubtypeOf(base))
	require.False(t, base.SubtypeOf(c1))

	require.True(t, NewArray(c1).SubtypeOf(NewArray(base)))
	require.False(t, NewArray(c1).SubtypeOf(base))
}

func TestClassTableVirtualDispatch(t *testing.T) {
	foo := NewInterface("Foo")
	abstract := NewMethod(foo, "foo", false)
	abstract.Abstract = true

	base := NewClass("Base", nil, foo)
	baseFoo := NewMethod(base, "foo", false)
	sub := NewClass("Sub", base)
	other := NewClass("Other", nil, foo)
	otherFoo := NewMethod(other, "foo", false)

	caller := NewMethod(nil, "main", true)
	site := NewCallSite(caller, "1", Virtual, abstract)

	var ct ClassTable
	require.Equal(t, []*Method{baseFoo}, ct.Resolve(site, base))
	require.Equal(t, []*Method{baseFoo}, ct.Resolve(site, sub), "inherited implementation")
	require.Equal(t, []*Method{otherFoo}, ct.Resolve(site, other))
	require.Empty(t, ct.Resolve(site, NewClass("Unrelated", nil)))
	require.Empty(t, ct.Resolve(site, nil))
}

func TestClassTableStaticDispatch(t *testing.T) {
	util := NewClass("Util", nil)
	helper := NewMethod(util, "helper", true, "a")
	caller := NewMethod(nil, "main", true)

	var ct ClassTable
	site := NewCallSite(caller, "1", Static, helper)
	require.Equal(t, []*Method{helper}, ct.Resolve(site, nil))
	require.Len(t, helper.Params, 1)
	require.Nil(t, helper.This)
}

func TestMethodLocalsAreUnique(t *testing.T) {
	c := NewClass("C", nil)
	m := NewMethod(c, "run", false, "x")
	require.Same(t, m.Params[0], m.Local("x", nil))
	require.Same(t, m.This, m.Local("this", nil))
	require.Equal(t, "C.run", m.QualifiedName())
}

func TestAllocSitesNameTheirMethod(t *testing.T) {
	a := NewClass("A", nil)
	f := NewMethod(nil, "f", true)
	g := NewMethod(nil, "g", true)

	sf, sg := NewAllocSite(f, "0", a), NewAllocSite(g, "0", a)
	require.Contains(t, sf.String(), "new A@f:0")
	require.Contains(t, sg.String(), "new A@g:0")
	require.NotEqual(t, sf.String(), sg.String())
}
