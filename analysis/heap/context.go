package heap

import (
	"fmt"
	"strings"

	"github.com/cs-au-dk/ctxpta/analysis/program"
	"github.com/cs-au-dk/ctxpta/utils"
	"github.com/fatih/color"
)

// colorize is used for pretty-printing.
var colorize = struct {
	Context func(...interface{}) string
	Key     func(...interface{}) string
	Tag     func(...interface{}) string
}{
	Context: utils.Painter(color.FgHiBlue),
	Key:     utils.Painter(color.FgHiGreen),
	Tag:     utils.Painter(color.FgHiMagenta),
}

// Context is an abstract calling or allocation context. Contexts are opaque
// outside of the policy that created them. They are interned by a Store,
// so canonical contexts can be compared with ==.
type Context interface {
	utils.Interned[Context]
	String() string
}

// callStringContext is a bounded call string, most recent call site first.
type callStringContext struct {
	sites []*program.CallSite
}

func (c *callStringContext) Hash() uint32 {
	hs := make([]uint32, 0, len(c.sites)+1)
	hs = append(hs, utils.HashInt(len(c.sites)))
	for _, s := range c.sites {
		hs = append(hs, s.Hash())
	}
	return utils.HashCombine(hs...)
}

func (c *callStringContext) Equal(o Context) bool {
	oc, ok := o.(*callStringContext)
	if !ok || len(c.sites) != len(oc.sites) {
		return false
	}
	for i, s := range c.sites {
		if s != oc.sites[i] {
			return false
		}
	}
	return true
}

func (c *callStringContext) String() string {
	strs := make([]string, 0, len(c.sites))
	for _, s := range c.sites {
		strs = append(strs, s.String())
	}
	return colorize.Context("[") + strings.Join(strs, " ") + colorize.Context("]")
}

// truncate returns the call string limited to its n most recent sites.
func (c *callStringContext) truncate(n int) *callStringContext {
	if len(c.sites) <= n {
		return c
	}
	return &callStringContext{sites: c.sites[:n]}
}

// receiverContext is the context of a method invoked on a receiver object.
// The initial context has no receiver.
type receiverContext struct {
	recv *InstanceKey
}

func (c *receiverContext) Hash() uint32 {
	if c.recv == nil {
		return 1
	}
	return utils.HashCombine(2, c.recv.Hash())
}

func (c *receiverContext) Equal(o Context) bool {
	oc, ok := o.(*receiverContext)
	return ok && c.recv == oc.recv
}

func (c *receiverContext) String() string {
	if c.recv == nil {
		return colorize.Context("[]")
	}
	return colorize.Context("[recv ") + c.recv.String() + colorize.Context("]")
}

// allocatorContext is the heap context of objects allocated in a method
// invoked on a receiver created at site.
type allocatorContext struct {
	site *program.AllocSite
}

func (c *allocatorContext) Hash() uint32 {
	return utils.HashCombine(3, c.site.Hash())
}

func (c *allocatorContext) Equal(o Context) bool {
	oc, ok := o.(*allocatorContext)
	return ok && c.site == oc.site
}

func (c *allocatorContext) String() string {
	return colorize.Context("[alloc ") + c.site.String() + colorize.Context("]")
}

// typeContext is the context of a method invoked on a receiver of a given
// allocated type. The initial context has no type.
type typeContext struct {
	typ *program.Type
}

func (c *typeContext) Hash() uint32 {
	return utils.HashCombine(4, c.typ.Hash())
}

func (c *typeContext) Equal(o Context) bool {
	oc, ok := o.(*typeContext)
	return ok && c.typ == oc.typ
}

func (c *typeContext) String() string {
	if c.typ == nil {
		return colorize.Context("[]")
	}
	return colorize.Context("[type ") + c.typ.String() + colorize.Context("]")
}

// insensitiveContext is the single context of context-insensitive analyses.
type insensitiveContext struct{}

func (insensitiveContext) Hash() uint32 { return 5 }

func (insensitiveContext) Equal(o Context) bool {
	_, ok := o.(*insensitiveContext)
	return ok
}

func (insensitiveContext) String() string {
	return colorize.Context("[*]")
}

// mismatch reports a context that was not produced by the policy consuming it.
func mismatch(policy string, ctx Context) error {
	return fmt.Errorf("%s policy received foreign context %s (%T)", policy, ctx, ctx)
}
