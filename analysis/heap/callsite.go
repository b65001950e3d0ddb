package heap

import (
	"fmt"

	"github.com/cs-au-dk/ctxpta/analysis/program"
)

// CallSiteSensitive is k-CFA: a context is the string of the k most recent
// call sites. Objects are allocated in the caller context truncated to
// heapDepth call sites.
type CallSiteSensitive struct {
	store     *Store
	k         int
	heapDepth int
}

// NewCallSiteSensitive creates a k-CFA policy.
func NewCallSiteSensitive(store *Store, k, heapDepth int) *CallSiteSensitive {
	if k < 0 || heapDepth < 0 || heapDepth > k {
		panic(fmt.Errorf("invalid call-site sensitivity k=%d heap depth=%d", k, heapDepth))
	}
	return &CallSiteSensitive{store: store, k: k, heapDepth: heapDepth}
}

func (p *CallSiteSensitive) InitialContext() Context {
	return p.store.Context(&callStringContext{})
}

func (p *CallSiteSensitive) Record(site *program.AllocSite, ctx Context) *InstanceKey {
	cs := p.callString(ctx)
	hctx := p.store.Context(cs.truncate(p.heapDepth))
	return p.store.instanceKey(site, hctx, false, false)
}

func (p *CallSiteSensitive) Merge(site *program.CallSite, _ *InstanceKey, caller Context) Context {
	cs := p.callString(caller)
	sites := make([]*program.CallSite, 0, len(cs.sites)+1)
	sites = append(sites, site)
	sites = append(sites, cs.sites...)
	return p.store.Context((&callStringContext{sites: sites}).truncate(p.k))
}

func (p *CallSiteSensitive) callString(ctx Context) *callStringContext {
	cs, ok := ctx.(*callStringContext)
	if !ok {
		panic(mismatch(p.String(), ctx))
	}
	return cs
}

func (p *CallSiteSensitive) String() string {
	return fmt.Sprintf("%d-call-site+%dH", p.k, p.heapDepth)
}
