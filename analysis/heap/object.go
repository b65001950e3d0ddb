package heap

import (
	"fmt"

	"github.com/cs-au-dk/ctxpta/analysis/program"
)

// ObjectSensitive is one-object sensitivity: methods invoked on a receiver
// are analyzed in the context of the receiver's instance key. Objects are
// allocated under the allocation site of the receiver of the allocating
// method, which keeps the set of contexts finite.
//
// Statically dispatched calls do not refine the context: the callee is
// analyzed in the caller's context.
type ObjectSensitive struct {
	store *Store
}

// NewObjectSensitive creates a one-object-sensitive policy.
func NewObjectSensitive(store *Store) *ObjectSensitive {
	return &ObjectSensitive{store: store}
}

func (p *ObjectSensitive) InitialContext() Context {
	return p.store.Context(&receiverContext{})
}

func (p *ObjectSensitive) Record(site *program.AllocSite, ctx Context) *InstanceKey {
	rc, ok := ctx.(*receiverContext)
	if !ok {
		panic(mismatch(p.String(), ctx))
	}

	hctx := ctx
	if rc.recv != nil {
		hctx = p.store.Context(&allocatorContext{site: rc.recv.Site()})
	}
	return p.store.instanceKey(site, hctx, false, false)
}

func (p *ObjectSensitive) Merge(site *program.CallSite, recv *InstanceKey, caller Context) Context {
	if site.IsStatic() {
		return caller
	}
	if recv == nil {
		panic(fmt.Errorf("%s merge at %s call %s requires a receiver", p, site.Kind, site))
	}
	return p.store.Context(&receiverContext{recv: recv})
}

func (p *ObjectSensitive) String() string {
	return "1-object"
}
