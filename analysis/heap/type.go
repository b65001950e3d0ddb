package heap

import (
	"fmt"

	"github.com/cs-au-dk/ctxpta/analysis/program"
)

// TypeSensitive analyzes methods invoked on a receiver in the context of
// the receiver's allocated type. Statically dispatched calls keep the
// caller's context.
type TypeSensitive struct {
	store *Store
}

// NewTypeSensitive creates a type-sensitive policy.
func NewTypeSensitive(store *Store) *TypeSensitive {
	return &TypeSensitive{store: store}
}

func (p *TypeSensitive) InitialContext() Context {
	return p.store.Context(&typeContext{})
}

func (p *TypeSensitive) Record(site *program.AllocSite, ctx Context) *InstanceKey {
	if _, ok := ctx.(*typeContext); !ok {
		panic(mismatch(p.String(), ctx))
	}
	return p.store.instanceKey(site, ctx, false, false)
}

func (p *TypeSensitive) Merge(site *program.CallSite, recv *InstanceKey, caller Context) Context {
	if site.IsStatic() {
		return caller
	}
	if recv == nil {
		panic(fmt.Errorf("%s merge at %s call %s requires a receiver", p, site.Kind, site))
	}
	return p.store.Context(&typeContext{typ: recv.Type()})
}

func (p *TypeSensitive) String() string {
	return "1-type"
}
