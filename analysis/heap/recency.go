package heap

import (
	"fmt"

	"github.com/cs-au-dk/ctxpta/analysis/program"
)

// Recency decorates a policy with the recency abstraction: objects of
// non-array sites are recorded as the most recent object of their site,
// which a client may later demote with InstanceKey.Recent(false).
//
// Recency is never a context-distinguishing feature: receivers are stripped
// of their tag before the base policy sees them.
type Recency struct {
	base Policy
}

// NewRecency wraps base with recency tracking.
func NewRecency(base Policy) *Recency {
	return &Recency{base: base}
}

// Base is the decorated policy.
func (p *Recency) Base() Policy { return p.base }

func (p *Recency) InitialContext() Context {
	return p.base.InitialContext()
}

func (p *Recency) Record(site *program.AllocSite, ctx Context) *InstanceKey {
	k := p.base.Record(site, ctx)
	if site.IsArray() {
		return k
	}
	return k.store.instanceKey(k.site, k.context, true, true)
}

func (p *Recency) Merge(site *program.CallSite, recv *InstanceKey, caller Context) Context {
	if recv != nil {
		recv = recv.Untagged()
	}
	return p.base.Merge(site, recv, caller)
}

func (p *Recency) String() string {
	return fmt.Sprintf("recency(%v)", p.base)
}
