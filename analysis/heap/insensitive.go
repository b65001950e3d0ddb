package heap

import "github.com/cs-au-dk/ctxpta/analysis/program"

// Insensitive merges all calls into a single context.
type Insensitive struct {
	store *Store
}

// NewInsensitive creates a context-insensitive policy.
func NewInsensitive(store *Store) *Insensitive {
	return &Insensitive{store: store}
}

func (p *Insensitive) InitialContext() Context {
	return p.store.Context(&insensitiveContext{})
}

func (p *Insensitive) Record(site *program.AllocSite, _ Context) *InstanceKey {
	return p.store.instanceKey(site, p.InitialContext(), false, false)
}

func (p *Insensitive) Merge(*program.CallSite, *InstanceKey, Context) Context {
	return p.InitialContext()
}

func (p *Insensitive) String() string {
	return "insensitive"
}
