package heap

import (
	"fmt"
	"sync"

	"github.com/cs-au-dk/ctxpta/analysis/program"
	"github.com/cs-au-dk/ctxpta/utils"
	"github.com/cs-au-dk/ctxpta/utils/hmap"
)

// keyID is the defining tuple of an instance key. Contexts are interned, so
// the interface values compare by identity.
type keyID struct {
	site    *program.AllocSite
	context Context
	tracked bool
	recent  bool
}

// Store hash-conses contexts and instance keys for one analysis run.
// Value-equal contexts (and instance keys with value-equal defining fields)
// are returned as the same reference, also when requested concurrently:
// every lookup is an atomic check-then-insert under the store lock.
//
// A Store is created when a run starts and cleared when its results are
// no longer needed.
type Store struct {
	mu       sync.Mutex
	contexts *hmap.Map[Context, Context]
	keys     map[keyID]*InstanceKey
}

// NewStore creates an empty intern store.
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.contexts = hmap.NewMap[Context, Context](utils.InternHasher[Context]{})
	s.keys = make(map[keyID]*InstanceKey)
}

// Context returns the canonical representative of c.
func (s *Store) Context(c Context) Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	canon, _ := s.contexts.GetOrSet(c, func() Context { return c })
	return canon
}

// instanceKey returns the canonical instance key of the given tuple. The
// context must already be interned in this store.
func (s *Store) instanceKey(site *program.AllocSite, ctx Context, tracked, recent bool) *InstanceKey {
	if site == nil {
		panic(fmt.Errorf("instance key requested for a nil allocation site (context %s)", ctx))
	}
	if recent && !tracked {
		panic(fmt.Errorf("recent instance key of %s must track the most recent object", site))
	}

	id := keyID{site, ctx, tracked, recent}

	s.mu.Lock()
	defer s.mu.Unlock()

	if k, ok := s.keys[id]; ok {
		return k
	}

	k := &InstanceKey{
		site:    site,
		context: ctx,
		tracked: tracked,
		recent:  recent,
		store:   s,
	}
	k.hash = utils.HashCombine(
		site.Hash(),
		ctx.Hash(),
		utils.HashBool(tracked),
		utils.HashBool(recent),
	)
	s.keys[id] = k
	return k
}

// Len returns the number of interned contexts and instance keys.
func (s *Store) Len() (contexts, keys int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contexts.Len(), len(s.keys)
}

// Clear drops all interned values. References handed out before remain
// valid, but are no longer canonical for later requests.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}
