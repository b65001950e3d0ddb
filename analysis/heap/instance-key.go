package heap

import (
	"fmt"

	"github.com/cs-au-dk/ctxpta/analysis/program"
)

// InstanceKey is an abstract heap object: an allocation site specialized
// to a heap context, optionally decorated with a recency tag.
// Instance keys are immutable and hash-consed by their Store, so two keys
// are equal exactly when they are the same pointer.
type InstanceKey struct {
	site    *program.AllocSite
	context Context
	tracked bool
	recent  bool

	store *Store
	hash  uint32
}

// Site is the allocation site of the abstract object.
func (k *InstanceKey) Site() *program.AllocSite { return k.site }

// Context is the heap context the object was allocated in.
func (k *InstanceKey) Context() Context { return k.context }

// Type is the allocated type.
func (k *InstanceKey) Type() *program.Type { return k.site.Type }

// IsRecent reports whether the key denotes only the most recently
// allocated concrete object of its site and context.
func (k *InstanceKey) IsRecent() bool { return k.recent }

// IsTrackingMostRecent reports whether recency is tracked for the key.
// IsRecent implies IsTrackingMostRecent.
func (k *InstanceKey) IsTrackingMostRecent() bool { return k.tracked }

// Recent returns the key with the recency flag set to recent. The key is
// returned unchanged if the flag already matches. It is a precondition
// violation to call Recent on a key that does not track recency.
func (k *InstanceKey) Recent(recent bool) *InstanceKey {
	if !k.tracked {
		panic(fmt.Errorf("Recent(%v) called on %s which does not track recency", recent, k))
	}
	if k.recent == recent {
		return k
	}
	return k.store.instanceKey(k.site, k.context, true, recent)
}

// Untagged returns the key without its recency decoration.
func (k *InstanceKey) Untagged() *InstanceKey {
	if !k.tracked {
		return k
	}
	return k.store.instanceKey(k.site, k.context, false, false)
}

func (k *InstanceKey) Hash() uint32 { return k.hash }

func (k *InstanceKey) Equal(o *InstanceKey) bool { return k == o }

func (k *InstanceKey) String() string {
	var tag string
	if k.tracked {
		if k.recent {
			tag = colorize.Tag(" (recent)")
		} else {
			tag = colorize.Tag(" (old)")
		}
	}
	return fmt.Sprintf("‹%s %s%s›", colorize.Key(k.site.String()), k.context, tag)
}
