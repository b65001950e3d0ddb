package ptgraph

import (
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/cs-au-dk/ctxpta/analysis/heap"
	"github.com/cs-au-dk/ctxpta/utils"
	"golang.org/x/exp/slices"
)

var keyHasher = utils.InternHasher[*heap.InstanceKey]{}

// PointsToSet is a persistent set of abstract objects. Updates return a new
// set and leave the receiver untouched, so snapshots handed out by the
// graph never change under the reader. The zero value is the empty set.
type PointsToSet struct {
	mem *immutable.Map[*heap.InstanceKey, struct{}]
}

// NewPointsToSet creates a points-to set with the given objects.
func NewPointsToSet(keys ...*heap.InstanceKey) PointsToSet {
	var s PointsToSet
	for _, k := range keys {
		s, _ = s.Add(k)
	}
	return s
}

func (s PointsToSet) init() PointsToSet {
	if s.mem == nil {
		s.mem = immutable.NewMap[*heap.InstanceKey, struct{}](keyHasher)
	}
	return s
}

// Len is the cardinality of the set.
func (s PointsToSet) Len() int {
	if s.mem == nil {
		return 0
	}
	return s.mem.Len()
}

// Empty checks whether the set is ∅.
func (s PointsToSet) Empty() bool {
	return s.Len() == 0
}

// Contains checks whether k is in the set.
func (s PointsToSet) Contains(k *heap.InstanceKey) bool {
	if s.mem == nil {
		return false
	}
	_, found := s.mem.Get(k)
	return found
}

// Add returns the set extended with k, and whether k was new.
func (s PointsToSet) Add(k *heap.InstanceKey) (PointsToSet, bool) {
	if s.Contains(k) {
		return s, false
	}
	s = s.init()
	s.mem = s.mem.Set(k, struct{}{})
	return s, true
}

// Union returns s ∪ o, and whether the result is larger than s.
func (s PointsToSet) Union(o PointsToSet) (PointsToSet, bool) {
	if o.Len() == 0 || s.mem == o.mem {
		return s, false
	}
	if s.Len() == 0 {
		return o, true
	}

	changed := false
	o.ForEach(func(k *heap.InstanceKey) {
		var added bool
		if s, added = s.Add(k); added {
			changed = true
		}
	})
	return s, changed
}

// ForEach calls f on every object in the set.
func (s PointsToSet) ForEach(f func(*heap.InstanceKey)) {
	if s.mem == nil {
		return
	}
	for itr := s.mem.Iterator(); !itr.Done(); {
		k, _, _ := itr.Next()
		f(k)
	}
}

// Filter returns the objects satisfying pred.
func (s PointsToSet) Filter(pred func(*heap.InstanceKey) bool) PointsToSet {
	var res PointsToSet
	s.ForEach(func(k *heap.InstanceKey) {
		if pred(k) {
			res, _ = res.Add(k)
		}
	})
	return res
}

// SubsetOf checks whether every object of s is also in o.
func (s PointsToSet) SubsetOf(o PointsToSet) bool {
	if s.Len() > o.Len() {
		return false
	}
	sub := true
	s.ForEach(func(k *heap.InstanceKey) {
		sub = sub && o.Contains(k)
	})
	return sub
}

// Equal checks whether both sets contain the same objects.
func (s PointsToSet) Equal(o PointsToSet) bool {
	return s.Len() == o.Len() && s.SubsetOf(o)
}

// Entries returns the objects of the set in a deterministic order.
func (s PointsToSet) Entries() []*heap.InstanceKey {
	res := make([]*heap.InstanceKey, 0, s.Len())
	s.ForEach(func(k *heap.InstanceKey) {
		res = append(res, k)
	})
	slices.SortFunc(res, func(a, b *heap.InstanceKey) bool {
		return a.String() < b.String()
	})
	return res
}

func (s PointsToSet) String() string {
	entries := s.Entries()
	strs := make([]string, 0, len(entries))
	for _, k := range entries {
		strs = append(strs, k.String())
	}
	return "{" + strings.Join(strs, ", ") + "}"
}
