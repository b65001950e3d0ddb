package utils

// Interned is implemented by analysis values that are hash-consed: contexts
// and instance keys. Equal values must have equal hashes.
type Interned[T any] interface {
	Hash() uint32
	Equal(T) bool
}

// InternHasher hashes Interned values with their own Hash and Equal. It
// satisfies immutable.Hasher and is the hasher of intern tables and
// points-to sets.
type InternHasher[T Interned[T]] struct{}

func (InternHasher[T]) Hash(v T) uint32 { return v.Hash() }

func (InternHasher[T]) Equal(a, b T) bool { return a.Equal(b) }

const (
	fnvOffset uint32 = 2166136261
	fnvPrime  uint32 = 16777619
)

// HashString is the 32-bit FNV-1a hash of s. It is stable across runs,
// unlike the seeded hashes of Go maps.
func HashString(s string) uint32 {
	h := fnvOffset
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

// HashInt hashes the two halves of i.
func HashInt(i int) uint32 {
	u := uint64(i)
	return HashCombine(uint32(u), uint32(u>>32))
}

// HashBool maps booleans to two distinct hashes.
func HashBool(b bool) uint32 {
	if b {
		return 0x51ed270b
	}
	return 0x2545f491
}

// HashCombine folds hs into one hash. The order of hs matters.
func HashCombine(hs ...uint32) uint32 {
	h := fnvOffset
	for _, v := range hs {
		h ^= v
		h *= fnvPrime
	}
	return h
}
