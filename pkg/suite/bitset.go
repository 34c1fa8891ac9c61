package suite

import "math/bits"

// bitset is a fixed-size set of module indices.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) set(i int) {
	b[i/64] |= 1 << (uint(i) % 64)
}

func (b bitset) has(i int) bool {
	return b[i/64]&(1<<(uint(i)%64)) != 0
}

func (b bitset) count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

// subsetOf reports whether every element of b is in o.
func (b bitset) subsetOf(o bitset) bool {
	for i, w := range b {
		if w&^o[i] != 0 {
			return false
		}
	}
	return true
}

// strictSubsetOf reports whether b is a subset of o and o has more elements.
func (b bitset) strictSubsetOf(o bitset) bool {
	return b.subsetOf(o) && o.count() > b.count()
}
