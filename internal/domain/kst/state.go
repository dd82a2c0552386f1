package kst

import (
	"math/bits"
	"strings"
)

const wordBits = 64

// State is a knowledge state: a subset of a Domain, stored as a bitset.
// The zero value is not usable; states are created through a Domain
// (Empty, Full, StateOf) or derived from existing states. All operations
// return new values; a State is never mutated in place.
type State struct {
	words []uint64
}

// newState allocates an empty state sized for a domain of n items.
func newState(n int) State {
	return State{words: make([]uint64, (n+wordBits-1)/wordBits)}
}

// clone returns an independent copy of the state.
func (s State) clone() State {
	w := make([]uint64, len(s.words))
	copy(w, s.words)
	return State{words: w}
}

// Test reports whether bit position i is set.
func (s State) Test(i int) bool {
	w := i / wordBits
	if w >= len(s.words) {
		return false
	}
	return s.words[w]&(1<<(uint(i)%wordBits)) != 0
}

// With returns a copy of the state with bit position i set.
func (s State) With(i int) State {
	out := s.clone()
	out.words[i/wordBits] |= 1 << (uint(i) % wordBits)
	return out
}

// Without returns a copy of the state with bit position i cleared.
func (s State) Without(i int) State {
	out := s.clone()
	out.words[i/wordBits] &^= 1 << (uint(i) % wordBits)
	return out
}

// Union returns the set union of two states over the same domain.
func (s State) Union(t State) State {
	out := s.clone()
	for i := range t.words {
		out.words[i] |= t.words[i]
	}
	return out
}

// Intersect returns the set intersection of two states over the same domain.
func (s State) Intersect(t State) State {
	out := s.clone()
	for i := range out.words {
		out.words[i] &= t.words[i]
	}
	return out
}

// Minus returns the set difference s \ t.
func (s State) Minus(t State) State {
	out := s.clone()
	for i := range out.words {
		out.words[i] &^= t.words[i]
	}
	return out
}

// Card returns the cardinality of the state.
func (s State) Card() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Distance returns the symmetric-difference distance between two states,
// i.e. the number of items in exactly one of them.
func (s State) Distance(t State) int {
	n := 0
	for i := range s.words {
		n += bits.OnesCount64(s.words[i] ^ t.words[i])
	}
	return n
}

// SubsetOf reports whether s is a subset of t.
func (s State) SubsetOf(t State) bool {
	for i := range s.words {
		if s.words[i]&^t.words[i] != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether the two states contain exactly the same items.
func (s State) Equal(t State) bool {
	if len(s.words) != len(t.words) {
		return false
	}
	for i := range s.words {
		if s.words[i] != t.words[i] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the state contains no items.
func (s State) IsEmpty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// key returns a canonical representation usable as a map key.
// Two states over the same domain have equal keys iff they are Equal.
func (s State) key() string {
	var b strings.Builder
	b.Grow(len(s.words) * 8)
	for _, w := range s.words {
		for shift := 0; shift < wordBits; shift += 8 {
			b.WriteByte(byte(w >> uint(shift)))
		}
	}
	return b.String()
}
