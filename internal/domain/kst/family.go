package kst

import "sort"

// Family is a family of knowledge states over a single domain.
// Membership is by set equality: adding an equal state twice is a no-op.
type Family struct {
	dom     *Domain
	members map[string]State
}

// NewFamily creates an empty family over the given domain.
func NewFamily(dom *Domain) *Family {
	return &Family{
		dom:     dom,
		members: make(map[string]State),
	}
}

// Domain returns the domain the family's states are subsets of.
func (f *Family) Domain() *Domain {
	return f.dom
}

// Add inserts a state into the family.
func (f *Family) Add(s State) {
	f.members[s.key()] = s
}

// Contains reports whether an equal state is a member of the family.
func (f *Family) Contains(s State) bool {
	_, ok := f.members[s.key()]
	return ok
}

// Len returns the number of distinct states in the family.
func (f *Family) Len() int {
	return len(f.members)
}

// Clone returns an independent copy of the family.
func (f *Family) Clone() *Family {
	out := NewFamily(f.dom)
	for k, s := range f.members {
		out.members[k] = s
	}
	return out
}

// States returns all member states ordered by cardinality, ties broken by
// the bitset representation. The order is deterministic for a given family,
// which callers rely on for stable output and probability vectors.
func (f *Family) States() []State {
	out := make([]State, 0, len(f.members))
	for _, s := range f.members {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := out[i].Card(), out[j].Card()
		if ci != cj {
			return ci < cj
		}
		return out[i].key() < out[j].key()
	})
	return out
}

// StatesWith returns the member states containing the given bit position.
func (f *Family) StatesWith(i int) []State {
	var out []State
	for _, s := range f.States() {
		if s.Test(i) {
			out = append(out, s)
		}
	}
	return out
}

// StatesWithout returns the member states not containing the given bit position.
func (f *Family) StatesWithout(i int) []State {
	var out []State
	for _, s := range f.States() {
		if !s.Test(i) {
			out = append(out, s)
		}
	}
	return out
}
