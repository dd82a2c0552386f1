package kst

// IsUnionClosed reports whether the family is closed under set union:
// for any two member states their union is also a member. Pairwise closure
// implies closure under arbitrary unions for finite families.
func IsUnionClosed(f *Family) bool {
	states := f.States()
	for i := 0; i < len(states); i++ {
		for j := i + 1; j < len(states); j++ {
			if !f.Contains(states[i].Union(states[j])) {
				return false
			}
		}
	}
	return true
}

// IsWellGraded reports whether the family is well-graded: from every
// nonempty state some single item can be removed without leaving the family,
// and to every state short of the domain some single item can be added
// without leaving the family.
func IsWellGraded(f *Family) bool {
	full := f.dom.Full()
	n := f.dom.Size()

	for _, k := range f.States() {
		removable := k.IsEmpty()
		if !removable {
			for i := 0; i < n; i++ {
				if k.Test(i) && f.Contains(k.Without(i)) {
					removable = true
					break
				}
			}
		}
		if !removable {
			return false
		}

		addable := k.Equal(full)
		if !addable {
			for i := 0; i < n; i++ {
				if !k.Test(i) && f.Contains(k.With(i)) {
					addable = true
					break
				}
			}
		}
		if !addable {
			return false
		}
	}
	return true
}

// IsAntimatroid reports whether the family is an antimatroid: union-closed
// and downgradable, i.e. every nonempty member state has an item whose
// removal yields another member state (axiom [MA]).
func IsAntimatroid(f *Family) bool {
	if !IsUnionClosed(f) {
		return false
	}

	n := f.dom.Size()
	for _, k := range f.States() {
		if k.IsEmpty() {
			continue
		}
		removable := false
		for i := 0; i < n; i++ {
			if k.Test(i) && f.Contains(k.Without(i)) {
				removable = true
				break
			}
		}
		if !removable {
			return false
		}
	}
	return true
}

// Span returns the union closure of the family: the smallest union-closed
// family containing every member. The empty state is added if missing, so
// the result is always the state family of a knowledge space over f's domain
// once the full domain is a member.
func Span(f *Family) *Family {
	out := f.Clone()
	out.Add(f.dom.Empty())

	// Fixed point: repeatedly union members until nothing new appears.
	for {
		states := out.States()
		added := false
		for i := 0; i < len(states); i++ {
			for j := i + 1; j < len(states); j++ {
				u := states[i].Union(states[j])
				if !out.Contains(u) {
					out.Add(u)
					added = true
				}
			}
		}
		if !added {
			return out
		}
	}
}

// InnerFringe returns the items that can be removed from the state one at a
// time while staying inside the family.
func InnerFringe(f *Family, k State) State {
	fringe := f.dom.Empty()
	for i := 0; i < f.dom.Size(); i++ {
		if k.Test(i) && f.Contains(k.Without(i)) {
			fringe = fringe.With(i)
		}
	}
	return fringe
}

// OuterFringe returns the items that can be added to the state one at a
// time while staying inside the family.
func OuterFringe(f *Family, k State) State {
	fringe := f.dom.Empty()
	for i := 0; i < f.dom.Size(); i++ {
		if !k.Test(i) && f.Contains(k.With(i)) {
			fringe = fringe.With(i)
		}
	}
	return fringe
}
