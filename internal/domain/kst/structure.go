package kst

import (
	"errors"
	"sort"
	"strings"
)

// Structure construction errors
var (
	// ErrNilFamily is returned when a structure is built from a nil family.
	ErrNilFamily = errors.New("state family cannot be nil")

	// ErrMissingBoundStates is returned when the family lacks the empty
	// state or the full domain, the minimal axioms of a knowledge structure.
	ErrMissingBoundStates = errors.New(
		"state family must contain the empty state and the full domain",
	)
)

// Kind classifies a knowledge structure by the axioms its state family
// satisfies.
type Kind string

const (
	// KindStructure is a plain knowledge structure: the family contains
	// the empty state and the full domain, nothing more is guaranteed.
	KindStructure Kind = "structure"

	// KindSpace is a knowledge space: the family is union-closed.
	KindSpace Kind = "space"

	// KindLearningSpace is a learning space: a well-graded knowledge space,
	// equivalently an antimatroid.
	KindLearningSpace Kind = "learning_space"
)

// IsValidKind reports whether the given string names a known structure kind.
func IsValidKind(k Kind) bool {
	switch k {
	case KindStructure, KindSpace, KindLearningSpace:
		return true
	}
	return false
}

// Structure is a validated knowledge structure: a domain Q together with a
// family of knowledge states that contains at least the empty state and Q
// itself. A Structure is immutable after construction.
type Structure struct {
	dom    *Domain
	family *Family
	kind   Kind
}

// NewStructure builds a knowledge structure from a list of items and a list
// of states given as item slices. The family is validated against the
// minimal axioms and classified.
func NewStructure(items []string, states [][]string) (*Structure, error) {
	dom, err := NewDomain(items)
	if err != nil {
		return nil, err
	}

	family := NewFamily(dom)
	for _, st := range states {
		s, err := dom.StateOf(st...)
		if err != nil {
			return nil, err
		}
		family.Add(s)
	}

	return FromFamily(dom, family)
}

// FromFamily builds and classifies a knowledge structure from an existing
// family. The family must contain the empty state and the full domain.
func FromFamily(dom *Domain, family *Family) (*Structure, error) {
	if family == nil {
		return nil, ErrNilFamily
	}
	if !family.Contains(dom.Empty()) || !family.Contains(dom.Full()) {
		return nil, ErrMissingBoundStates
	}

	s := &Structure{
		dom:    dom,
		family: family.Clone(),
	}
	s.kind = classify(s.family)
	return s, nil
}

// Trivial returns the trivial knowledge structure (Q, {∅, Q}) over the
// given items. The trivial structure is always a learning space.
func Trivial(items []string) (*Structure, error) {
	dom, err := NewDomain(items)
	if err != nil {
		return nil, err
	}
	family := NewFamily(dom)
	family.Add(dom.Empty())
	family.Add(dom.Full())
	return FromFamily(dom, family)
}

// classify determines the strongest kind the family satisfies.
func classify(f *Family) Kind {
	if !IsUnionClosed(f) {
		return KindStructure
	}
	if IsWellGraded(f) {
		return KindLearningSpace
	}
	return KindSpace
}

// Domain returns the structure's domain.
func (s *Structure) Domain() *Domain {
	return s.dom
}

// Family returns a copy of the structure's state family.
func (s *Structure) Family() *Family {
	return s.family.Clone()
}

// Kind returns the structure's classification.
func (s *Structure) Kind() Kind {
	return s.kind
}

// States returns the structure's states in canonical order.
func (s *Structure) States() []State {
	return s.family.States()
}

// StatesWith returns the states containing the given item.
func (s *Structure) StatesWith(item string) ([]State, error) {
	i, ok := s.dom.Index(item)
	if !ok {
		return nil, ErrUnknownItem
	}
	return s.family.StatesWith(i), nil
}

// StatesWithout returns the states not containing the given item.
func (s *Structure) StatesWithout(item string) ([]State, error) {
	i, ok := s.dom.Index(item)
	if !ok {
		return nil, ErrUnknownItem
	}
	return s.family.StatesWithout(i), nil
}

// Notion returns the notion of the given item: the set of all items that
// appear in exactly the same states.
func (s *Structure) Notion(item string) (State, error) {
	i, ok := s.dom.Index(item)
	if !ok {
		return State{}, ErrUnknownItem
	}
	return s.notionAt(i), nil
}

// notionAt computes the notion for a bit position.
func (s *Structure) notionAt(i int) State {
	notion := s.dom.Empty().With(i)
	for j := 0; j < s.dom.Size(); j++ {
		if j == i {
			continue
		}
		if s.sameStates(i, j) {
			notion = notion.With(j)
		}
	}
	return notion
}

// sameStates reports whether two bit positions occur in exactly the
// same member states.
func (s *Structure) sameStates(i, j int) bool {
	for _, k := range s.family.States() {
		if k.Test(i) != k.Test(j) {
			return false
		}
	}
	return true
}

// Notions returns the partition of the domain into notions,
// ordered by each notion's first item.
func (s *Structure) Notions() []State {
	seen := s.dom.Empty()
	var parts []State
	for i := 0; i < s.dom.Size(); i++ {
		if seen.Test(i) {
			continue
		}
		n := s.notionAt(i)
		seen = seen.Union(n)
		parts = append(parts, n)
	}
	return parts
}

// IsDiscriminative reports whether every notion is a singleton, i.e. no two
// distinct items are informationally indistinguishable.
func (s *Structure) IsDiscriminative() bool {
	for _, n := range s.Notions() {
		if n.Card() > 1 {
			return false
		}
	}
	return true
}

// DiscriminativeReduction collapses every notion into a single item and
// returns the resulting discriminative structure. Items in a notion are
// joined with "+" in lexicographic order, so the reduction of a
// discriminative structure is itself up to renaming nothing.
func (s *Structure) DiscriminativeReduction() (*Structure, error) {
	notions := s.Notions()

	// Map every original bit position to its reduced item name.
	reducedName := make([]string, s.dom.Size())
	reducedItems := make([]string, 0, len(notions))
	for _, n := range notions {
		members := s.dom.ItemsOf(n)
		sort.Strings(members)
		name := strings.Join(members, "+")
		reducedItems = append(reducedItems, name)
		for i := 0; i < s.dom.Size(); i++ {
			if n.Test(i) {
				reducedName[i] = name
			}
		}
	}

	reducedDom, err := NewDomain(reducedItems)
	if err != nil {
		return nil, err
	}

	reducedFamily := NewFamily(reducedDom)
	for _, k := range s.family.States() {
		rs := reducedDom.Empty()
		for i := 0; i < s.dom.Size(); i++ {
			if k.Test(i) {
				ri, _ := reducedDom.Index(reducedName[i])
				rs = rs.With(ri)
			}
		}
		reducedFamily.Add(rs)
	}

	return FromFamily(reducedDom, reducedFamily)
}

// AtomAt returns a minimal state containing the given item. States are
// scanned in canonical order, so ties between equal-cardinality minimal
// states resolve deterministically. An item can have several atoms; use
// AtomsAt to enumerate them all.
func (s *Structure) AtomAt(item string) (State, error) {
	i, ok := s.dom.Index(item)
	if !ok {
		return State{}, ErrUnknownItem
	}
	for _, k := range s.family.States() {
		if k.Test(i) {
			return k, nil
		}
	}
	// Unreachable for valid structures: the full domain contains every item.
	return State{}, ErrUnknownItem
}

// AtomsAt returns every atom at the given item: the inclusion-minimal
// member states containing it, in canonical order.
func (s *Structure) AtomsAt(item string) ([]State, error) {
	i, ok := s.dom.Index(item)
	if !ok {
		return nil, ErrUnknownItem
	}
	containing := s.family.StatesWith(i)
	var atoms []State
	for _, k := range containing {
		minimal := true
		for _, other := range containing {
			if !other.Equal(k) && other.SubsetOf(k) {
				minimal = false
				break
			}
		}
		if minimal {
			atoms = append(atoms, k)
		}
	}
	return atoms, nil
}

// Base returns the family of atoms: every inclusion-minimal state at each
// item of the domain. For a knowledge space this is the minimal spanning
// subfamily, i.e. Span(Base) regenerates the space.
func (s *Structure) Base() []State {
	base := NewFamily(s.dom)
	for _, item := range s.dom.Items() {
		atoms, err := s.AtomsAt(item)
		if err != nil {
			continue
		}
		for _, atom := range atoms {
			base.Add(atom)
		}
	}
	return base.States()
}

// SurmiseRelation derives the precedence relation on items: p precedes q
// when every state containing q also contains p, so mastery of q can be
// surmised to imply mastery of p. The result maps each item to its
// prerequisite items (excluding itself), lexicographically ordered.
func (s *Structure) SurmiseRelation() map[string][]string {
	out := make(map[string][]string, s.dom.Size())
	for qi, q := range s.dom.Items() {
		var prereqs []string
		for pi, p := range s.dom.Items() {
			if pi == qi {
				continue
			}
			if s.precedes(pi, qi) {
				prereqs = append(prereqs, p)
			}
		}
		sort.Strings(prereqs)
		out[q] = prereqs
	}
	return out
}

// precedes reports whether every member state containing bit q also
// contains bit p.
func (s *Structure) precedes(p, q int) bool {
	for _, k := range s.family.States() {
		if k.Test(q) && !k.Test(p) {
			return false
		}
	}
	return true
}
