package kst

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// splitStates turns compact state specs like "ac" into item slices,
// one letter per item.
func splitStates(specs ...string) [][]string {
	out := make([][]string, 0, len(specs))
	for _, spec := range specs {
		out = append(out, strings.Split(spec, ""))
	}
	return out
}

// referenceStructure is the non-discriminative structure over {a..f} used
// throughout: b only ever occurs with a and c, and e only with f.
func referenceStructure(t *testing.T) *Structure {
	t.Helper()
	s, err := NewStructure(
		strings.Split("abcdef", ""),
		append(
			splitStates("d", "ac", "ef", "abc", "acd", "def", "abcd", "acef", "acdef", "abcdef"),
			nil, // empty state
		),
	)
	require.NoError(t, err)
	return s
}

func TestNewStructureValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		items   []string
		states  [][]string
		wantErr error
	}{
		{
			name:    "empty domain rejected",
			items:   nil,
			states:  [][]string{nil},
			wantErr: ErrEmptyDomain,
		},
		{
			name:    "duplicate items rejected",
			items:   []string{"a", "a"},
			states:  [][]string{nil, {"a"}},
			wantErr: ErrDuplicateItem,
		},
		{
			name:    "state outside domain rejected",
			items:   []string{"a", "b"},
			states:  [][]string{nil, {"a", "b"}, {"z"}},
			wantErr: ErrUnknownItem,
		},
		{
			name:    "missing empty state rejected",
			items:   []string{"a", "b"},
			states:  [][]string{{"a"}, {"a", "b"}},
			wantErr: ErrMissingBoundStates,
		},
		{
			name:    "missing full domain rejected",
			items:   []string{"a", "b"},
			states:  [][]string{nil, {"a"}},
			wantErr: ErrMissingBoundStates,
		},
		{
			name:   "minimal valid structure accepted",
			items:  []string{"a", "b"},
			states: [][]string{nil, {"a", "b"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s, err := NewStructure(tc.items, tc.states)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestTrivialIsLearningSpace(t *testing.T) {
	t.Parallel()

	s, err := Trivial([]string{"x", "y", "z"})
	require.NoError(t, err)

	// {∅, Q} is union-closed, and over a single notion it is well-graded
	// only when |Q| = 1; the trivial structure over several items is a space.
	assert.Equal(t, KindSpace, s.Kind())

	single, err := Trivial([]string{"x"})
	require.NoError(t, err)
	assert.Equal(t, KindLearningSpace, single.Kind())
}

func TestClassifyKinds(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		items  string
		states []string
		want   Kind
	}{
		{
			name:   "chain is a learning space",
			items:  "ab",
			states: []string{"a", "ab"},
			want:   KindLearningSpace,
		},
		{
			name:   "powerset is a learning space",
			items:  "ab",
			states: []string{"a", "b", "ab"},
			want:   KindLearningSpace,
		},
		{
			name:  "union closed but not well graded is a space",
			items: "ab",
			// {∅, {a,b}} over two items: no singleton steps exist.
			states: []string{"ab"},
			want:   KindSpace,
		},
		{
			name:  "not union closed is a plain structure",
			items: "abc",
			// {a} ∪ {b} = {a,b} missing.
			states: []string{"a", "b", "abc"},
			want:   KindStructure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s, err := NewStructure(
				strings.Split(tc.items, ""),
				append(splitStates(tc.states...), nil),
			)
			require.NoError(t, err)
			assert.Equal(t, tc.want, s.Kind())
		})
	}
}

func TestReferenceStructureAnalysis(t *testing.T) {
	t.Parallel()
	s := referenceStructure(t)

	// abc and ef are states but their union abcef is not, so the family is
	// not union-closed and the structure stays a plain knowledge structure.
	assert.Equal(t, KindStructure, s.Kind())
	assert.False(t, s.IsDiscriminative())

	// b never occurs without a and c, and a, c always co-occur.
	notion, err := s.Notion("a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "c"}, s.Domain().ItemsOf(notion))

	notion, err = s.Notion("e")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"e", "f"}, s.Domain().ItemsOf(notion))

	notion, err = s.Notion("d")
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, s.Domain().ItemsOf(notion))

	_, err = s.Notion("zzz")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestNotionsPartitionDomain(t *testing.T) {
	t.Parallel()
	s := referenceStructure(t)

	parts := s.Notions()

	covered := s.Domain().Empty()
	total := 0
	for _, p := range parts {
		assert.True(t, covered.Intersect(p).IsEmpty(), "notions must be disjoint")
		covered = covered.Union(p)
		total += p.Card()
	}
	assert.Equal(t, s.Domain().Size(), total)
	assert.True(t, covered.Equal(s.Domain().Full()))
}

func TestDiscriminativeReduction(t *testing.T) {
	t.Parallel()
	s := referenceStructure(t)

	reduced, err := s.DiscriminativeReduction()
	require.NoError(t, err)

	// {a,c} and {e,f} each collapse into one item; b, d stay singletons.
	items := reduced.Domain().Items()
	sort.Strings(items)
	assert.Equal(t, []string{"a+c", "b", "d", "e+f"}, items)

	assert.True(t, reduced.IsDiscriminative())
	assert.Equal(t, 11, reduced.Family().Len())

	// Reducing an already discriminative structure changes nothing.
	again, err := reduced.DiscriminativeReduction()
	require.NoError(t, err)
	assert.Equal(t, reduced.Format(), again.Format())
}

func TestAtomsAndBase(t *testing.T) {
	t.Parallel()
	s := referenceStructure(t)

	atom, err := s.AtomAt("d")
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, s.Domain().ItemsOf(atom))

	atom, err = s.AtomAt("b")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, s.Domain().ItemsOf(atom))

	_, err = s.AtomAt("nope")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestAtomsAtMultipleAtoms(t *testing.T) {
	t.Parallel()

	// c has two atoms, {a,c} and {b,c}: neither contains the other and no
	// smaller state holds c.
	s, err := NewStructure(
		strings.Split("abc", ""),
		append(splitStates("a", "b", "ab", "ac", "bc", "abc"), nil),
	)
	require.NoError(t, err)

	atoms, err := s.AtomsAt("c")
	require.NoError(t, err)
	require.Len(t, atoms, 2)
	formatted := []string{s.FormatState(atoms[0]), s.FormatState(atoms[1])}
	assert.ElementsMatch(t, []string{"a,c", "b,c"}, formatted)

	atoms, err = s.AtomsAt("a")
	require.NoError(t, err)
	require.Len(t, atoms, 1)
	assert.Equal(t, []string{"a"}, s.Domain().ItemsOf(atoms[0]))

	_, err = s.AtomsAt("nope")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestBaseSpansSpace(t *testing.T) {
	t.Parallel()

	// Close the reference family under union to obtain a knowledge space,
	// then check that the base regenerates it.
	ref := referenceStructure(t)
	space, err := FromFamily(ref.Domain(), Span(ref.Family()))
	require.NoError(t, err)
	require.NotEqual(t, KindStructure, space.Kind())

	base := NewFamily(space.Domain())
	for _, k := range space.Base() {
		base.Add(k)
	}

	span := Span(base)
	assert.Equal(t, space.Family().Len(), span.Len())
	for _, k := range space.States() {
		assert.True(t, span.Contains(k), "span of base must contain state %q", space.FormatState(k))
	}
}

func TestBaseSpansSpaceWithSiblingAtoms(t *testing.T) {
	t.Parallel()

	// A space where c has two atoms: both must survive into the base or the
	// span loses a state.
	space, err := NewStructure(
		strings.Split("abc", ""),
		append(splitStates("a", "b", "ab", "ac", "bc", "abc"), nil),
	)
	require.NoError(t, err)
	require.Equal(t, KindLearningSpace, space.Kind())

	base := NewFamily(space.Domain())
	for _, k := range space.Base() {
		base.Add(k)
	}

	span := Span(base)
	assert.Equal(t, space.Family().Len(), span.Len())
	for _, k := range space.States() {
		assert.True(t, span.Contains(k), "span of base must contain state %q", space.FormatState(k))
	}
}

func TestSurmiseRelation(t *testing.T) {
	t.Parallel()
	s := referenceStructure(t)

	rel := s.SurmiseRelation()

	// Every state containing b also contains a and c.
	assert.Equal(t, []string{"a", "c"}, rel["b"])

	// d is an atom: nothing precedes it.
	assert.Empty(t, rel["d"])

	// a and c precede each other (same notion).
	assert.Contains(t, rel["a"], "c")
	assert.Contains(t, rel["c"], "a")
}

func TestStatesWithAndWithout(t *testing.T) {
	t.Parallel()
	s := referenceStructure(t)

	with, err := s.StatesWith("d")
	require.NoError(t, err)
	without, err := s.StatesWithout("d")
	require.NoError(t, err)

	assert.Equal(t, s.Family().Len(), len(with)+len(without))
	for _, k := range with {
		i, _ := s.Domain().Index("d")
		assert.True(t, k.Test(i))
	}
}
