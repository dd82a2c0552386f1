package kst

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// familyOf builds a family over the given single-letter items from compact
// state specs; the empty state is always included.
func familyOf(t *testing.T, items string, specs ...string) *Family {
	t.Helper()
	dom, err := NewDomain(strings.Split(items, ""))
	require.NoError(t, err)

	f := NewFamily(dom)
	f.Add(dom.Empty())
	for _, spec := range specs {
		s, err := dom.StateOf(strings.Split(spec, "")...)
		require.NoError(t, err)
		f.Add(s)
	}
	return f
}

func TestIsUnionClosed(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		items  string
		states []string
		want   bool
	}{
		{
			name:   "powerset is union closed",
			items:  "ab",
			states: []string{"a", "b", "ab"},
			want:   true,
		},
		{
			name:   "chain is union closed",
			items:  "abc",
			states: []string{"a", "ab", "abc"},
			want:   true,
		},
		{
			name:   "missing pairwise union",
			items:  "abc",
			states: []string{"a", "b", "abc"},
			want:   false,
		},
		{
			name:   "reference family is not union closed",
			items:  "abcdef",
			states: []string{"d", "ac", "ef", "abc", "acd", "def", "abcd", "acef", "acdef", "abcdef"},
			want:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := familyOf(t, tc.items, tc.states...)
			assert.Equal(t, tc.want, IsUnionClosed(f))
		})
	}
}

func TestIsWellGraded(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		items  string
		states []string
		want   bool
	}{
		{
			name:   "learning path family is well graded",
			items:  "abc",
			states: []string{"a", "b", "ab", "ac", "bc", "abc"},
			want:   true,
		},
		{
			name:   "two item gap is not well graded",
			items:  "ab",
			states: []string{"ab"},
			want:   false,
		},
		{
			name:   "isolated state is not well graded",
			items:  "abc",
			states: []string{"a", "bc", "abc"},
			want:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := familyOf(t, tc.items, tc.states...)
			assert.Equal(t, tc.want, IsWellGraded(f))
		})
	}
}

func TestIsAntimatroid(t *testing.T) {
	t.Parallel()

	// Union-closed and downgradable.
	good := familyOf(t, "ab", "a", "b", "ab")
	assert.True(t, IsAntimatroid(good))

	// Union-closed but {a,b} cannot lose a single item.
	gap := familyOf(t, "ab", "ab")
	assert.False(t, IsAntimatroid(gap))

	// Downgradable but not union-closed.
	open := familyOf(t, "abc", "a", "b", "ab", "abc")
	assert.False(t, IsUnionClosed(open))
	assert.False(t, IsAntimatroid(open))
}

func TestSpanIsLeastUnionClosedSuperfamily(t *testing.T) {
	t.Parallel()

	f := familyOf(t, "abc", "a", "b", "abc")
	span := Span(f)

	assert.True(t, IsUnionClosed(span))

	// Original members survive.
	for _, s := range f.States() {
		assert.True(t, span.Contains(s))
	}

	// Exactly {∅, a, b, ab, abc}: only the missing union is added.
	assert.Equal(t, f.Len()+1, span.Len())

	dom := f.Domain()
	ab, err := dom.StateOf("a", "b")
	require.NoError(t, err)
	assert.True(t, span.Contains(ab))

	// Idempotent.
	assert.Equal(t, span.Len(), Span(span).Len())
}

func TestFringes(t *testing.T) {
	t.Parallel()

	f := familyOf(t, "abc", "a", "ab", "ac", "abc")
	dom := f.Domain()

	a, err := dom.StateOf("a")
	require.NoError(t, err)

	// From {a}: removing a reaches ∅; adding b or c stays inside.
	assert.Equal(t, []string{"a"}, dom.ItemsOf(InnerFringe(f, a)))
	assert.ElementsMatch(t, []string{"b", "c"}, dom.ItemsOf(OuterFringe(f, a)))

	ab, err := dom.StateOf("a", "b")
	require.NoError(t, err)

	// From {a,b}: b is removable (to {a}), a is not ({b} missing);
	// c is addable (to {a,b,c}).
	assert.Equal(t, []string{"b"}, dom.ItemsOf(InnerFringe(f, ab)))
	assert.Equal(t, []string{"c"}, dom.ItemsOf(OuterFringe(f, ab)))

	full := dom.Full()
	assert.True(t, OuterFringe(f, full).IsEmpty())
}
