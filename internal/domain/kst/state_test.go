package kst

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateSetOperations(t *testing.T) {
	t.Parallel()

	dom, err := NewDomain([]string{"a", "b", "c", "d"})
	require.NoError(t, err)

	ab, err := dom.StateOf("a", "b")
	require.NoError(t, err)
	bc, err := dom.StateOf("b", "c")
	require.NoError(t, err)

	assert.Equal(t, 2, ab.Card())
	assert.Equal(t, []string{"a", "b", "c"}, dom.ItemsOf(ab.Union(bc)))
	assert.Equal(t, []string{"b"}, dom.ItemsOf(ab.Intersect(bc)))
	assert.Equal(t, []string{"a"}, dom.ItemsOf(ab.Minus(bc)))
	assert.Equal(t, 2, ab.Distance(bc))

	assert.True(t, ab.SubsetOf(dom.Full()))
	assert.False(t, dom.Full().SubsetOf(ab))
	assert.True(t, dom.Empty().SubsetOf(ab))
	assert.True(t, dom.Empty().IsEmpty())

	// Operations never mutate their receiver.
	i, _ := dom.Index("c")
	_ = ab.With(i)
	assert.Equal(t, []string{"a", "b"}, dom.ItemsOf(ab))
}

func TestStateAcrossWordBoundary(t *testing.T) {
	t.Parallel()

	// A domain of 70 items forces the bitset into a second word.
	items := make([]string, 70)
	for i := range items {
		items[i] = fmt.Sprintf("q%02d", i)
	}
	dom, err := NewDomain(items)
	require.NoError(t, err)

	s, err := dom.StateOf("q00", "q63", "q64", "q69")
	require.NoError(t, err)

	assert.Equal(t, 4, s.Card())
	assert.Equal(t, 70, dom.Full().Card())
	assert.True(t, s.SubsetOf(dom.Full()))

	hi, _ := dom.Index("q69")
	assert.True(t, s.Test(hi))
	assert.False(t, s.Without(hi).Test(hi))
	assert.Equal(t, 3, s.Without(hi).Card())
}

func TestDomainValidation(t *testing.T) {
	t.Parallel()

	_, err := NewDomain(nil)
	assert.ErrorIs(t, err, ErrEmptyDomain)

	_, err = NewDomain([]string{"a", ""})
	assert.ErrorIs(t, err, ErrEmptyItem)

	_, err = NewDomain([]string{"a", "b", "a"})
	assert.ErrorIs(t, err, ErrDuplicateItem)

	dom, err := NewDomain([]string{"b", "a"})
	require.NoError(t, err)

	// Canonical order is insertion order; SortedItems is lexicographic.
	assert.Equal(t, []string{"b", "a"}, dom.Items())
	assert.Equal(t, []string{"a", "b"}, dom.SortedItems())

	_, err = dom.StateOf("z")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestFamilyDeduplicatesAndOrders(t *testing.T) {
	t.Parallel()

	dom, err := NewDomain([]string{"a", "b"})
	require.NoError(t, err)

	f := NewFamily(dom)
	a, _ := dom.StateOf("a")
	f.Add(a)
	f.Add(a)
	f.Add(dom.Full())
	f.Add(dom.Empty())

	assert.Equal(t, 3, f.Len())

	states := f.States()
	require.Len(t, states, 3)
	assert.Equal(t, 0, states[0].Card())
	assert.Equal(t, 1, states[1].Card())
	assert.Equal(t, 2, states[2].Card())
}
