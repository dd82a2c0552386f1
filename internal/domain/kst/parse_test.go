package kst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	s, err := Parse("A\nB\nA,B\nA,C\nB,C\nA,B,C")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"A", "B", "C"}, s.Domain().Items())

	// Five explicit states plus the implied empty state.
	assert.Equal(t, 7, s.Family().Len())
	assert.True(t, s.Family().Contains(s.Domain().Empty()))

	// This family is a learning space (matches the original doctest).
	assert.Equal(t, KindLearningSpace, s.Kind())
}

func TestParseIgnoresSpacesAndBlankLines(t *testing.T) {
	t.Parallel()

	s, err := Parse("a , b\n\n a \r\nb\na,b\n")
	require.NoError(t, err)

	assert.Equal(t, 2, s.Domain().Size())
	assert.Equal(t, 4, s.Family().Len()) // ∅, a, b, ab
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	_, err := Parse("")
	assert.ErrorIs(t, err, ErrNoStates)

	_, err = Parse("   \n  \n")
	assert.ErrorIs(t, err, ErrNoStates)

	// The full domain must appear as a state.
	_, err = Parse("a\nb")
	assert.ErrorIs(t, err, ErrMissingBoundStates)
}

func TestFormatRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := Parse("a\nb\na,b\na,c\nb,c\na,b,c")
	require.NoError(t, err)

	text := s.Format()
	back, err := Parse(text)
	require.NoError(t, err)

	assert.Equal(t, s.Family().Len(), back.Family().Len())
	assert.Equal(t, text, back.Format())
	assert.Equal(t, s.Kind(), back.Kind())
}

func TestFormatState(t *testing.T) {
	t.Parallel()

	s, err := Parse("b\na\na,b")
	require.NoError(t, err)

	full := s.Domain().Full()
	assert.Equal(t, "a,b", s.FormatState(full))
	assert.Equal(t, "", s.FormatState(s.Domain().Empty()))
}
