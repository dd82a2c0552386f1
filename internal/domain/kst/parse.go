package kst

import (
	"errors"
	"sort"
	"strings"
)

// ErrNoStates is returned when the parsed text defines no states at all.
var ErrNoStates = errors.New("no states found in input")

// Parse builds a knowledge structure from its text form. Each non-blank line
// defines one state as a comma-separated list of items; spaces are ignored.
// The domain is the union of all parsed states, the empty state is implied,
// and the full domain must appear as one of the lines.
//
// Example:
//
//	a
//	b
//	a,c
//	b,c
//	a,b,c
func Parse(text string) (*Structure, error) {
	text = strings.ReplaceAll(text, " ", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	seen := make(map[string]bool)
	var items []string
	var states [][]string

	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		var state []string
		stateSeen := make(map[string]bool)
		for _, item := range strings.Split(line, ",") {
			if item == "" {
				continue
			}
			if !stateSeen[item] {
				stateSeen[item] = true
				state = append(state, item)
			}
			if !seen[item] {
				seen[item] = true
				items = append(items, item)
			}
		}
		states = append(states, state)
	}

	if len(states) == 0 {
		return nil, ErrNoStates
	}

	// The empty state is implied rather than required in the input.
	states = append(states, nil)

	return NewStructure(items, states)
}

// Format renders the structure in the canonical text form accepted by Parse:
// one state per line in canonical family order, items comma-separated in
// lexicographic order, the empty state omitted.
func (s *Structure) Format() string {
	var lines []string
	for _, k := range s.family.States() {
		if k.IsEmpty() {
			continue
		}
		items := s.dom.ItemsOf(k)
		sort.Strings(items)
		lines = append(lines, strings.Join(items, ","))
	}
	return strings.Join(lines, "\n")
}

// FormatState renders a single state as a comma-separated item list in
// lexicographic order. The empty state renders as the empty string.
func (s *Structure) FormatState(k State) string {
	items := s.dom.ItemsOf(k)
	sort.Strings(items)
	return strings.Join(items, ",")
}
