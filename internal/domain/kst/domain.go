package kst

import (
	"errors"
	"fmt"
	"sort"
)

// Common construction errors
var (
	// ErrEmptyDomain is returned when a domain is created with no items.
	ErrEmptyDomain = errors.New("domain cannot be empty")

	// ErrDuplicateItem is returned when a domain contains the same item twice.
	ErrDuplicateItem = errors.New("domain items must be unique")

	// ErrEmptyItem is returned when a domain item is the empty string.
	ErrEmptyItem = errors.New("domain items cannot be empty strings")

	// ErrUnknownItem is returned when an item does not belong to the domain.
	ErrUnknownItem = errors.New("item does not belong to the domain")
)

// Domain is the finite set of items (questions) a knowledge structure is
// defined over. Items are ordered so that states can be represented as
// bitsets; the order is the insertion order of the item slice the domain
// was built from.
type Domain struct {
	items []string
	index map[string]int
}

// NewDomain creates a Domain from the given items.
// Items must be non-empty strings and pairwise distinct.
func NewDomain(items []string) (*Domain, error) {
	if len(items) == 0 {
		return nil, ErrEmptyDomain
	}

	d := &Domain{
		items: make([]string, len(items)),
		index: make(map[string]int, len(items)),
	}

	for i, item := range items {
		if item == "" {
			return nil, ErrEmptyItem
		}
		if _, exists := d.index[item]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateItem, item)
		}
		d.items[i] = item
		d.index[item] = i
	}

	return d, nil
}

// Size returns the number of items in the domain.
func (d *Domain) Size() int {
	return len(d.items)
}

// Items returns a copy of the domain's items in their canonical order.
func (d *Domain) Items() []string {
	out := make([]string, len(d.items))
	copy(out, d.items)
	return out
}

// Index returns the bit position of the given item.
// The second return value is false if the item is not in the domain.
func (d *Domain) Index(item string) (int, bool) {
	i, ok := d.index[item]
	return i, ok
}

// Contains reports whether the given item belongs to the domain.
func (d *Domain) Contains(item string) bool {
	_, ok := d.index[item]
	return ok
}

// Item returns the item at the given bit position.
// Positions outside [0, Size) panic, matching slice semantics.
func (d *Domain) Item(i int) string {
	return d.items[i]
}

// Empty returns the empty state over this domain.
func (d *Domain) Empty() State {
	return newState(len(d.items))
}

// Full returns the state containing every item of this domain.
func (d *Domain) Full() State {
	s := newState(len(d.items))
	for i := range d.items {
		s = s.With(i)
	}
	return s
}

// StateOf builds the state containing exactly the given items.
// Returns ErrUnknownItem if any item is not part of the domain.
func (d *Domain) StateOf(items ...string) (State, error) {
	s := newState(len(d.items))
	for _, item := range items {
		i, ok := d.index[item]
		if !ok {
			return State{}, fmt.Errorf("%w: %q", ErrUnknownItem, item)
		}
		s = s.With(i)
	}
	return s, nil
}

// ItemsOf decodes a state back into the items it contains,
// in canonical domain order.
func (d *Domain) ItemsOf(s State) []string {
	items := make([]string, 0, s.Card())
	for i := range d.items {
		if s.Test(i) {
			items = append(items, d.items[i])
		}
	}
	return items
}

// SortedItems returns the domain items in lexicographic order.
// Useful for stable output independent of insertion order.
func (d *Domain) SortedItems() []string {
	out := d.Items()
	sort.Strings(out)
	return out
}
