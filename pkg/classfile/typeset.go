package classfile

import (
	"maps"
	"slices"
)

// TypeSet is a set of internal type names.
type TypeSet map[string]struct{}

// NewTypeSet returns a set holding names.
func NewTypeSet(names ...string) TypeSet {
	s := make(TypeSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

func (s TypeSet) Add(name string) { s[name] = struct{}{} }

func (s TypeSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Merge adds every name of other to s.
func (s TypeSet) Merge(other TypeSet) {
	for n := range other {
		s[n] = struct{}{}
	}
}

// Intersects reports whether s and other share at least one name.
func (s TypeSet) Intersects(other TypeSet) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for n := range small {
		if _, ok := large[n]; ok {
			return true
		}
	}
	return false
}

func (s TypeSet) Len() int { return len(s) }

// Sorted returns the names in lexical order.
func (s TypeSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}
