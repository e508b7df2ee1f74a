package sets

import (
	"cmp"
	"maps"
	"slices"
)

// Set is a simple generic hash set for comparable keys.
// Usage: s := sets.New[string]("a","b"); s.Add("c"); if s.Has("b") {...}
type Set[T comparable] map[T]struct{}

// New creates a set pre-populated with the provided values.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts value into the set.
func (s Set[T]) Add(v T) { s[v] = struct{}{} }

// Has returns true if v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Delete removes v if present.
func (s Set[T]) Delete(v T) { delete(s, v) }

// Sorted returns the members in ascending order.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	return slices.Sorted(maps.Keys(s))
}

// Ordered is a set that remembers first-insertion order.
// The zero value is ready to use.
type Ordered[T comparable] struct {
	seen  Set[T]
	items []T
}

// NewOrdered creates an ordered set with the provided values.
func NewOrdered[T comparable](vals ...T) *Ordered[T] {
	o := &Ordered[T]{}
	o.Add(vals...)
	return o
}

// Add appends values not yet present. It reports whether anything was added.
func (o *Ordered[T]) Add(vals ...T) bool {
	if o.seen == nil {
		o.seen = New[T]()
	}
	added := false
	for _, v := range vals {
		if o.seen.Has(v) {
			continue
		}
		o.seen.Add(v)
		o.items = append(o.items, v)
		added = true
	}
	return added
}

// Merge adds every member of other, keeping other's order for new members.
func (o *Ordered[T]) Merge(other *Ordered[T]) {
	if other == nil {
		return
	}
	o.Add(other.items...)
}

// Has returns true if v is present.
func (o *Ordered[T]) Has(v T) bool { return o.seen.Has(v) }

// Len returns the number of members.
func (o *Ordered[T]) Len() int { return len(o.items) }

// Items returns a copy of the members in insertion order.
func (o *Ordered[T]) Items() []T { return slices.Clone(o.items) }
