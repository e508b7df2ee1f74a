// Package normalization maps loosely written config values onto typed enums.
package normalization

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Enum maps case-insensitive spellings, aliases included, onto values of T.
type Enum[T comparable] struct {
	name     string
	values   map[string]T
	fallback T
	names    []string
}

// NewEnum builds an Enum called name. Empty input resolves to fallback.
func NewEnum[T comparable](name string, values map[string]T, fallback T) *Enum[T] {
	folded := make(map[string]T, len(values))
	for k, v := range values {
		folded[fold(k)] = v
	}
	return &Enum[T]{
		name:     name,
		values:   folded,
		fallback: fallback,
		names:    slices.Sorted(maps.Keys(folded)),
	}
}

// Lookup resolves raw, returning the fallback for anything unknown.
func (e *Enum[T]) Lookup(raw string) T {
	if v, ok := e.values[fold(raw)]; ok {
		return v
	}
	return e.fallback
}

// Parse resolves raw and rejects unknown spellings with a validation error
// listing the accepted ones.
func (e *Enum[T]) Parse(raw string) (T, error) {
	key := fold(raw)
	if key == "" {
		return e.fallback, nil
	}
	if v, ok := e.values[key]; ok {
		return v, nil
	}
	var zero T
	accepted := strings.Join(e.names, ", ")
	return zero, errors.ValidationError(fmt.Sprintf("invalid %s %q (accepted: %s)", e.name, raw, accepted)).
		WithContext("value", raw).
		WithContext("accepted", accepted).
		Build()
}

// Names returns the accepted spellings, sorted.
func (e *Enum[T]) Names() []string {
	return slices.Clone(e.names)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
