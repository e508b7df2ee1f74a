// Package render turns parsed page sections into HTML.
//
// A Registry maps directive names to capabilities. The Dispatcher looks up
// the capability for each section, substitutes page variables into the
// argument, and isolates failures so one broken section never aborts a page.
package render

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Arity declares which inputs a capability receives.
type Arity int

const (
	// TextOnly capabilities receive the section text.
	TextOnly Arity = iota + 1
	// TextAndArg capabilities receive the section text and its argument.
	TextAndArg
)

func (a Arity) String() string {
	switch a {
	case TextOnly:
		return "text"
	case TextAndArg:
		return "text+arg"
	default:
		return fmt.Sprintf("arity(%d)", int(a))
	}
}

// Func renders one section. TextOnly capabilities are always called with an empty arg.
type Func func(text, arg string) (string, error)

// Capability is a named rendering function with a fixed arity.
type Capability struct {
	Name   string
	Arity  Arity
	Render Func
}

// SkipDirective passes the section text through unaltered. It cannot be registered.
const SkipDirective = "skip"

// Registry holds the capabilities available to a build.
type Registry struct {
	mu   sync.RWMutex
	caps map[string]Capability
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{caps: make(map[string]Capability)}
}

// Register adds a capability. Names must be unique.
func (r *Registry) Register(c Capability) error {
	switch {
	case c.Name == "":
		return fmt.Errorf("capability name is required")
	case c.Name == SkipDirective:
		return fmt.Errorf("directive %q is reserved", SkipDirective)
	case c.Render == nil:
		return fmt.Errorf("capability %s has no render function", c.Name)
	case c.Arity != TextOnly && c.Arity != TextAndArg:
		return fmt.Errorf("capability %s has invalid %s", c.Name, c.Arity)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.caps[c.Name]; exists {
		return fmt.Errorf("capability %s already registered", c.Name)
	}
	r.caps[c.Name] = c
	return nil
}

// Lookup returns the capability registered under name.
func (r *Registry) Lookup(name string) (Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[name]
	return c, ok
}

// Names lists the registered directive names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.caps))
}
