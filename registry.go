package treewire

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Registry maps tag names to component values for the lifetime of its
// owning Transformer. Registration is expected to happen once at start-up;
// lookups are read-mostly and guarded accordingly.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Component
	patterns   *PatternRegistry
	logger     *slog.Logger
}

func newRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		components: make(map[string]Component),
		patterns:   newPatternRegistry(logger),
		logger:     logger,
	}
}

// Register validates and inserts a component. A component with an empty
// tag name or version is rejected with ErrRegistration. Registering a tag
// that already exists succeeds - the new registration wins - but logs a
// warning; it is never silently ignored.
//
// If the component implements PatternProvider, its markup patterns are
// registered immediately.
func (r *Registry) Register(comp Component) error {
	if comp == nil {
		return fmt.Errorf("%w: nil component", ErrRegistration)
	}
	tag := comp.TagName()
	if tag == "" {
		return fmt.Errorf("%w: %T has an empty tag name", ErrRegistration, comp)
	}
	if comp.Version() == "" {
		return fmt.Errorf("%w: %q has an empty version", ErrRegistration, tag)
	}
	if tag == FallbackTag {
		return fmt.Errorf("%w: %q is reserved", ErrRegistration, tag)
	}

	r.mu.Lock()
	if _, exists := r.components[tag]; exists {
		r.logger.Warn("overwriting component registration", "tag", tag)
	}
	r.components[tag] = comp
	r.mu.Unlock()

	if pp, ok := comp.(PatternProvider); ok {
		pp.RegisterPatternHandlers(r.patterns)
	}
	return nil
}

// Resolve looks up a component by tag name.
func (r *Registry) Resolve(tag string) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[tag]
	return c, ok
}

// List returns the registered tag names, sorted for determinism.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.components))
	for tag := range r.components {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Patterns returns the pattern registry that shares this registry's scope.
func (r *Registry) Patterns() *PatternRegistry {
	return r.patterns
}

// Clear wipes both the component map and the pattern map, resetting the
// scope for an independent serialization session.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.components = make(map[string]Component)
	r.mu.Unlock()
	r.patterns.clear()
}
