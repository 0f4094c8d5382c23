package esp

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry is the process-wide table mapping provider names to
// implementations, plus the single "currently active" selection used by all
// dispatch sites. All methods are safe for concurrent use; mutations are
// last-write-wins.
//
// Persistence of configs and the active pointer is the caller's concern:
// each admin mutation is written to the settings store independently, so the
// in-memory state can diverge from storage if a settings write fails.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider under its descriptor name.
// Returns ErrDuplicateProvider on a case-insensitive name collision.
func (r *Registry) Register(p Provider) error {
	name := Normalize(p.Descriptor().Name)
	if name == "" {
		return ErrInvalidDescriptor
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateProvider, name)
	}
	r.providers[name] = p
	return nil
}

// Get returns the provider registered under name.
// Absence is a recoverable "not configured" condition, not an error.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[Normalize(name)]
	return p, ok
}

// Configure merges the given config into the named provider's config.
// Unknown names fail with ErrProviderNotFound.
func (r *Registry) Configure(name string, cfg Config) error {
	p, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q (registered: %s)", ErrProviderNotFound, Normalize(name), strings.Join(r.Names(), ", "))
	}
	p.Configure(cfg)
	return nil
}

// SetActive updates the active-provider pointer.
// Fails with ErrProviderNotFound for unregistered names, leaving the
// previous pointer unchanged.
func (r *Registry) SetActive(name string) error {
	normalized := Normalize(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[normalized]; !ok {
		return fmt.Errorf("%w: %q", ErrProviderNotFound, normalized)
	}
	r.active = normalized
	return nil
}

// Active returns the currently active provider, or ErrNoActiveProvider when
// none has been selected or the selected name is no longer registered.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.active == "" {
		return nil, ErrNoActiveProvider
	}
	p, ok := r.providers[r.active]
	if !ok {
		return nil, ErrNoActiveProvider
	}
	return p, nil
}

// ActiveName returns the active provider name, or empty when none is set.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Names returns the sorted list of registered provider names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
