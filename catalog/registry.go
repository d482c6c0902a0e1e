package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry is an in-process registration table implementing Catalog.
// Plugins register a loader under a namespace and name, typically from an
// init function or during application wiring. Registration order is
// preserved per namespace.
type Registry struct {
	mu         sync.RWMutex
	candidates map[string][]Candidate         // namespace -> candidates in registration order
	names      map[string]map[string]struct{} // namespace -> set of registered names
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		candidates: make(map[string][]Candidate),
		names:      make(map[string]map[string]struct{}),
	}
}

// Register adds a candidate loader under the given namespace and name.
// Names are unique within a namespace: registering the same name twice
// returns ErrDuplicateCandidate rather than silently replacing the loader.
func (r *Registry) Register(namespace, name string, loader Loader) error {
	if name == "" {
		return ErrEmptyName
	}
	if loader == nil {
		return fmt.Errorf("%w: %s/%s", ErrNilLoader, namespace, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.names[namespace]
	if !ok {
		set = make(map[string]struct{})
		r.names[namespace] = set
	}
	if _, exists := set[name]; exists {
		log.Error().Str("namespace", namespace).Str("candidate", name).Msg("attempted to register duplicate candidate")
		return fmt.Errorf("%w: %s/%s", ErrDuplicateCandidate, namespace, name)
	}

	set[name] = struct{}{}
	r.candidates[namespace] = append(r.candidates[namespace], Candidate{Name: name, Load: loader})
	log.Debug().Str("namespace", namespace).Str("candidate", name).Msg("candidate registered")
	return nil
}

// Namespaces returns the sorted list of namespaces with at least one
// registered candidate.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.candidates))
	for ns := range r.candidates {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the candidates registered under the namespace, in
// registration order. The returned slice is a copy; mutating it does not
// affect the registry. An unknown namespace yields an empty slice.
func (r *Registry) Resolve(_ context.Context, namespace string) ([]Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Candidate(nil), r.candidates[namespace]...), nil
}
