package extension

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/toolink/gantry/catalog"
)

// Manager loads the candidates of one namespace at construction and serves
// the resulting collection. The collection is immutable once New returns,
// so concurrent Map, Get and Names calls are safe without locking.
type Manager struct {
	id         string // log identity, not exposed in the API
	namespace  string
	propagate  bool
	extensions []*Extension
	byName     map[string]*Extension
}

// New resolves the namespace through the catalog and loads every candidate.
//
// A failure while loading or instantiating an individual candidate is
// isolated: it is logged, reported to the configured failure handler, and
// the candidate is dropped and loading continues, so one bad plugin does not
// prevent the others from loading. A panic inside a loader or factory is
// treated the same way as an error return. Resolution failures, by contrast,
// are fatal to construction, as is loading two candidates with the same name.
func New(ctx context.Context, cat catalog.Catalog, namespace string, opts ...Option) (*Manager, error) {
	o := defaultOptions()
	o.Apply(opts...)

	candidates, err := cat.Resolve(ctx, namespace)
	if err != nil {
		log.Error().Str("namespace", namespace).Err(err).Msg("failed to resolve namespace")
		return nil, fmt.Errorf("resolve namespace %s: %w", namespace, err)
	}

	m := &Manager{
		id:        uuid.NewString(),
		namespace: namespace,
		propagate: o.propagate,
		byName:    make(map[string]*Extension),
	}

	var selected map[string]struct{}
	if o.names != nil {
		selected = make(map[string]struct{}, len(o.names))
		for _, name := range o.names {
			selected[name] = struct{}{}
		}
	}

	for _, cand := range candidates {
		// Check the name before going any further so candidates we are not
		// going to use are never loaded at all.
		if selected != nil {
			if _, ok := selected[cand.Name]; !ok {
				log.Debug().Str("namespace", namespace).Str("candidate", cand.Name).Msg("candidate not requested, skipping without loading")
				continue
			}
		}

		ext, err := loadOne(cand, o)
		if err != nil {
			if o.loadErrFatal {
				log.Error().Str("namespace", namespace).Str("candidate", cand.Name).Err(err).Msg("failed to load candidate")
				return nil, fmt.Errorf("load %s from %s: %w", cand.Name, namespace, err)
			}
			log.Warn().Str("namespace", namespace).Str("candidate", cand.Name).Str("manager_id", m.id).Err(err).Msg("failed to load candidate, discarding")
			if o.onLoadFailure != nil {
				o.onLoadFailure(m, cand.Name, err)
			}
			continue
		}

		if o.check != nil && !o.check(ext) {
			log.Debug().Str("namespace", namespace).Str("extension", ext.Name).Msg("extension rejected by check func, discarding")
			continue
		}

		if _, exists := m.byName[ext.Name]; exists {
			log.Error().Str("namespace", namespace).Str("extension", ext.Name).Msg("two candidates loaded with the same name")
			return nil, fmt.Errorf("%w: %s/%s", ErrDuplicateName, namespace, ext.Name)
		}
		m.extensions = append(m.extensions, ext)
		m.byName[ext.Name] = ext
	}

	if o.nameOrder && o.names != nil {
		m.reorder(o.names)
	}

	log.Debug().Str("namespace", namespace).Str("manager_id", m.id).Strs("extensions", m.Names()).Msg("extension manager constructed")
	return m, nil
}

// loadOne loads a single candidate and, when configured, invokes the loaded
// plugin to produce the extension's Obj. A panic during either step is
// recovered and folded into the error return so it flows through the same
// discard path as an ordinary load failure.
func loadOne(cand catalog.Candidate, o *Options) (ext *Extension, err error) {
	defer func() {
		if r := recover(); r != nil {
			ext = nil
			err = fmt.Errorf("plugin panicked: %v", r)
		}
	}()

	if cand.Load == nil {
		return nil, catalog.ErrNilLoader
	}
	plugin, err := cand.Load()
	if err != nil {
		return nil, err
	}

	ext = &Extension{Name: cand.Name, Plugin: plugin}
	if o.invokeOnLoad {
		obj, err := Invoke(plugin, o.invokeArgs...)
		if err != nil {
			return nil, err
		}
		ext.Obj = obj
	}
	return ext, nil
}

// reorder sorts the collection to match the caller-supplied name order.
func (m *Manager) reorder(names []string) {
	rank := make(map[string]int, len(names))
	for i, name := range names {
		rank[name] = i
	}
	sort.SliceStable(m.extensions, func(i, j int) bool {
		return rank[m.extensions[i].Name] < rank[m.extensions[j].Name]
	})
}

// Namespace returns the namespace this manager was constructed for.
func (m *Manager) Namespace() string {
	return m.namespace
}

// Len returns the number of loaded extensions.
func (m *Manager) Len() int {
	return len(m.extensions)
}

// Names returns the names of all loaded extensions in collection order.
func (m *Manager) Names() []string {
	names := make([]string, len(m.extensions))
	for i, ext := range m.extensions {
		names[i] = ext.Name
	}
	return names
}

// Extensions returns the loaded extensions in collection order. The slice is
// a copy; the Extension records themselves are shared and immutable.
func (m *Manager) Extensions() []*Extension {
	return append([]*Extension(nil), m.extensions...)
}

// Get returns the extension with the given name, or ErrNotFound if no such
// candidate was successfully loaded. Repeated calls return the same record.
func (m *Manager) Get(name string) (*Extension, error) {
	if ext, ok := m.byName[name]; ok {
		return ext, nil
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, m.namespace, name)
}

// MapFunc is the function Map invokes once per extension.
type MapFunc func(ext *Extension, args ...any) (any, error)

// Map invokes fn for every loaded extension in collection order and returns
// the successful results in the same order; failed invocations contribute
// nothing to the result.
//
// By default an error from fn is logged with the extension's name and
// iteration continues, isolating one plugin's failure from the rest of the
// batch. With WithPropagateMapErrors the first error aborts the remaining
// iteration and is returned immediately.
func (m *Manager) Map(fn MapFunc, args ...any) ([]any, error) {
	return m.mapOver(m.extensions, fn, args...)
}

func (m *Manager) mapOver(exts []*Extension, fn MapFunc, args ...any) ([]any, error) {
	results := make([]any, 0, len(exts))
	for _, ext := range exts {
		res, err := fn(ext, args...)
		if err != nil {
			if m.propagate {
				return nil, err
			}
			log.Warn().Str("namespace", m.namespace).Str("extension", ext.Name).Str("manager_id", m.id).Err(err).Msg("map call failed for extension")
			continue
		}
		results = append(results, res)
	}
	return results, nil
}
