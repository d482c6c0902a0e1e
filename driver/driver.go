// Package driver loads a single named plugin from a namespace and exposes it
// as a directly invocable driver.
package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/toolink/gantry/catalog"
	"github.com/toolink/gantry/extension"
)

// Predefined errors for the exactly-one-driver invariant.
var (
	ErrNoMatches       = errors.New("no driver found")
	ErrMultipleMatches = errors.New("multiple drivers found")
)

// Manager wraps an extension manager constrained to exactly one loaded
// extension. Unlike the batch managers, a load failure here is fatal to
// construction: a caller asking for one specific driver needs to know it is
// unusable, not receive an empty collection.
type Manager struct {
	manager *extension.Manager
	ext     *extension.Extension
}

// New loads the driver with the given name from the namespace. Matching zero
// candidates fails with ErrNoMatches; matching more than one fails with
// ErrMultipleMatches; a failure loading the matched candidate is returned
// wrapped with the namespace and name.
func New(ctx context.Context, cat catalog.Catalog, namespace, name string, opts ...extension.Option) (*Manager, error) {
	opts = append([]extension.Option{
		extension.WithNames(name),
		extension.WithLoadErrorFatal(),
	}, opts...)

	m, err := extension.New(ctx, cat, namespace, opts...)
	if err != nil {
		// Two candidates sharing the requested name violate the
		// exactly-one invariant, not the uniqueness configuration.
		if errors.Is(err, extension.ErrDuplicateName) {
			log.Error().Str("namespace", namespace).Str("driver", name).Msg("multiple candidates matched driver name")
			return nil, fmt.Errorf("%w: %s/%s", ErrMultipleMatches, namespace, name)
		}
		return nil, fmt.Errorf("unable to load driver %s from %s: %w", name, namespace, err)
	}
	if m.Len() == 0 {
		log.Error().Str("namespace", namespace).Str("driver", name).Msg("no candidate matched driver name")
		return nil, fmt.Errorf("%w: no %s driver named %q", ErrNoMatches, namespace, name)
	}

	ext, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("namespace", namespace).Str("driver", name).Msg("driver loaded")
	return &Manager{manager: m, ext: ext}, nil
}

// Namespace returns the namespace the driver was loaded from.
func (m *Manager) Namespace() string {
	return m.manager.Namespace()
}

// Extension returns the single loaded extension record.
func (m *Manager) Extension() *extension.Extension {
	return m.ext
}

// Driver returns the driver object: the extension's Obj when the manager
// invoked on load, otherwise the raw Plugin.
func (m *Manager) Driver() any {
	if m.ext.Obj != nil {
		return m.ext.Obj
	}
	return m.ext.Plugin
}

// Invoke calls the driver with the given arguments, so a driver manager can
// stand in wherever a plain callable is expected.
func (m *Manager) Invoke(args ...any) (any, error) {
	return extension.Invoke(m.Driver(), args...)
}

// Map invokes fn for the single loaded extension, with the manager's usual
// error policy.
func (m *Manager) Map(fn extension.MapFunc, args ...any) ([]any, error) {
	return m.manager.Map(fn, args...)
}
