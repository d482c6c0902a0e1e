// Package global holds process-wide default instances shared by code that
// does not thread its own catalog through every call site.
package global

import (
	"errors"
	"sync/atomic"

	"github.com/toolink/gantry/catalog"
)

// ErrRegistryReplaced is returned by Register after SetCatalog installed a
// catalog that is not backed by the default registry.
var ErrRegistryReplaced = errors.New("global: default registry was replaced, register against your own catalog")

// catalogHolder gives atomic.Value a single concrete type to store.
type catalogHolder struct {
	catalog  catalog.Catalog
	registry *catalog.Registry // nil when a custom catalog was installed
}

func defaultCatalog() *atomic.Value {
	v := &atomic.Value{}
	v.Store(newDefaultHolder())
	return v
}

func newDefaultHolder() catalogHolder {
	reg := catalog.NewRegistry()
	return catalogHolder{
		catalog:  catalog.NewCache(reg),
		registry: reg,
	}
}

var globalCatalog = defaultCatalog()

// Catalog retrieves the current global catalog. The default is an empty
// Registry wrapped in a memoizing Cache, so repeated discovery of a
// namespace through the global catalog never re-scans within the process.
func Catalog() catalog.Catalog {
	return globalCatalog.Load().(catalogHolder).catalog
}

// SetCatalog sets the global catalog.
func SetCatalog(c catalog.Catalog) {
	globalCatalog.Store(catalogHolder{catalog: c})
}

// ResetCatalog restores the default registry-backed catalog with an empty
// registry and cache. Intended for tests that must not leak registrations
// into each other.
func ResetCatalog() {
	globalCatalog.Store(newDefaultHolder())
}

// Register adds a candidate loader to the default global registry. It fails
// with ErrRegistryReplaced if SetCatalog swapped in a custom catalog.
func Register(namespace, name string, loader catalog.Loader) error {
	h := globalCatalog.Load().(catalogHolder)
	if h.registry == nil {
		return ErrRegistryReplaced
	}
	return h.registry.Register(namespace, name, loader)
}
