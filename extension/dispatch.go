package extension

import (
	"context"

	"github.com/toolink/gantry/catalog"
)

// FilterFunc selects the extensions a dispatch call applies to.
type FilterFunc func(ext *Extension) bool

// Dispatch loads all candidates of a namespace and selects a subset per
// call instead of at construction, so different calls can target different
// subsets without rebuilding the manager.
type Dispatch struct {
	*Manager
}

// NewDispatch constructs a dispatch manager over every candidate of the
// namespace.
func NewDispatch(ctx context.Context, cat catalog.Catalog, namespace string, opts ...Option) (*Dispatch, error) {
	m, err := New(ctx, cat, namespace, opts...)
	if err != nil {
		return nil, err
	}
	return &Dispatch{Manager: m}, nil
}

// MapFiltered invokes fn for every loaded extension matching filter, in
// collection order, with the same result collection and error policy as Map.
// The filter is evaluated on each call.
func (d *Dispatch) MapFiltered(filter FilterFunc, fn MapFunc, args ...any) ([]any, error) {
	var selected []*Extension
	for _, ext := range d.extensions {
		if filter(ext) {
			selected = append(selected, ext)
		}
	}
	return d.mapOver(selected, fn, args...)
}

// MapNames invokes fn for the loaded extensions matching the given names.
// Names with no matching loaded extension are ignored, not errors, so a
// caller can dispatch against a wish list and reach whatever subset of it
// actually loaded.
func (d *Dispatch) MapNames(names []string, fn MapFunc, args ...any) ([]any, error) {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}
	return d.MapFiltered(func(ext *Extension) bool {
		_, ok := wanted[ext.Name]
		return ok
	}, fn, args...)
}
