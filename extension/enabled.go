package extension

import (
	"context"

	"github.com/toolink/gantry/catalog"
)

// NewEnabled loads every candidate of the namespace and keeps only the
// extensions for which check returns true. The predicate runs after loading
// on purpose: it needs the loaded plugin's declared properties to decide, so
// a discarded candidate has still had its loader (and invoke-on-load, when
// configured) run.
func NewEnabled(ctx context.Context, cat catalog.Catalog, namespace string, check CheckFunc, opts ...Option) (*Manager, error) {
	opts = append([]Option{WithCheckFunc(check)}, opts...)
	return New(ctx, cat, namespace, opts...)
}
