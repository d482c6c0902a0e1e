package extension

import (
	"context"

	"github.com/toolink/gantry/catalog"
)

// NewNamed loads only the named candidates from the namespace. Candidate
// names are compared before any loader runs, so plugins outside the set are
// never loaded. This is useful for explicitly enabling extensions in a
// configuration file, for example.
//
// Pass WithNameOrder to order the collection by the given names rather than
// by whatever order resolution produced.
func NewNamed(ctx context.Context, cat catalog.Catalog, namespace string, names []string, opts ...Option) (*Manager, error) {
	opts = append([]Option{WithNames(names...)}, opts...)
	return New(ctx, cat, namespace, opts...)
}
