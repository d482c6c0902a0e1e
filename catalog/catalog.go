// Package catalog resolves logical namespaces to sets of named candidate
// plugins. Resolution is metadata-only: a Candidate carries a Loader but
// never invokes it, so discovering what is available for a namespace has no
// side effects on the plugins themselves.
package catalog

import (
	"context"
	"errors"
)

// Custom errors
var (
	ErrDuplicateCandidate = errors.New("catalog: candidate name already registered for namespace")
	ErrNilLoader          = errors.New("catalog: loader must not be nil")
	ErrEmptyName          = errors.New("catalog: candidate name must not be empty")
)

// Loader loads the underlying plugin object for a candidate.
// It is only invoked by a manager that decided to load the candidate,
// never during resolution.
type Loader func() (any, error)

// Candidate is an unloaded plugin reference: a name plus the loader that
// produces its underlying object. Candidates are immutable once resolved.
type Candidate struct {
	Name string
	Load Loader
}

// Catalog resolves a namespace to its candidate plugins.
//
// Implementations must be deterministic for a given namespace within a
// process run and must not execute any candidate code. A namespace with no
// registered candidates resolves to an empty slice and a nil error; callers
// decide whether an empty result is fatal.
type Catalog interface {
	Resolve(ctx context.Context, namespace string) ([]Candidate, error)
}
