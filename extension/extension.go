// Package extension loads the candidate plugins of a namespace into an
// ordered, name-keyed collection and provides the invocation primitives over
// it: map across all extensions, lookup by name, selective and filtered
// loading, and per-call dispatch. A failure in one plugin is isolated from
// the rest unless the caller opts into fail-fast behavior.
package extension

import (
	"errors"
	"fmt"
)

// Predefined errors for common scenarios in extension management.
var (
	ErrNotFound      = errors.New("extension not found")
	ErrDuplicateName = errors.New("duplicate extension name loaded for namespace")
	ErrNotCallable   = errors.New("plugin object is not callable")
)

// Extension is one successfully loaded plugin. Plugin is the raw object the
// candidate's loader produced (typically a factory). Obj is the result of
// invoking Plugin with the manager's configured arguments, and is nil when
// the manager loaded without invoking. Extensions are immutable after
// creation and identity-stable for the lifetime of their manager.
type Extension struct {
	Name   string
	Plugin any
	Obj    any
}

// Callable is implemented by plugin objects that can be invoked with
// positional arguments. This is the only shape the manager imposes on a
// plugin, and only when invocation is actually requested.
type Callable interface {
	Call(args ...any) (any, error)
}

// CallableFunc adapts a plain function to the Callable interface.
type CallableFunc func(args ...any) (any, error)

// Call invokes the function.
func (f CallableFunc) Call(args ...any) (any, error) {
	return f(args...)
}

// Invoke calls a plugin object with the given arguments. The object may
// implement Callable or be a bare func(...any) (any, error); anything else
// yields ErrNotCallable.
func Invoke(plugin any, args ...any) (any, error) {
	switch c := plugin.(type) {
	case Callable:
		return c.Call(args...)
	case func(args ...any) (any, error):
		return c(args...)
	}
	return nil, fmt.Errorf("%w: %T", ErrNotCallable, plugin)
}
