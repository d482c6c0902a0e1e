package extension

// FailureHandler is notified when an individual candidate fails to load or
// instantiate. The candidate is dropped from the collection either way; the
// handler's return value, if any, is not consulted.
type FailureHandler func(m *Manager, name string, err error)

// CheckFunc decides whether a loaded extension stays in the collection.
// It runs after the candidate's loader (and invoke-on-load, when configured)
// so it can inspect the loaded plugin's declared properties.
type CheckFunc func(ext *Extension) bool

// Options holds the construction configuration for a Manager.
type Options struct {
	invokeOnLoad  bool
	invokeArgs    []any
	propagate     bool
	loadErrFatal  bool
	onLoadFailure FailureHandler
	names         []string
	nameOrder     bool
	check         CheckFunc
}

// Option is a function type used to configure a Manager at construction.
type Option func(*Options)

// defaultOptions returns the default construction options: load without
// invoking, isolate every failure, no selection, no post-load filter.
func defaultOptions() *Options {
	return &Options{}
}

// Apply applies the options to the Options struct.
func (o *Options) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// WithInvoke makes the manager invoke each loaded plugin with the given
// arguments, storing the result as the extension's Obj.
func WithInvoke(args ...any) Option {
	return func(o *Options) {
		o.invokeOnLoad = true
		o.invokeArgs = args
	}
}

// WithPropagateMapErrors switches Map from best-effort to fail-fast: the
// first error returned by the mapped function aborts the iteration and is
// returned to the caller instead of being logged and skipped.
func WithPropagateMapErrors() Option {
	return func(o *Options) {
		o.propagate = true
	}
}

// WithLoadErrorFatal makes a candidate load or instantiate failure abort
// construction instead of discarding that one candidate and continuing.
func WithLoadErrorFatal() Option {
	return func(o *Options) {
		o.loadErrFatal = true
	}
}

// WithLoadFailureHandler installs a handler invoked synchronously with the
// candidate name and error each time a candidate is discarded for failing
// to load or instantiate.
func WithLoadFailureHandler(fn FailureHandler) Option {
	return func(o *Options) {
		o.onLoadFailure = fn
	}
}

// WithNames restricts loading to the named candidates. The name check runs
// before the candidate's loader, so candidates outside the set are never
// loaded at all.
func WithNames(names ...string) Option {
	return func(o *Options) {
		o.names = names
	}
}

// WithNameOrder orders the final collection to match the order of the names
// given to WithNames instead of whatever order resolution produced.
func WithNameOrder() Option {
	return func(o *Options) {
		o.nameOrder = true
	}
}

// WithCheckFunc installs a post-load predicate; extensions for which it
// returns false are discarded after loading.
func WithCheckFunc(check CheckFunc) Option {
	return func(o *Options) {
		o.check = check
	}
}
