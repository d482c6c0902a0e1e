package catalog

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// ConfigSource restricts another Catalog to the candidate names enabled in
// configuration. The viper key named by the root key (default "namespaces")
// holds a map from namespace to string list; for each namespace it resolves
// only the listed names, in config order. Namespaces are looked up as
// literal map keys, so the dots conventional in namespace names are not
// treated as viper path separators. This is the usual way to let an
// operator enable extensions from a configuration file without touching
// code.
type ConfigSource struct {
	v          *viper.Viper
	source     Catalog
	rootKey    string
	defaultAll bool
}

// ConfigOption configures a ConfigSource.
type ConfigOption func(*ConfigSource)

// WithConfigKey overrides the root config key under which the
// namespace-to-names map lives. Default is "namespaces".
func WithConfigKey(key string) ConfigOption {
	return func(c *ConfigSource) {
		if key != "" {
			c.rootKey = key
		}
	}
}

// WithConfigDefaultAll makes namespaces absent from the configuration
// resolve to every candidate of the wrapped catalog instead of to none.
func WithConfigDefaultAll() ConfigOption {
	return func(c *ConfigSource) {
		c.defaultAll = true
	}
}

// NewConfigSource wraps source with viper-driven enablement.
func NewConfigSource(v *viper.Viper, source Catalog, opts ...ConfigOption) *ConfigSource {
	c := &ConfigSource{
		v:       v,
		source:  source,
		rootKey: "namespaces",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve returns the wrapped catalog's candidates for the namespace,
// restricted and ordered by the configured name list. Configured names with
// no matching candidate are logged and skipped.
func (c *ConfigSource) Resolve(ctx context.Context, namespace string) ([]Candidate, error) {
	table := c.v.GetStringMapStringSlice(c.rootKey)
	names, ok := table[namespace]
	if !ok {
		if c.defaultAll {
			return c.source.Resolve(ctx, namespace)
		}
		log.Debug().Str("namespace", namespace).Str("key", c.rootKey).Msg("namespace not configured, resolving no candidates")
		return []Candidate{}, nil
	}

	candidates, err := c.source.Resolve(ctx, namespace)
	if err != nil {
		return nil, err
	}
	return bindNames(candidates, names, namespace, "config"), nil
}

// bindNames maps an ordered name list onto the candidates resolved from a
// backing catalog. Names with no matching candidate are skipped with a
// warning rather than failing the whole resolution.
func bindNames(candidates []Candidate, names []string, namespace, origin string) []Candidate {
	byName := make(map[string]Candidate, len(candidates))
	for _, cand := range candidates {
		byName[cand.Name] = cand
	}

	out := make([]Candidate, 0, len(names))
	for _, name := range names {
		cand, ok := byName[name]
		if !ok {
			log.Warn().Str("namespace", namespace).Str("candidate", name).Str("origin", origin).Msg("enabled candidate has no registered loader, skipping")
			continue
		}
		out = append(out, cand)
	}
	return out
}
