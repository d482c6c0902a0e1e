package catalog

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultKeyPrefix = "gantry:catalog"

// RedisSource restricts another Catalog to the candidate names stored in a
// redis list, one list per namespace under "<prefix>:<namespace>". Loaders
// cannot live in redis, so the wrapped catalog supplies them; redis only
// decides which names are enabled and in what order. This lets a fleet share
// one enablement table without redeploying configuration files.
type RedisSource struct {
	client    redis.Cmdable
	source    Catalog
	keyPrefix string
}

// RedisOption configures a RedisSource.
type RedisOption func(*RedisSource)

// WithKeyPrefix overrides the redis key prefix. Default is "gantry:catalog".
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisSource) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// NewRedisSource wraps source with redis-driven enablement. It expects a
// pre-configured redis.Cmdable (e.g. redis.Client or redis.ClusterClient).
func NewRedisSource(client redis.Cmdable, source Catalog, opts ...RedisOption) (*RedisSource, error) {
	if client == nil {
		return nil, fmt.Errorf("catalog: redis client is required")
	}
	s := &RedisSource{
		client:    client,
		source:    source,
		keyPrefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// namespaceKey generates the redis key holding the enabled names for a
// namespace. Format: prefix:namespace
func (s *RedisSource) namespaceKey(namespace string) string {
	return fmt.Sprintf("%s:%s", s.keyPrefix, namespace)
}

// Resolve reads the enabled names for the namespace from redis and binds
// each to the wrapped catalog's candidate of the same name. A missing key
// resolves to no candidates. Redis failures are resolution failures and
// surface to the caller.
func (s *RedisSource) Resolve(ctx context.Context, namespace string) ([]Candidate, error) {
	key := s.namespaceKey(namespace)
	names, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		log.Error().Str("namespace", namespace).Str("key", key).Err(err).Msg("failed to read enabled candidates from redis")
		return nil, fmt.Errorf("catalog: redis read for namespace %s: %w", namespace, err)
	}
	if len(names) == 0 {
		return []Candidate{}, nil
	}

	candidates, err := s.source.Resolve(ctx, namespace)
	if err != nil {
		return nil, err
	}
	return bindNames(candidates, names, namespace, "redis"), nil
}
