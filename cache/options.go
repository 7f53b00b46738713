package cache

import (
	"github.com/elmortem/assetfinder/data"
	"github.com/elmortem/assetfinder/log"
)

// Option configures a Cache during construction.
type Option func(*Cache)

// WithLogger routes the cache's diagnostics to the given logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithParallelism bounds the number of units processed concurrently
// during a rebuild. Values below one fall back to the default of four.
func WithParallelism(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithKinds restricts rebuilds to the named unit kinds. Without it the
// cache indexes data.IndexedKinds.
func WithKinds(kinds ...data.Kind) Option {
	return func(c *Cache) {
		if len(kinds) > 0 {
			c.kinds = kinds
		}
	}
}

// WithScope restricts rebuilds to units whose path starts with prefix.
func WithScope(prefix string) Option {
	return func(c *Cache) {
		c.scope = prefix
	}
}
