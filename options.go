package assetfinder

import (
	"reflect"

	"github.com/elmortem/assetfinder/crawler"
	"github.com/elmortem/assetfinder/data"
	"github.com/elmortem/assetfinder/log"
	"github.com/elmortem/assetfinder/search"
	"github.com/elmortem/assetfinder/store"
)

// Option configures a Finder during construction.
type Option func(*config)

type config struct {
	store            store.Store
	logger           *log.Logger
	registry         *crawler.Registry
	processors       []search.Processor
	parallelism      int
	kinds            []data.Kind
	scope            string
	cachePath        string
	ignoreComponents []reflect.Type
	packagePrefixes  []string
}

// WithStore selects where the cache persists. Defaults to a local JSON
// file store.
func WithStore(s store.Store) Option {
	return func(c *config) {
		c.store = s
	}
}

// WithLogger routes diagnostics to the given logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithRegistry replaces the default crawler registry entirely.
func WithRegistry(r *crawler.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithProcessors adds reference processors beyond the built-in ones.
func WithProcessors(ps ...search.Processor) Option {
	return func(c *config) {
		c.processors = append(c.processors, ps...)
	}
}

// WithParallelism bounds concurrent unit processing during rebuilds.
func WithParallelism(n int) Option {
	return func(c *config) {
		c.parallelism = n
	}
}

// WithKinds restricts indexing to the named unit kinds.
func WithKinds(kinds ...data.Kind) Option {
	return func(c *config) {
		c.kinds = kinds
	}
}

// WithScope restricts indexing to paths under the given prefix.
func WithScope(prefix string) Option {
	return func(c *config) {
		c.scope = prefix
	}
}

// WithCachePath sets the file used by the default local store. Ignored
// when WithStore is given.
func WithCachePath(path string) Option {
	return func(c *config) {
		c.cachePath = path
	}
}

// WithIgnoreComponents excludes component types from composite
// crawling, for noisy types that never carry references.
func WithIgnoreComponents(types ...reflect.Type) Option {
	return func(c *config) {
		c.ignoreComponents = append(c.ignoreComponents, types...)
	}
}

// WithProjectPackages restricts type reference indexing to types whose
// package path starts with one of the given prefixes.
func WithProjectPackages(prefixes ...string) Option {
	return func(c *config) {
		c.packagePrefixes = append(c.packagePrefixes, prefixes...)
	}
}
