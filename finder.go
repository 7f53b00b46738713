package assetfinder

import (
	"context"
	"sync"
	"time"

	"github.com/elmortem/assetfinder/cache"
	"github.com/elmortem/assetfinder/crawler"
	"github.com/elmortem/assetfinder/data"
	"github.com/elmortem/assetfinder/log"
	"github.com/elmortem/assetfinder/repository"
	"github.com/elmortem/assetfinder/search"
	"github.com/elmortem/assetfinder/store/local"
	"github.com/elmortem/assetfinder/watch"
)

// DefaultCachePath is where the default local store persists the index,
// relative to the working directory.
const DefaultCachePath = ".assetfinder/cache.json"

// Finder is the top-level entry point: it wires the repository, the
// crawler registry, the reference processors and the cache into one
// queryable index.
type Finder struct {
	repo     repository.Repository
	cache    *cache.Cache
	searcher *search.Searcher
	st       storeHandle
	log      *log.Logger

	mu     sync.Mutex
	closed bool
}

type storeHandle interface {
	Name() string
	Close(ctx context.Context) error
}

// New builds a Finder over repo. Without options it indexes the kinds
// in data.IndexedKinds, persists to a local JSON file and runs the
// default and type reference processors.
func New(repo repository.Repository, opts ...Option) (*Finder, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}

	cfg := &config{
		parallelism: 4,
		cachePath:   DefaultCachePath,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = log.Default()
	}

	registry := cfg.registry
	if registry == nil {
		registry = crawler.DefaultRegistry(cfg.ignoreComponents...)
	}

	processors, err := buildProcessors(repo, cfg)
	if err != nil {
		return nil, err
	}

	st := cfg.store
	if st == nil {
		st = local.NewLocalStore(cfg.cachePath)
	}
	if err := st.Open(context.Background()); err != nil {
		return nil, err
	}

	searcher := search.NewSearcher(registry, processors, logger)
	c := cache.NewCache(repo, searcher, st,
		cache.WithLogger(logger),
		cache.WithParallelism(cfg.parallelism),
		cache.WithKinds(cfg.kinds...),
		cache.WithScope(cfg.scope),
	)

	return &Finder{
		repo:     repo,
		cache:    c,
		searcher: searcher,
		st:       st,
		log:      logger,
	}, nil
}

// buildProcessors assembles the processor set: the default processor
// always, the type processor when the repository can enumerate scripts,
// plus anything the caller added.
func buildProcessors(repo repository.Repository, cfg *config) ([]search.Processor, error) {
	resolver, _ := repo.(search.Resolver)
	processors := []search.Processor{search.NewDefaultProcessor(resolver)}

	if src, ok := repo.(repository.ScriptSource); ok {
		scripts, err := src.Scripts(context.Background())
		if err != nil {
			return nil, err
		}
		index := search.NewScriptIndex(scripts)
		processors = append(processors, search.NewTypeProcessor(index, cfg.packagePrefixes...))
	}

	return append(processors, cfg.processors...), nil
}

// FindReferences returns every unit referencing key, with traversal
// paths, optionally narrowed to the named processor partitions.
func (f *Finder) FindReferences(ctx context.Context, key data.ID, processorIDs ...string) (map[data.ID]*data.PathSet, error) {
	if f.isClosed() {
		return nil, ErrClosed
	}
	return f.cache.FindReferences(ctx, key, processorIDs...)
}

// Rebuild reindexes the whole project. See cache.Cache.Rebuild.
func (f *Finder) Rebuild(ctx context.Context, force bool, onProgress func(processed, total int)) error {
	if f.isClosed() {
		return ErrClosed
	}
	return f.cache.Rebuild(ctx, force, onProgress)
}

// EnqueueForProcessing schedules changed units for incremental
// reindexing.
func (f *Finder) EnqueueForProcessing(ids ...data.ID) {
	if f.isClosed() {
		return
	}
	f.cache.EnqueueForProcessing(ids...)
}

// CancelProcessing drops the incremental queue.
func (f *Finder) CancelProcessing() {
	f.cache.CancelProcessing()
}

func (f *Finder) IsProcessing() bool {
	return f.cache.IsProcessing()
}

func (f *Finder) IsRebuilding() bool {
	return f.cache.IsRebuilding()
}

func (f *Finder) LastRebuildTime() time.Time {
	return f.cache.LastRebuildTime()
}

func (f *Finder) LastRebuildDuration() time.Duration {
	return f.cache.LastRebuildDuration()
}

// OnCacheSave registers fn to run after every successful persist.
func (f *Finder) OnCacheSave(fn func()) {
	f.cache.OnSave(fn)
}

// Watch builds a filesystem watcher feeding this finder's incremental
// queue and registers the given directories. The caller runs it:
//
//	w, err := finder.Watch("assets")
//	go w.Run(ctx)
func (f *Finder) Watch(dirs ...string) (*watch.Watcher, error) {
	if f.isClosed() {
		return nil, ErrClosed
	}
	w, err := watch.NewWatcher(f.cache, f.repo, f.log)
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}
	return w, nil
}

// Close stops incremental processing and releases the store. The cache
// is persisted by the operations that mutate it, not by Close.
func (f *Finder) Close(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	f.cache.CancelProcessing()
	return f.st.Close(ctx)
}

func (f *Finder) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
