package cache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/tidwall/btree"
	"golang.org/x/sync/errgroup"

	"github.com/elmortem/assetfinder/data"
	"github.com/elmortem/assetfinder/log"
	"github.com/elmortem/assetfinder/repository"
	"github.com/elmortem/assetfinder/search"
	"github.com/elmortem/assetfinder/store"
)

// ErrRebuildInProgress reports that a rebuild was requested while one is
// already running.
var ErrRebuildInProgress = errors.New("cache: rebuild already in progress")

// partitions is the inbound view of one target: processor ID → source
// identity → traversal paths inside that source.
type partitions map[string]map[data.ID]*data.PathSet

// contribKey names one (processor, target) cell a source contributed to.
type contribKey struct {
	processor string
	target    data.ID
}

// Cache maintains the inverted reference index: for every unit, who
// references it and along which paths. The index is rebuilt in bulk or
// updated incrementally per changed unit; unchanged units are skipped by
// fingerprint. All lookups and updates go through one mutex, the crawl
// work itself runs outside it.
type Cache struct {
	mu sync.Mutex

	repo     repository.Repository
	searcher *search.Searcher
	store    store.Store
	log      *log.Logger

	parallelism int
	kinds       []data.Kind
	scope       string

	loaded       bool
	index        *btree.Map[data.ID, partitions]
	fingerprints map[data.ID]int64
	outbound     map[data.ID]map[contribKey]struct{}

	queue  []data.ID
	queued map[data.ID]struct{}

	draining      bool
	rebuilding    bool
	drainCancel   context.CancelFunc
	rebuildCancel context.CancelFunc

	lastRebuildTime     int64
	lastRebuildDuration time.Duration

	saveHooks []func()
}

func NewCache(repo repository.Repository, searcher *search.Searcher, st store.Store, opts ...Option) *Cache {
	c := &Cache{
		repo:         repo,
		searcher:     searcher,
		store:        st,
		log:          log.Default(),
		parallelism:  4,
		kinds:        data.IndexedKinds(),
		index:        btree.NewMap[data.ID, partitions](0),
		fingerprints: make(map[data.ID]int64),
		outbound:     make(map[data.ID]map[contribKey]struct{}),
		queued:       make(map[data.ID]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnSave registers fn to run after every successful persist.
func (c *Cache) OnSave(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saveHooks = append(c.saveHooks, fn)
}

func (c *Cache) IsRebuilding() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebuilding
}

func (c *Cache) IsProcessing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draining
}

func (c *Cache) LastRebuildTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastRebuildTime == 0 {
		return time.Time{}
	}
	return time.Unix(0, c.lastRebuildTime)
}

func (c *Cache) LastRebuildDuration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRebuildDuration
}

// FindReferences answers the core query: every unit referencing key,
// with the traversal paths that reach it. With no processor IDs the
// partitions of all processors are merged; otherwise only the named
// ones. Returned path sets are clones, safe to hold across updates.
func (c *Cache) FindReferences(ctx context.Context, key data.ID, processorIDs ...string) (map[data.ID]*data.PathSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	parts, ok := c.index.Get(key)
	if !ok {
		return map[data.ID]*data.PathSet{}, nil
	}

	out := make(map[data.ID]*data.PathSet)
	for processor, refs := range parts {
		if len(processorIDs) > 0 && !slices.Contains(processorIDs, processor) {
			continue
		}
		for source, paths := range refs {
			if existing, ok := out[source]; ok {
				existing.Merge(paths)
			} else {
				out[source] = paths.Clone()
			}
		}
	}
	return out, nil
}

// Rebuild reindexes every unit the repository lists. Units whose
// fingerprint is unchanged are skipped unless force is set; force also
// discards all previously indexed state first. Batches run through a
// bounded worker group. Cancellation is not an error: the work done so
// far is persisted and Rebuild returns nil.
func (c *Cache) Rebuild(ctx context.Context, force bool, onProgress func(processed, total int)) error {
	c.mu.Lock()
	if c.rebuilding {
		c.mu.Unlock()
		return ErrRebuildInProgress
	}
	// An incremental drain still running would race the full pass.
	if c.drainCancel != nil {
		c.drainCancel()
	}
	rctx, cancel := context.WithCancel(ctx)
	c.rebuilding = true
	c.rebuildCancel = cancel

	var err error
	if force {
		c.index.Clear()
		c.fingerprints = make(map[data.ID]int64)
		c.outbound = make(map[data.ID]map[contribKey]struct{})
		c.loaded = true
	} else {
		err = c.ensureLoaded(rctx)
	}
	c.mu.Unlock()

	defer func() {
		cancel()
		c.mu.Lock()
		c.rebuilding = false
		c.rebuildCancel = nil
		c.mu.Unlock()
	}()

	if err != nil {
		return err
	}

	started := time.Now()
	ids, err := c.repo.ListAssets(rctx, repository.Query{Kinds: c.kinds, Scope: c.scope})
	if err != nil {
		return fmt.Errorf("listing assets: %w", err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := len(ids)
	batchSize := rebuildBatchSize(total)
	processed := 0

	cancelled := false
	for start := 0; start < total; start += batchSize {
		end := min(start+batchSize, total)

		g, gctx := errgroup.WithContext(rctx)
		g.SetLimit(c.parallelism)
		for _, id := range ids[start:end] {
			g.Go(func() error {
				return c.processAsset(gctx, id, force)
			})
		}
		if err := g.Wait(); err != nil {
			if errors.Is(err, context.Canceled) {
				cancelled = true
				break
			}
			return err
		}

		processed = end
		if onProgress != nil {
			onProgress(processed, total)
		}
	}

	c.mu.Lock()
	c.lastRebuildTime = started.UnixNano()
	c.lastRebuildDuration = time.Since(started)
	c.mu.Unlock()

	// Persist even a cancelled pass; the finished units stay warm.
	if err := c.save(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	if cancelled {
		c.log.Info("rebuild cancelled after %d/%d assets", processed, total)
	} else {
		c.log.Info("rebuild finished: %d assets in %s", total, time.Since(started))
	}
	return nil
}

// rebuildBatchSize scales the progress/batch granularity with the
// project: the square root of the unit count, clamped to [10, 100].
func rebuildBatchSize(total int) int {
	size := int(math.Sqrt(float64(total)))
	if size < 10 {
		return 10
	}
	if size > 100 {
		return 100
	}
	return size
}

// EnqueueForProcessing schedules units for incremental reindexing. The
// queue drains on a background goroutine, one unit at a time; duplicate
// identities collapse while queued. Enqueueing during a full rebuild
// cancels the rebuild, the incremental pass carries the fresher state.
func (c *Cache) EnqueueForProcessing(ids ...data.ID) {
	c.mu.Lock()
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if _, ok := c.queued[id]; ok {
			continue
		}
		c.queued[id] = struct{}{}
		c.queue = append(c.queue, id)
	}
	if c.rebuildCancel != nil {
		c.rebuildCancel()
	}
	start := !c.draining && len(c.queue) > 0
	var dctx context.Context
	if start {
		dctx, c.drainCancel = context.WithCancel(context.Background())
		c.draining = true
	}
	c.mu.Unlock()

	if start {
		go c.drain(dctx)
	}
}

// CancelProcessing stops the incremental drain and forgets everything
// still queued. A running full rebuild is unaffected.
func (c *Cache) CancelProcessing() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drainCancel != nil {
		c.drainCancel()
	}
	c.queue = nil
	c.queued = make(map[data.ID]struct{})
}

func (c *Cache) drain(ctx context.Context) {
	c.mu.Lock()
	err := c.ensureLoaded(ctx)
	c.mu.Unlock()
	if err != nil {
		c.log.Error("loading cache before drain: %v", err)
		c.stopDraining()
		return
	}

	for {
		for {
			c.mu.Lock()
			if len(c.queue) == 0 || ctx.Err() != nil {
				c.mu.Unlock()
				break
			}
			id := c.queue[0]
			c.queue = c.queue[1:]
			delete(c.queued, id)
			c.mu.Unlock()

			if err := c.processAsset(ctx, id, false); err != nil {
				if errors.Is(err, context.Canceled) {
					break
				}
				c.log.Error("processing %s: %v", id, err)
			}
		}

		if err := c.save(context.WithoutCancel(ctx)); err != nil {
			c.log.Error("saving cache after drain: %v", err)
		}

		// Anything enqueued during the save (hooks, watcher events) saw
		// draining == true and started no goroutine; it is this
		// goroutine's work. Hand back only when the queue is really
		// empty.
		c.mu.Lock()
		if len(c.queue) == 0 || ctx.Err() != nil {
			c.draining = false
			c.drainCancel = nil
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

func (c *Cache) stopDraining() {
	c.mu.Lock()
	c.draining = false
	c.drainCancel = nil
	c.mu.Unlock()
}

// processAsset reindexes one unit: stat, fingerprint check, load, crawl,
// merge. A unit the repository no longer knows is evicted instead.
func (c *Cache) processAsset(ctx context.Context, id data.ID, force bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stat, err := c.repo.StatAsset(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.RemoveAsset(id)
			return nil
		}
		return fmt.Errorf("stat %s: %w", id, err)
	}

	fp := Combine(stat)
	if !force {
		c.mu.Lock()
		known, ok := c.fingerprints[id]
		c.mu.Unlock()
		if ok && known == fp {
			return nil
		}
	}

	asset, err := c.repo.LoadAsset(ctx, id)
	if err != nil {
		return fmt.Errorf("load %s: %w", id, err)
	}

	result, err := c.searcher.FindReferencePaths(ctx, asset)
	if err != nil {
		// A partial crawl must not replace complete recorded state.
		return err
	}

	c.merge(id, fp, result)
	return nil
}

// merge replaces everything source contributed to the index with the
// freshly crawled result. Stale cells are cleared first so references
// the unit no longer holds disappear.
func (c *Cache) merge(source data.ID, fp int64, result search.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearContributions(source)

	contribs := make(map[contribKey]struct{})
	for processor, targets := range result {
		for target, paths := range targets {
			parts, ok := c.index.Get(target)
			if !ok {
				parts = make(partitions)
				c.index.Set(target, parts)
			}
			refs := parts[processor]
			if refs == nil {
				refs = make(map[data.ID]*data.PathSet)
				parts[processor] = refs
			}
			refs[source] = paths.Clone()
			contribs[contribKey{processor: processor, target: target}] = struct{}{}
		}
	}
	if len(contribs) > 0 {
		c.outbound[source] = contribs
	}
	c.fingerprints[source] = fp
}

// RemoveAsset evicts a unit entirely: its outgoing contributions, its
// inbound entry and its fingerprint.
func (c *Cache) RemoveAsset(id data.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearContributions(id)
	c.index.Delete(id)
	delete(c.fingerprints, id)
}

// clearContributions removes every index cell source wrote. Callers hold
// the mutex.
func (c *Cache) clearContributions(source data.ID) {
	for key := range c.outbound[source] {
		parts, ok := c.index.Get(key.target)
		if !ok {
			continue
		}
		if refs := parts[key.processor]; refs != nil {
			delete(refs, source)
			if len(refs) == 0 {
				delete(parts, key.processor)
			}
		}
		if len(parts) == 0 {
			c.index.Delete(key.target)
		}
	}
	delete(c.outbound, source)
}

// ensureLoaded hydrates the index from the store on first touch.
// Callers hold the mutex.
func (c *Cache) ensureLoaded(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	container, err := c.store.Load(ctx)
	if err != nil {
		// A cache that cannot be read is a cache that does not exist:
		// start empty and let the next rebuild repopulate it.
		if !errors.Is(err, store.ErrNotExist) {
			c.log.Error("loading cache from %s store: %v", c.store.Name(), err)
		}
		c.loaded = true
		return nil
	}
	container.Normalize(search.DefaultProcessorID)

	c.lastRebuildTime = container.LastRebuildTime
	c.lastRebuildDuration = time.Duration(container.LastRebuildDuration)
	for _, entry := range container.Entries {
		parts := make(partitions)
		for _, group := range entry.Groups {
			refs := make(map[data.ID]*data.PathSet)
			for _, ref := range group.References {
				paths := data.NewPathSet()
				for _, p := range ref.Paths {
					paths.Add(p)
				}
				refs[ref.Identity] = paths

				contribs := c.outbound[ref.Identity]
				if contribs == nil {
					contribs = make(map[contribKey]struct{})
					c.outbound[ref.Identity] = contribs
				}
				contribs[contribKey{processor: group.ProcessorID, target: entry.Identity}] = struct{}{}
			}
			parts[group.ProcessorID] = refs
		}
		c.index.Set(entry.Identity, parts)
	}
	for _, fp := range container.Fingerprints {
		c.fingerprints[fp.Identity] = fp.Fingerprint
	}

	c.loaded = true
	c.log.Debug("cache loaded: %d targets, %d fingerprints", c.index.Len(), len(c.fingerprints))
	return nil
}

// save persists a deterministic snapshot: targets in index order,
// processors and sources sorted, paths already sorted by the set.
func (c *Cache) save(ctx context.Context) error {
	c.mu.Lock()
	container := c.snapshot()
	hooks := make([]func(), len(c.saveHooks))
	copy(hooks, c.saveHooks)
	c.mu.Unlock()

	if err := c.store.Save(ctx, container); err != nil {
		return fmt.Errorf("saving cache to %s store: %w", c.store.Name(), err)
	}
	for _, hook := range hooks {
		hook()
	}
	return nil
}

// snapshot serializes the in-memory index. Callers hold the mutex.
func (c *Cache) snapshot() *store.Container {
	container := &store.Container{
		LastRebuildTime:     c.lastRebuildTime,
		LastRebuildDuration: int64(c.lastRebuildDuration),
	}

	c.index.Scan(func(target data.ID, parts partitions) bool {
		entry := store.Entry{Identity: target}
		processors := make([]string, 0, len(parts))
		for processor := range parts {
			processors = append(processors, processor)
		}
		sort.Strings(processors)

		for _, processor := range processors {
			refs := parts[processor]
			group := store.Group{ProcessorID: processor}
			sources := make([]data.ID, 0, len(refs))
			for source := range refs {
				sources = append(sources, source)
			}
			sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

			for _, source := range sources {
				group.References = append(group.References, store.Reference{
					Identity: source,
					Paths:    refs[source].Paths(),
				})
			}
			entry.Groups = append(entry.Groups, group)
		}
		container.Entries = append(container.Entries, entry)
		return true
	})

	container.Fingerprints = make([]store.Fingerprint, 0, len(c.fingerprints))
	for id, fp := range c.fingerprints {
		container.Fingerprints = append(container.Fingerprints, store.Fingerprint{Identity: id, Fingerprint: fp})
	}
	sort.Slice(container.Fingerprints, func(i, j int) bool {
		return container.Fingerprints[i].Identity < container.Fingerprints[j].Identity
	})
	return container
}
