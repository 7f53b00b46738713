package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/elmortem/assetfinder/data"
	"github.com/elmortem/assetfinder/log"
	"github.com/elmortem/assetfinder/repository"
)

// Enqueuer receives the identities of changed units. The cache
// satisfies it.
type Enqueuer interface {
	EnqueueForProcessing(ids ...data.ID)
	IsRebuilding() bool
}

// ignoredExtensions lists file types that never carry references worth
// indexing: sidecar metadata, code, binaries and raw image payloads.
// Their referencing side lives in the units that use them.
var ignoredExtensions = map[string]struct{}{
	".meta":   {},
	".cs":     {},
	".go":     {},
	".asmdef": {},
	".asmref": {},
	".dll":    {},
	".png":    {},
	".jpg":    {},
	".jpeg":   {},
	".svg":    {},
	".psd":    {},
}

// Indexable reports whether a changed file should trigger reindexing.
func Indexable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	_, ignored := ignoredExtensions[ext]
	return !ignored
}

// Watcher feeds filesystem change events into the cache's incremental
// queue. Changes arriving while a full rebuild runs are dropped, the
// rebuild will index them anyway; the auto-update switch pauses
// enqueueing without tearing the watcher down.
type Watcher struct {
	fs       *fsnotify.Watcher
	enqueuer Enqueuer
	repo     repository.Repository
	log      *log.Logger

	mu         sync.Mutex
	autoUpdate bool
}

func NewWatcher(enqueuer Enqueuer, repo repository.Repository, logger *log.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		fs:         fs,
		enqueuer:   enqueuer,
		repo:       repo,
		log:        logger,
		autoUpdate: true,
	}, nil
}

// Add registers a directory for watching.
func (w *Watcher) Add(dir string) error {
	return w.fs.Add(dir)
}

// SetAutoUpdate toggles whether observed changes reach the cache.
func (w *Watcher) SetAutoUpdate(enabled bool) {
	w.mu.Lock()
	w.autoUpdate = enabled
	w.mu.Unlock()
}

// AutoUpdate reports the current toggle state.
func (w *Watcher) AutoUpdate() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.autoUpdate
}

// Run consumes events until ctx is done or the watcher closes. It is
// meant to be run on its own goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}
	if !Indexable(event.Name) {
		return
	}
	if !w.AutoUpdate() || w.enqueuer.IsRebuilding() {
		return
	}

	id, ok := w.repo.Identify(event.Name)
	if !ok {
		return
	}
	w.log.Debug("change detected: %s (%s)", event.Name, id)
	w.enqueuer.EnqueueForProcessing(id)
}
