package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elmortem/assetfinder/data"
	"github.com/elmortem/assetfinder/repository"
)

type record struct {
	path  string
	kind  data.Kind
	asset data.Asset
	stat  data.AssetStat
}

// MemoryRepository holds a project's units in process memory. It backs
// tests and in-editor tooling where the object graphs already live in
// RAM and no asset database exists.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[data.ID]*record
	byPath  map[string]data.ID
	scripts []*data.Script
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[data.ID]*record),
		byPath:  make(map[string]data.ID),
	}
}

// MintID returns a fresh unique identity.
func MintID() data.ID {
	return data.ID(uuid.NewString())
}

// Put registers asset under path. Re-putting an existing identity
// replaces the stored unit and bumps its change state.
func (mr *MemoryRepository) Put(path string, kind data.Kind, asset data.Asset) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	id := asset.AssetID()
	if old, ok := mr.records[id]; ok {
		delete(mr.byPath, old.path)
	}
	mr.records[id] = &record{
		path:  path,
		kind:  kind,
		asset: asset,
		stat: data.AssetStat{
			ModTime:       time.Now().UnixNano(),
			StructureHash: int64(len(mr.records) + 1),
		},
	}
	mr.byPath[path] = id

	if script, ok := asset.(*data.Script); ok {
		mr.scripts = append(mr.scripts, script)
	}
}

// Touch bumps the change state of id, as an external edit would.
func (mr *MemoryRepository) Touch(id data.ID) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	if rec, ok := mr.records[id]; ok {
		rec.stat.ModTime = time.Now().UnixNano()
		rec.stat.StructureHash++
	}
}

// Remove forgets the unit entirely.
func (mr *MemoryRepository) Remove(id data.ID) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	if rec, ok := mr.records[id]; ok {
		delete(mr.byPath, rec.path)
		delete(mr.records, id)
	}
}

func (mr *MemoryRepository) ListAssets(ctx context.Context, q repository.Query) ([]data.ID, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	var ids []data.ID
	for id, rec := range mr.records {
		if q.Scope != "" && !strings.HasPrefix(rec.path, q.Scope) {
			continue
		}
		if len(q.Kinds) > 0 && !slices.Contains(q.Kinds, rec.kind) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, ctx.Err()
}

func (mr *MemoryRepository) PathOf(id data.ID) (string, bool) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	rec, ok := mr.records[id]
	if !ok {
		return "", false
	}
	return rec.path, true
}

func (mr *MemoryRepository) Identify(path string) (data.ID, bool) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	id, ok := mr.byPath[path]
	return id, ok
}

func (mr *MemoryRepository) LoadAsset(ctx context.Context, id data.ID) (data.Asset, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	rec, ok := mr.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec.asset, nil
}

func (mr *MemoryRepository) StatAsset(ctx context.Context, id data.ID) (data.AssetStat, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	rec, ok := mr.records[id]
	if !ok {
		return data.AssetStat{}, repository.ErrNotFound
	}
	return rec.stat, nil
}

// Canonical resolves id to its resident asset; nil when unknown. This
// satisfies the alias resolver used by the default reference processor.
func (mr *MemoryRepository) Canonical(id data.ID) data.Asset {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	rec, ok := mr.records[id]
	if !ok {
		return nil
	}
	return rec.asset
}

// Scripts enumerates the registered script units.
func (mr *MemoryRepository) Scripts(ctx context.Context) ([]*data.Script, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	out := make([]*data.Script, len(mr.scripts))
	copy(out, mr.scripts)
	return out, nil
}
