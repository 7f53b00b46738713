package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elmortem/assetfinder/store"
)

// LocalStore persists the cache as a single JSON file on disk. Saves
// write to a sibling temp file first and rename it into place, so a
// crash mid-save never leaves a truncated cache behind.
type LocalStore struct {
	path string
}

// NewLocalStore creates a file-backed store at path. The parent
// directory is created on Open if missing.
func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path}
}

// Name returns the identifier name defined for this store.
func (*LocalStore) Name() string {
	return "local"
}

// Open is part of the lifecycle behaviour and gets called before the first use.
func (ls *LocalStore) Open(ctx context.Context) error {
	return os.MkdirAll(filepath.Dir(ls.path), 0755)
}

// Close is part of the lifecycle behaviour and gets called when the store is no longer needed.
func (ls *LocalStore) Close(ctx context.Context) error {
	return nil
}

func (ls *LocalStore) Load(ctx context.Context) (*store.Container, error) {
	blob, err := os.ReadFile(ls.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotExist
		}
		return nil, err
	}
	var c store.Container
	if err := json.Unmarshal(blob, &c); err != nil {
		return nil, fmt.Errorf("failed to parse cache file %s: %w", ls.path, err)
	}
	return &c, nil
}

func (ls *LocalStore) Save(ctx context.Context, c *store.Container) error {
	blob, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(ls.path), ".assetfinder-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), ls.path)
}
