package repository

import (
	"context"
	"errors"

	"github.com/elmortem/assetfinder/data"
)

// ErrNotFound reports that an identity or path is unknown to the
// repository.
var ErrNotFound = errors.New("repository: asset not found")

// Query narrows the unit listing. A zero Query matches everything.
type Query struct {
	// Kinds restricts the listing to the named unit kinds. Empty means
	// all indexed kinds.
	Kinds []data.Kind

	// Scope restricts the listing to paths under the given prefix.
	Scope string
}

// Repository is the project backing the index: it enumerates the
// storable units and materializes them on demand. Implementations wrap
// a project database, an on-disk layout, or a test fixture.
type Repository interface {
	// ListAssets enumerates the identities matching q.
	ListAssets(ctx context.Context, q Query) ([]data.ID, error)

	// PathOf resolves an identity to its project path.
	PathOf(id data.ID) (string, bool)

	// Identify resolves a project path back to an identity.
	Identify(path string) (data.ID, bool)

	// LoadAsset materializes the unit's object graph.
	LoadAsset(ctx context.Context, id data.ID) (data.Asset, error)

	// StatAsset reports the unit's current change state without
	// materializing it.
	StatAsset(ctx context.Context, id data.ID) (data.AssetStat, error)
}

// ScriptSource is an optional repository capability: repositories able
// to enumerate the project's script units enable type reference
// indexing.
type ScriptSource interface {
	Scripts(ctx context.Context) ([]*data.Script, error)
}
