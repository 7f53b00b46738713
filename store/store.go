package store

import (
	"context"
	"errors"
)

// ErrNotExist reports that no cache has ever been persisted to the
// store. Callers treat it as "start empty", not as a failure.
var ErrNotExist = errors.New("store: no persisted cache")

// Store persists the reference cache between runs. Implementations hold
// the whole cache as one unit: Load returns the complete container and
// Save replaces whatever was persisted before.
type Store interface {
	// Name returns the identifier name defined for this store.
	Name() string

	// Open is part of the lifecycle behaviour and gets called before the
	// first Load or Save.
	Open(ctx context.Context) error

	// Close is part of the lifecycle behaviour and gets called when the
	// store is no longer needed.
	Close(ctx context.Context) error

	// Load reads the persisted container. Returns ErrNotExist when
	// nothing has been saved yet.
	Load(ctx context.Context) (*Container, error)

	// Save atomically replaces the persisted container.
	Save(ctx context.Context, c *Container) error
}
