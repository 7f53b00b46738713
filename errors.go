package assetfinder

import "errors"

var (
	// ErrNilRepository reports that a Finder was created without a
	// repository to index.
	ErrNilRepository = errors.New("assetfinder: repository is nil")

	// ErrClosed reports use of a Finder after Close.
	ErrClosed = errors.New("assetfinder: finder is closed")
)
