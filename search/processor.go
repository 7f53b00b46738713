package search

import (
	"github.com/elmortem/assetfinder/crawler"
	"github.com/elmortem/assetfinder/data"
)

// Processor decides what counts as a reference and whether descent below
// a node is still useful. Multiple processors run side by side on every
// visited node; each records into its own partition of the result.
type Processor interface {
	// ID identifies this processor's partition in results and in the
	// persisted cache.
	ID() string

	// ProcessElement inspects node (and the declared field type in tc,
	// which survives a nil value) and records any matches into result.
	ProcessElement(node any, tc *crawler.Context, source data.ID, result Result)

	// ShouldCrawlDeeper reports whether children of node can still
	// contribute references for this processor. A false from any active
	// processor vetoes descent.
	ShouldCrawlDeeper(node any, tc *crawler.Context) bool
}
