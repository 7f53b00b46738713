package search

import (
	"github.com/elmortem/assetfinder/crawler"
	"github.com/elmortem/assetfinder/data"
)

// DefaultProcessorID is the partition identifier of the default
// processor; legacy cache files without partitions fold into it.
const DefaultProcessorID = "assetfinder.default"

// Resolver canonicalizes a unit identity to its resident asset. The
// default processor uses it during alias resolution to reject stale
// proxies: a reference only counts when the resolved asset reports the
// identity it was resolved from.
type Resolver interface {
	Canonical(id data.ID) data.Asset
}

// DefaultProcessor records a reference whenever the visited node is a
// storable unit, and additionally resolves composite instance/variant
// origins to their source units, so searching for a template also finds
// its instances.
type DefaultProcessor struct {
	resolver Resolver
}

// NewDefaultProcessor builds the processor. A nil resolver disables the
// stale-proxy guard but keeps alias resolution itself.
func NewDefaultProcessor(resolver Resolver) *DefaultProcessor {
	return &DefaultProcessor{resolver: resolver}
}

func (*DefaultProcessor) ID() string {
	return DefaultProcessorID
}

func (p *DefaultProcessor) ProcessElement(node any, tc *crawler.Context, source data.ID, result Result) {
	asset, ok := node.(data.Asset)
	if !ok || data.Destroyed(node) {
		return
	}
	if id := asset.AssetID(); !id.IsZero() {
		p.add(result, source, id, tc.Path)
	}

	comp, ok := node.(*data.Composite)
	if !ok || comp.Origin == nil {
		return
	}
	for _, origin := range []data.ID{comp.Origin.Source, comp.Origin.Variant} {
		if origin.IsZero() || !p.canonical(origin) {
			continue
		}
		p.add(result, source, origin, tc.Path)
	}
}

// ShouldCrawlDeeper vetoes descent into units that are themselves
// independently indexed: an asset reached through a field boundary is
// fully represented by its identity and will be crawled as its own root
// elsewhere.
func (p *DefaultProcessor) ShouldCrawlDeeper(node any, tc *crawler.Context) bool {
	asset, ok := node.(data.Asset)
	if !ok || asset.AssetID().IsZero() {
		return true
	}
	return tc.Field == nil
}

func (p *DefaultProcessor) canonical(id data.ID) bool {
	if p.resolver == nil {
		return true
	}
	resolved := p.resolver.Canonical(id)
	return resolved != nil && resolved.AssetID() == id
}

func (p *DefaultProcessor) add(result Result, source, target data.ID, path string) {
	// A unit never references itself.
	if target == source {
		return
	}
	result.Add(DefaultProcessorID, target, path)
}
