package search

import (
	"context"
	"sort"

	"github.com/elmortem/assetfinder/crawler"
	"github.com/elmortem/assetfinder/data"
	"github.com/elmortem/assetfinder/log"
)

// Searcher crawls one asset's object graph and runs every registered
// processor over each visited node. Processors run in a fixed order,
// default partition first, the rest alphabetically by ID, so repeated
// searches over an unchanged graph produce identical results.
type Searcher struct {
	registry   *crawler.Registry
	processors []Processor
	log        *log.Logger
}

func NewSearcher(registry *crawler.Registry, processors []Processor, logger *log.Logger) *Searcher {
	if logger == nil {
		logger = log.Default()
	}
	ordered := make([]Processor, len(processors))
	copy(ordered, processors)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].ID(), ordered[j].ID()
		if a == DefaultProcessorID {
			return b != DefaultProcessorID
		}
		if b == DefaultProcessorID {
			return false
		}
		return a < b
	})
	return &Searcher{registry: registry, processors: ordered, log: logger}
}

// FindReferencePaths crawls root and returns everything it references,
// partitioned by processor. Cancellation returns the partial result
// gathered so far together with ctx.Err().
func (s *Searcher) FindReferencePaths(ctx context.Context, root data.Asset) (Result, error) {
	result := NewResult()
	if root == nil {
		return result, nil
	}
	source := root.AssetID()
	rootPath := string(source)
	if named, ok := root.(data.Named); ok && named.AssetName() != "" {
		rootPath = named.AssetName()
	}

	walker := crawler.NewWalker(s.registry, s.log)
	err := walker.Walk(ctx, root, rootPath, func(node any, tc *crawler.Context) bool {
		deeper := true
		for _, p := range s.processors {
			p.ProcessElement(node, tc, source, result)
			if !p.ShouldCrawlDeeper(node, tc) {
				deeper = false
			}
		}
		return deeper
	})
	return result, err
}
