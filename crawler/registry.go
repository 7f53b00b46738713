package crawler

import (
	"reflect"
	"sync"
)

// Registry holds crawlers in a fixed evaluation order. Crawlers may
// overlap in applicability; Select resolves the ambiguity by returning
// the first registered match, so registration order is part of the
// contract.
type Registry struct {
	mu       sync.RWMutex
	crawlers []Crawler
}

// NewRegistry builds a registry with the given crawlers, in order.
func NewRegistry(crawlers ...Crawler) *Registry {
	r := &Registry{}
	r.crawlers = append(r.crawlers, crawlers...)
	return r
}

// DefaultRegistry wires the built-in crawlers: composite nodes first,
// scene documents second and the reflective field crawler as the
// fallback. The ignore set suppresses structural-only component types
// during composite traversal.
func DefaultRegistry(ignore ...reflect.Type) *Registry {
	return NewRegistry(
		NewCompositeCrawler(ignore...),
		NewSceneCrawler(),
		NewFieldsCrawler(),
	)
}

// Register appends a crawler after all previously registered ones.
func (r *Registry) Register(c Crawler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.crawlers = append(r.crawlers, c)
}

// Crawlers returns a snapshot of the registered crawlers in evaluation
// order.
func (r *Registry) Crawlers() []Crawler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Crawler, len(r.crawlers))
	copy(out, r.crawlers)
	return out
}

// Select returns the first crawler that can handle node.
func (r *Registry) Select(node any) (Crawler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.crawlers {
		if c.CanCrawl(node) {
			return c, true
		}
	}
	return nil, false
}
