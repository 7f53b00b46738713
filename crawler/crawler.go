package crawler

import "iter"

// Crawler enumerates the children of one category of node during a
// crawl.
type Crawler interface {
	// CanCrawl reports whether this crawler handles node.
	CanCrawl(node any) bool

	// Children yields one derived context per child of node. The
	// sequence is finite, lazy and consumed in a single pass.
	Children(node any, tc *Context) iter.Seq[*Context]
}
