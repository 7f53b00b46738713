package crawler

import (
	"context"
	"reflect"

	"github.com/elmortem/assetfinder/data"
	"github.com/elmortem/assetfinder/log"
)

// VisitFunc inspects one node; returning false stops descent below it.
type VisitFunc func(node any, tc *Context) bool

// Walker drives one depth-first pre-order crawl over an object graph.
// Each node is visited at most once per crawl, keyed by reference
// identity, so diamond-shaped and cyclic graphs terminate. A Walker is
// good for a single Walk at a time.
type Walker struct {
	registry *Registry
	log      *log.Logger
	visited  map[visitKey]struct{}
}

// visitKey pairs the address with the dynamic type. A pointer to a
// struct and a pointer to its first field share an address but are
// distinct nodes.
type visitKey struct {
	typ reflect.Type
	ptr uintptr
}

func NewWalker(registry *Registry, logger *log.Logger) *Walker {
	if logger == nil {
		logger = log.Default()
	}
	return &Walker{registry: registry, log: logger}
}

// Walk crawls the graph rooted at root. Visit runs for every reachable
// node, including nil-valued field children (their declared type can
// still match). The walk stops early when ctx is cancelled; the error is
// ctx.Err() in that case and nil otherwise.
func (w *Walker) Walk(ctx context.Context, root any, rootPath string, visit VisitFunc) error {
	if root == nil || data.Destroyed(root) {
		return nil
	}
	w.visited = make(map[visitKey]struct{})
	return w.walk(ctx, NewContext(root, rootPath), visit)
}

func (w *Walker) walk(ctx context.Context, tc *Context, visit VisitFunc) error {
	node := tc.Node
	if data.Destroyed(node) {
		return nil
	}
	if key, ok := identityKey(node); ok {
		if _, seen := w.visited[key]; seen {
			return nil
		}
		w.visited[key] = struct{}{}
	}

	deeper := w.safeVisit(node, tc, visit)
	if !deeper || node == nil {
		return nil
	}

	selected, ok := w.registry.Select(node)
	if !ok {
		return nil
	}
	return w.crawlChildren(ctx, selected, node, tc, visit)
}

// crawlChildren consumes the selected crawler's child sequence. A panic
// during enumeration (reflective access gone wrong) is logged and ends
// enumeration for this node only.
func (w *Walker) crawlChildren(ctx context.Context, c Crawler, node any, tc *Context, visit VisitFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("enumerating children of %s failed: %v", tc.Path, r)
		}
	}()
	for child := range c.Children(node, tc) {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err = w.walk(ctx, child, visit); err != nil {
			return err
		}
	}
	return nil
}

// safeVisit shields the crawl from per-node panics. A panicking node
// contributes no references and descent stops there.
func (w *Walker) safeVisit(node any, tc *Context, visit VisitFunc) (deeper bool) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("processing %s failed: %v", tc.Path, r)
			deeper = false
		}
	}()
	return visit(node, tc)
}

// identityKey derives the per-crawl dedupe key from a node's reference
// identity. Value nodes are not tracked; they cannot form cycles. Node
// equality or hashing is never consulted.
func identityKey(node any) (visitKey, bool) {
	v := reflect.ValueOf(node)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return visitKey{typ: v.Type(), ptr: v.Pointer()}, true
	}
	return visitKey{}, false
}
