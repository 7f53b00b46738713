package crawler

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/elmortem/assetfinder/data"
)

// CompositeCrawler enumerates a scene-graph composite: one child context
// per attached component (path suffix "[TypeName]"), then one per child
// composite (path suffix "/childName"). Component types in the ignore
// set are structural-only and skipped.
type CompositeCrawler struct {
	ignore map[reflect.Type]struct{}
}

// NewCompositeCrawler builds the crawler. Ignore types may be given as
// pointer or value types; both forms match.
func NewCompositeCrawler(ignore ...reflect.Type) *CompositeCrawler {
	c := &CompositeCrawler{ignore: make(map[reflect.Type]struct{}, len(ignore))}
	for _, t := range ignore {
		c.ignore[baseType(t)] = struct{}{}
	}
	return c
}

func (c *CompositeCrawler) CanCrawl(node any) bool {
	_, ok := node.(*data.Composite)
	return ok
}

func (c *CompositeCrawler) Children(node any, tc *Context) iter.Seq[*Context] {
	return func(yield func(*Context) bool) {
		comp, ok := node.(*data.Composite)
		if !ok || comp == nil || comp.Destroyed() {
			return
		}
		for _, attached := range comp.Components {
			if attached == nil {
				continue
			}
			t := baseType(reflect.TypeOf(attached))
			if _, skip := c.ignore[t]; skip {
				continue
			}
			path := fmt.Sprintf("%s[%s]", tc.Path, typeName(t))
			if !yield(tc.Child(attached, path)) {
				return
			}
		}
		for _, child := range comp.Children {
			if child == nil || child.Destroyed() {
				continue
			}
			if !yield(tc.Child(child, tc.Path+"/"+child.Name)) {
				return
			}
		}
	}
}

// baseType strips pointer indirections.
func baseType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// typeName returns the bare type name, falling back to the full string
// form for unnamed types.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if n := t.Name(); n != "" {
		return n
	}
	return t.String()
}
