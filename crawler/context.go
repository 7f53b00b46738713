package crawler

import (
	"reflect"

	"github.com/elmortem/assetfinder/data"
)

// Context describes one position reached during a crawl: the node
// itself, the symbolic path from the asset root and how the node was
// reached. Contexts are never mutated after creation; children are
// derived through Child and ChildField.
type Context struct {
	// Node is the object at this position. May be nil when a field holds
	// no value; the declared type in Field still carries information.
	Node any

	// Path is the human-readable breadcrumb from the asset root, e.g.
	// "Root/Child[SpriteRenderer].Sprite".
	Path string

	Depth int

	// Field describes the field the node was read from when it was
	// reached through one. Nil for component, child-composite and
	// property-table children.
	Field *FieldInfo

	Parent *Context

	// Ancestors lists the identity-bearing objects traversed so far.
	// Primitive intermediate values are excluded.
	Ancestors []any
}

// FieldInfo is the originating field descriptor of a context. Type is
// the declared type, which may differ from the runtime type of Node and
// survives a nil value.
type FieldInfo struct {
	Name string
	Type reflect.Type
}

// NewContext creates the root context of a crawl.
func NewContext(node any, path string) *Context {
	return &Context{Node: node, Path: path}
}

// Child derives a context for a node reached without a field descriptor.
func (c *Context) Child(node any, path string) *Context {
	return c.child(node, path, nil)
}

// ChildField derives a context for a node read from the described field.
func (c *Context) ChildField(node any, path string, field *FieldInfo) *Context {
	return c.child(node, path, field)
}

func (c *Context) child(node any, path string, field *FieldInfo) *Context {
	next := &Context{
		Node:   node,
		Path:   path,
		Depth:  c.Depth + 1,
		Field:  field,
		Parent: c,
	}
	if isEntity(c.Node) {
		ancestors := make([]any, 0, len(c.Ancestors)+1)
		ancestors = append(ancestors, c.Ancestors...)
		next.Ancestors = append(ancestors, c.Node)
	} else {
		// Contexts are append-only, so sharing the slice is safe.
		next.Ancestors = c.Ancestors
	}
	return next
}

// isEntity reports whether node is an addressable asset-like object that
// belongs in the ancestor chain.
func isEntity(node any) bool {
	if _, ok := node.(*data.Composite); ok {
		return true
	}
	if a, ok := node.(data.Asset); ok {
		return !a.AssetID().IsZero()
	}
	return false
}
