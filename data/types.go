package data

import "reflect"

// ID is the stable, content-independent identifier of a storable unit.
// It survives renames and moves; the repository guarantees uniqueness
// within its scope.
type ID string

// IsZero reports whether the identifier is unset.
func (id ID) IsZero() bool {
	return id == ""
}

// Kind classifies storable units for repository enumeration queries.
type Kind string

const (
	KindComposite Kind = "composite"
	KindDocument  Kind = "document"
	KindMaterial  Kind = "material"
	KindScene     Kind = "scene"
	KindAtlas     Kind = "atlas"
	KindScript    Kind = "script"
)

// IndexedKinds returns the unit kinds the cache enumerates during a
// rebuild. Script units are resolved through the type processor instead
// of being crawled as roots.
func IndexedKinds() []Kind {
	return []Kind{KindComposite, KindDocument, KindMaterial, KindScene, KindAtlas}
}

// Asset is any individually addressable, identity-bearing unit in the
// repository.
type Asset interface {
	AssetID() ID
}

// Named is implemented by units that carry a display name. The searcher
// uses it for the root segment of reference paths.
type Named interface {
	AssetName() string
}

// FieldProvider lets a type enumerate its own crawlable fields instead
// of being discovered through reflection.
type FieldProvider interface {
	AssetFields() []Field
}

// Field is one crawlable member of an object: its path name, declared
// type and current value. Type is carried even when Value is nil so the
// type processor can match statically declared references.
type Field struct {
	Name  string
	Type  reflect.Type
	Value any
}

// Destroyed reports whether node is an invalidated proxy. Nodes opt into
// lifetime tracking by implementing the interface; everything else is
// considered alive.
func Destroyed(node any) bool {
	d, ok := node.(interface{ Destroyed() bool })
	return ok && d.Destroyed()
}
