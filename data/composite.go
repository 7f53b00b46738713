package data

// Composite is a scene-graph node: a named object carrying attached
// components and child composites. A composite with a non-empty ID is a
// storable unit in its own right (a template root); nodes embedded in a
// scene or under another composite usually have no identity of their
// own.
type Composite struct {
	ID         ID
	Name       string
	Components []any
	Children   []*Composite

	// Origin links an instantiated copy back to the stored unit it was
	// created from. Nil for units that are not instances.
	Origin *Origin

	// Dead marks the node as an invalidated proxy; crawls skip it.
	Dead bool
}

// Origin describes the corresponding-object relationship of an
// instantiated composite.
type Origin struct {
	// Source is the unit this composite is an instantiated copy of.
	Source ID
	// Variant is the base unit when Source itself is a variant.
	Variant ID
}

func (c *Composite) AssetID() ID {
	return c.ID
}

func (c *Composite) AssetName() string {
	return c.Name
}

func (c *Composite) Destroyed() bool {
	return c.Dead
}
