package data

// Material is a parametrized-surface unit: a shader plus a bank of named
// texture slots. Texture slots are surfaced during crawling through the
// property table, not reflection.
type Material struct {
	ID         ID
	Name       string
	Shader     *Shader
	Properties []TextureProperty
}

// TextureProperty is one named texture slot of a material.
type TextureProperty struct {
	Name    string
	Texture *Texture
}

func (m *Material) AssetID() ID {
	return m.ID
}

func (m *Material) AssetName() string {
	return m.Name
}

// Shader is a shading-program unit referenced by materials.
type Shader struct {
	ID   ID
	Name string
}

func (s *Shader) AssetID() ID {
	return s.ID
}

func (s *Shader) AssetName() string {
	return s.Name
}

// Texture is an image unit.
type Texture struct {
	ID   ID
	Name string
}

func (t *Texture) AssetID() ID {
	return t.ID
}

func (t *Texture) AssetName() string {
	return t.Name
}

// Sprite is a renderable sub-image unit cut from a texture.
type Sprite struct {
	ID      ID
	Name    string
	Texture *Texture
}

func (s *Sprite) AssetID() ID {
	return s.ID
}

func (s *Sprite) AssetName() string {
	return s.Name
}

// SpriteRenderer is the built-in rendered-visual component: a single
// sprite reference surfaced during crawling as the ".Sprite" child.
type SpriteRenderer struct {
	Sprite *Sprite
}
