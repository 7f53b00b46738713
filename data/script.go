package data

// Script is a source-code-defining unit: one compilation file that
// declares types other units may reference statically. Scripts never
// change within a session, so resolution results may be cached
// indefinitely.
type Script struct {
	ID   ID
	Name string
	Path string

	// Source is raw file content, not a crawlable field.
	Source []byte `asset:"-"`
}

func (s *Script) AssetID() ID {
	return s.ID
}

func (s *Script) AssetName() string {
	return s.Name
}
