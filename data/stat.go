package data

// AssetStat carries the raw inputs of a dirty-check fingerprint.
type AssetStat struct {
	// ModTime is the last content write, unix nanoseconds.
	ModTime int64
	// StructureHash is the repository-provided structural/dependency
	// hash. Not cryptographic; collisions only cost extra work.
	StructureHash int64
}
