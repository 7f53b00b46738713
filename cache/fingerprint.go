package cache

import "github.com/elmortem/assetfinder/data"

// Combine folds a unit's change state into one comparable fingerprint.
// Equal fingerprints mean the unit has not changed since it was last
// indexed; differing fingerprints force reprocessing. Collisions only
// cost a redundant reprocess.
func Combine(stat data.AssetStat) int64 {
	h := int64(17)
	h = h*31 + stat.StructureHash
	h = h*31 + stat.ModTime
	return h
}
