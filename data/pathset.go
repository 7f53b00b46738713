package data

import (
	"encoding/json"

	"github.com/tidwall/btree"
)

// PathSet is an ordered set of traversal paths. Set semantics dedupe
// re-visits that produce identical path strings while keeping truly
// distinct paths as separate entries; ordering keeps query output and
// persisted form deterministic.
type PathSet struct {
	set btree.Set[string]
}

// NewPathSet builds a set from the given paths.
func NewPathSet(paths ...string) *PathSet {
	ps := &PathSet{}
	for _, p := range paths {
		ps.set.Insert(p)
	}
	return ps
}

// Add inserts path, reporting whether it was not already present.
func (ps *PathSet) Add(path string) bool {
	if ps.set.Contains(path) {
		return false
	}
	ps.set.Insert(path)
	return true
}

// Contains reports whether path is in the set.
func (ps *PathSet) Contains(path string) bool {
	return ps.set.Contains(path)
}

// Len returns the number of distinct paths.
func (ps *PathSet) Len() int {
	return ps.set.Len()
}

// Paths returns all paths in ascending order.
func (ps *PathSet) Paths() []string {
	out := make([]string, 0, ps.set.Len())
	ps.set.Scan(func(p string) bool {
		out = append(out, p)
		return true
	})
	return out
}

// Merge adds every path of other into ps.
func (ps *PathSet) Merge(other *PathSet) {
	if other == nil {
		return
	}
	other.set.Scan(func(p string) bool {
		ps.set.Insert(p)
		return true
	})
}

// Clone returns an independent copy.
func (ps *PathSet) Clone() *PathSet {
	return NewPathSet(ps.Paths()...)
}

// MarshalJSON encodes the set as a sorted array of strings.
func (ps *PathSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(ps.Paths())
}

// UnmarshalJSON decodes an array of strings.
func (ps *PathSet) UnmarshalJSON(b []byte) error {
	var paths []string
	if err := json.Unmarshal(b, &paths); err != nil {
		return err
	}
	ps.set = btree.Set[string]{}
	for _, p := range paths {
		ps.set.Insert(p)
	}
	return nil
}
