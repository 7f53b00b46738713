package search

import "github.com/elmortem/assetfinder/data"

// Result accumulates one asset's outgoing references, partitioned by the
// processor that discovered them: processor ID → target identity →
// traversal paths.
type Result map[string]map[data.ID]*data.PathSet

func NewResult() Result {
	return make(Result)
}

// Add records path as a reference to target discovered by the given
// processor. Duplicate paths collapse through set semantics.
func (r Result) Add(processorID string, target data.ID, path string) {
	targets := r[processorID]
	if targets == nil {
		targets = make(map[data.ID]*data.PathSet)
		r[processorID] = targets
	}
	paths := targets[target]
	if paths == nil {
		paths = data.NewPathSet()
		targets[target] = paths
	}
	paths.Add(path)
}

// Targets returns the target→paths map of one processor partition; nil
// when the partition is empty.
func (r Result) Targets(processorID string) map[data.ID]*data.PathSet {
	return r[processorID]
}

// Len counts the recorded (processor, target) pairs.
func (r Result) Len() int {
	n := 0
	for _, targets := range r {
		n += len(targets)
	}
	return n
}
