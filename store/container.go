package store

import "github.com/elmortem/assetfinder/data"

// Container is the serialized shape of the whole reference cache.
type Container struct {
	LastRebuildTime     int64         `json:"lastRebuildTime"`
	LastRebuildDuration int64         `json:"lastRebuildDuration,omitempty"`
	Entries             []Entry       `json:"entries"`
	Fingerprints        []Fingerprint `json:"fingerprints"`
}

// Entry holds everything known to reference one target unit. Current
// files carry Groups; References is the pre-partition flat shape and is
// only read, never written.
type Entry struct {
	Identity   data.ID     `json:"identity"`
	Groups     []Group     `json:"groups,omitempty"`
	References []Reference `json:"references,omitempty"`
}

// Group is one processor's partition of an entry.
type Group struct {
	ProcessorID string      `json:"processorId"`
	References  []Reference `json:"references"`
}

// Reference records one referencing unit and the traversal paths inside
// it that reach the entry's target.
type Reference struct {
	Identity data.ID  `json:"identity"`
	Paths    []string `json:"paths"`
}

// Fingerprint pins the state one unit had when it was last indexed.
type Fingerprint struct {
	Identity    data.ID `json:"identity"`
	Fingerprint int64   `json:"fingerprint"`
}

// Normalize migrates legacy flat entries in place: references recorded
// before partitioning fold into the group named by defaultProcessorID.
func (c *Container) Normalize(defaultProcessorID string) {
	for i := range c.Entries {
		e := &c.Entries[i]
		if len(e.References) == 0 {
			continue
		}
		e.Groups = append(e.Groups, Group{
			ProcessorID: defaultProcessorID,
			References:  e.References,
		})
		e.References = nil
	}
}
