package aggregator

import (
	"time"

	"FlowTagger/internal/lookup"
	"FlowTagger/internal/model"
)

// Aggregator consumes parsed flow records and maintains the two running
// count tables. It owns the tables exclusively for the lifetime of one run;
// the input is consumed sequentially, so no locking is involved.
type Aggregator struct {
	table              *lookup.Table
	tagCounts          map[string]uint64
	portProtocolCounts map[model.LookupKey]uint64
	records            uint64
}

// New creates an aggregator resolving tags against the given lookup table.
func New(table *lookup.Table) *Aggregator {
	return &Aggregator{
		table:              table,
		tagCounts:          make(map[string]uint64),
		portProtocolCounts: make(map[model.LookupKey]uint64),
	}
}

// Process updates both count tables for one parsed record. Every tag
// associated with the record's (port, protocol) key is incremented by one,
// so a single record can contribute to several tag counts; a record with no
// matching entry increments the Untagged count instead. The (port, protocol)
// count is incremented unconditionally.
func (a *Aggregator) Process(rec model.FlowRecord) {
	key := rec.Key()

	if tags := a.table.Lookup(key); len(tags) > 0 {
		for _, tag := range tags {
			a.tagCounts[tag]++
		}
	} else {
		a.tagCounts[model.UntaggedLabel]++
	}

	a.portProtocolCounts[key]++
	a.records++
}

// Records returns the number of records processed so far.
func (a *Aggregator) Records() uint64 {
	return a.records
}

// Report returns a snapshot of the count tables. The snapshot is a deep copy,
// so the aggregator's own maps never leak to writers.
func (a *Aggregator) Report() *model.Report {
	tagCounts := make(map[string]uint64, len(a.tagCounts))
	for tag, count := range a.tagCounts {
		tagCounts[tag] = count
	}

	portProtocolCounts := make(map[model.LookupKey]uint64, len(a.portProtocolCounts))
	for key, count := range a.portProtocolCounts {
		portProtocolCounts[key] = count
	}

	return &model.Report{
		GeneratedAt:        time.Now(),
		TagCounts:          tagCounts,
		PortProtocolCounts: portProtocolCounts,
		Records:            a.records,
	}
}
