package model

import (
	"strings"
	"time"
)

// UntaggedLabel is the reserved tag for flow records whose (port, protocol)
// combination has no entry in the lookup table.
const UntaggedLabel = "Untagged"

// LookupKey identifies a destination-port/protocol combination. Protocol is
// always stored lowercase, which makes lookups case-insensitive.
type LookupKey struct {
	DstPort  uint16
	Protocol string
}

// FlowRecord holds the subset of a flow-log line needed for tagging.
// Protocol is the lowercase protocol name, or the decimal string of the
// protocol number when it is outside the translation table.
type FlowRecord struct {
	DstPort  uint16
	Protocol string
}

// Key returns the normalized lookup key for the record.
func (r FlowRecord) Key() LookupKey {
	return LookupKey{DstPort: r.DstPort, Protocol: strings.ToLower(r.Protocol)}
}

// Report is the immutable result of one aggregation run. It is handed to the
// configured writers after the input has been fully consumed.
type Report struct {
	GeneratedAt time.Time

	// TagCounts maps each tag (including UntaggedLabel) to the number of
	// flow records that matched it.
	TagCounts map[string]uint64

	// PortProtocolCounts maps each (port, protocol) combination to the
	// number of flow records carrying it.
	PortProtocolCounts map[LookupKey]uint64

	// Records is the number of successfully parsed flow records.
	Records uint64

	// SkippedLogLines and SkippedLookupLines count malformed lines that
	// were tolerated while reading the two inputs.
	SkippedLogLines    uint64
	SkippedLookupLines uint64
}
