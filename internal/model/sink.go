package model

// EventKind classifies a diagnostic event raised while consuming input.
type EventKind int

const (
	// EventMalformedLookupLine is raised for a lookup-table line that was
	// skipped (too few fields or a non-numeric port).
	EventMalformedLookupLine EventKind = iota

	// EventMalformedLogLine is raised for a flow-log line that was skipped
	// (too few fields or a non-numeric port/protocol).
	EventMalformedLogLine

	// EventUnknownProtocol is raised when a record carries a protocol
	// number outside the translation table. The record is still counted.
	EventUnknownProtocol

	// EventSkippedPacket is raised in pcap mode for packets that carry no
	// usable destination port and protocol.
	EventSkippedPacket
)

// Event is one diagnostic occurrence reported by the engine.
type Event struct {
	Kind   EventKind
	Line   string // offending input line, if any
	Detail string
}

// Sink receives diagnostic events from the engine. Implementations decide
// whether to log, count, or drop them; the engine itself never logs.
type Sink interface {
	Record(e Event)
}

// NopSink discards every event.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(Event) {}
