package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"FlowTagger/internal/model"
)

// Field positions in the fixed flow-log line layout.
const (
	minFields     = 14
	dstPortField  = 4
	protocolField = 6
)

// ErrEmptyLine marks a blank input line. Blank lines are skipped silently
// and are not counted as malformed.
var ErrEmptyLine = errors.New("empty line")

// protocolNames is the fixed protocol-number-to-name translation table.
var protocolNames = map[uint8]string{
	1:  "icmp",
	6:  "tcp",
	17: "udp",
}

// ProtocolName translates an IANA protocol number to its lowercase name.
// Numbers outside the translation table fall back to their decimal string;
// the second return value reports whether the number was known.
func ProtocolName(num uint8) (string, bool) {
	if name, ok := protocolNames[num]; ok {
		return name, true
	}
	return strconv.Itoa(int(num)), false
}

// Parser extracts flow records from raw log lines. Diagnostic events are
// reported to the injected sink; the parser itself never logs.
type Parser struct {
	sink model.Sink
}

// New creates a parser reporting diagnostics to sink. A nil sink discards
// all events.
func New(sink model.Sink) *Parser {
	if sink == nil {
		sink = model.NopSink{}
	}
	return &Parser{sink: sink}
}

// ParseLine extracts the destination port and protocol from one flow-log
// line. Surrounding whitespace is tolerated. A non-nil error means the line
// must be skipped: ErrEmptyLine for blank lines, anything else for a
// malformed line (too few fields, non-numeric port or protocol). Malformed
// lines and unknown protocol numbers raise sink events; a record returned
// with a nil error always has a non-empty lowercase protocol name.
func (p *Parser) ParseLine(line string) (model.FlowRecord, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return model.FlowRecord{}, ErrEmptyLine
	}

	fields := strings.Fields(line)
	if len(fields) < minFields {
		return model.FlowRecord{}, p.malformed(line, fmt.Sprintf("line has %d fields, need at least %d", len(fields), minFields))
	}

	port, err := strconv.ParseUint(fields[dstPortField], 10, 16)
	if err != nil {
		return model.FlowRecord{}, p.malformed(line, fmt.Sprintf("invalid destination port '%s'", fields[dstPortField]))
	}

	proto, err := strconv.ParseUint(fields[protocolField], 10, 8)
	if err != nil {
		return model.FlowRecord{}, p.malformed(line, fmt.Sprintf("invalid protocol number '%s'", fields[protocolField]))
	}

	name, known := ProtocolName(uint8(proto))
	if !known {
		p.sink.Record(model.Event{
			Kind:   model.EventUnknownProtocol,
			Line:   line,
			Detail: fmt.Sprintf("protocol number %d has no name, using '%s'", proto, name),
		})
	}

	return model.FlowRecord{DstPort: uint16(port), Protocol: name}, nil
}

// malformed records a malformed-line event and returns it as an error.
func (p *Parser) malformed(line, detail string) error {
	p.sink.Record(model.Event{
		Kind:   model.EventMalformedLogLine,
		Line:   line,
		Detail: detail,
	})
	return errors.New(detail)
}
