package lookup

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"FlowTagger/internal/model"
)

// Table maps (destination port, protocol) combinations to the tags declared
// for them. A key that appears on several lines accumulates all of its tags
// in file order. The table is immutable once loaded.
type Table struct {
	entries map[model.LookupKey][]string
	skipped uint64
}

// Load reads a lookup table from a comma-delimited text file with one
// `dstport,protocol,tag` mapping per line. Fields are trimmed and the
// protocol is lowercased before the key is built. Malformed lines (fewer
// than three fields, or a port that is not a valid uint16) are skipped,
// counted, and reported to the sink; an unreadable file is a fatal error.
func Load(path string, sink model.Sink) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lookup table '%s': %w", path, err)
	}
	defer file.Close()

	if sink == nil {
		sink = model.NopSink{}
	}

	table := &Table{entries: make(map[model.LookupKey][]string)}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Only the first three fields matter; anything after the tag
		// is ignored.
		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			table.skipped++
			sink.Record(model.Event{
				Kind:   model.EventMalformedLookupLine,
				Line:   line,
				Detail: fmt.Sprintf("line has %d fields, need 3", len(parts)),
			})
			continue
		}

		port, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 16)
		if err != nil {
			table.skipped++
			sink.Record(model.Event{
				Kind:   model.EventMalformedLookupLine,
				Line:   line,
				Detail: fmt.Sprintf("invalid destination port '%s'", strings.TrimSpace(parts[0])),
			})
			continue
		}

		key := model.LookupKey{
			DstPort:  uint16(port),
			Protocol: strings.ToLower(strings.TrimSpace(parts[1])),
		}
		table.entries[key] = append(table.entries[key], strings.TrimSpace(parts[2]))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lookup table '%s': %w", path, err)
	}

	return table, nil
}

// Lookup returns the tags for a key, or nil when the key has no entry.
// The caller must not modify the returned slice.
func (t *Table) Lookup(key model.LookupKey) []string {
	return t.entries[key]
}

// Len returns the number of distinct keys in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Skipped returns the number of malformed lines tolerated during loading.
func (t *Table) Skipped() uint64 {
	return t.skipped
}
