package report

import (
	"fmt"
	"sort"
	"strings"

	"FlowTagger/internal/model"
)

// Render converts the report's count tables into the two-section text
// layout. Both sections are explicitly sorted before emission, so the output
// is byte-identical for identical counts regardless of map iteration order
// or input ordering. Tags sort in byte order; port/protocol combinations
// sort numerically by port, then by protocol name.
func Render(rep *model.Report) string {
	var b strings.Builder

	b.WriteString("Tag Counts:\n")
	b.WriteString("Tag,Count\n")
	tags := make([]string, 0, len(rep.TagCounts))
	for tag := range rep.TagCounts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		fmt.Fprintf(&b, "%s,%d\n", tag, rep.TagCounts[tag])
	}

	b.WriteString("\nPort/Protocol Combination Counts:\n")
	b.WriteString("Port,Protocol,Count\n")
	keys := make([]model.LookupKey, 0, len(rep.PortProtocolCounts))
	for key := range rep.PortProtocolCounts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].DstPort != keys[j].DstPort {
			return keys[i].DstPort < keys[j].DstPort
		}
		return keys[i].Protocol < keys[j].Protocol
	})
	for _, key := range keys {
		fmt.Fprintf(&b, "%d,%s,%d\n", key.DstPort, key.Protocol, rep.PortProtocolCounts[key])
	}

	return b.String()
}
