package pcap

import (
	"fmt"

	"FlowTagger/internal/engine/parser"
	"FlowTagger/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// Reader extracts flow records from an offline packet capture, so a raw
// .pcap file can be tagged without converting it to a textual flow log first.
type Reader struct {
	handle *pcap.Handle
}

// NewReader creates a new pcap reader for the given file path.
func NewReader(filePath string) (*Reader, error) {
	handle, err := pcap.OpenOffline(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap file '%s': %w", filePath, err)
	}
	return &Reader{handle: handle}, nil
}

// Close closes the pcap handle.
func (r *Reader) Close() {
	r.handle.Close()
}

// ReadRecords decodes every packet in the capture and hands one flow record
// per usable packet to fn. A packet yields a record when it carries an IPv4
// layer; the destination port comes from the TCP or UDP layer and is zero
// for portless protocols such as ICMP. Packets without an IPv4 layer are
// skipped, counted, and reported to the sink.
func (r *Reader) ReadRecords(sink model.Sink, fn func(model.FlowRecord)) (skipped uint64, err error) {
	if sink == nil {
		sink = model.NopSink{}
	}

	packetSource := gopacket.NewPacketSource(r.handle, r.handle.LinkType())
	for packet := range packetSource.Packets() {
		rec, ok := extract(packet, sink)
		if !ok {
			skipped++
			continue
		}
		fn(rec)
	}
	return skipped, nil
}

// extract pulls the destination port and protocol out of a decoded packet.
func extract(packet gopacket.Packet, sink model.Sink) (model.FlowRecord, bool) {
	l := packet.Layer(layers.LayerTypeIPv4)
	if l == nil {
		sink.Record(model.Event{
			Kind:   model.EventSkippedPacket,
			Detail: "not an IPv4 packet",
		})
		return model.FlowRecord{}, false
	}
	ipLayer := l.(*layers.IPv4)

	protoNum := uint8(ipLayer.Protocol)
	name, known := parser.ProtocolName(protoNum)
	if !known {
		sink.Record(model.Event{
			Kind:   model.EventUnknownProtocol,
			Detail: fmt.Sprintf("protocol number %d has no name, using '%s'", protoNum, name),
		})
	}

	var dstPort uint16
	if l := packet.Layer(layers.LayerTypeTCP); l != nil {
		dstPort = uint16(l.(*layers.TCP).DstPort)
	} else if l := packet.Layer(layers.LayerTypeUDP); l != nil {
		dstPort = uint16(l.(*layers.UDP).DstPort)
	}

	return model.FlowRecord{DstPort: dstPort, Protocol: name}, true
}
