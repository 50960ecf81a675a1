package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"FlowTagger/internal/config"
	"FlowTagger/internal/factory"
	"FlowTagger/internal/model"

	"github.com/nats-io/nats.go"
)

func init() {
	factory.RegisterWriter("nats", func(def config.WriterDef) (model.Writer, error) {
		return NewPublisher(def.NATS)
	})
}

// Publisher publishes a JSON summary of a finished run to a NATS subject.
// It implements the model.Writer interface.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// runSummary is the wire format published for each completed run.
type runSummary struct {
	GeneratedAt        time.Time          `json:"generated_at"`
	Records            uint64             `json:"records"`
	SkippedLogLines    uint64             `json:"skipped_log_lines"`
	SkippedLookupLines uint64             `json:"skipped_lookup_lines"`
	TagCounts          map[string]uint64  `json:"tag_counts"`
	PortProtocolCounts []portProtoSummary `json:"port_protocol_counts"`
}

type portProtoSummary struct {
	Port     uint16 `json:"port"`
	Protocol string `json:"protocol"`
	Count    uint64 `json:"count"`
}

// NewPublisher creates a new NATS report publisher.
func NewPublisher(cfg config.NATSConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS server at %s: %w", cfg.URL, err)
	}
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Name returns the writer identifier.
func (p *Publisher) Name() string {
	return "nats"
}

// Write serializes the report summary to JSON and publishes it to the
// configured NATS subject.
func (p *Publisher) Write(rep *model.Report) error {
	summary := runSummary{
		GeneratedAt:        rep.GeneratedAt.UTC(),
		Records:            rep.Records,
		SkippedLogLines:    rep.SkippedLogLines,
		SkippedLookupLines: rep.SkippedLookupLines,
		TagCounts:          rep.TagCounts,
	}
	for key, count := range rep.PortProtocolCounts {
		summary.PortProtocolCounts = append(summary.PortProtocolCounts, portProtoSummary{
			Port:     key.DstPort,
			Protocol: key.Protocol,
			Count:    count,
		})
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish run summary: %w", err)
	}
	return p.nc.Flush()
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() error {
	if p.nc != nil {
		return p.nc.Drain()
	}
	return nil
}
