package report

import (
	"context"
	"fmt"

	"FlowTagger/internal/config"
	"FlowTagger/internal/factory"
	"FlowTagger/internal/model"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

func init() {
	factory.RegisterWriter("clickhouse", func(def config.WriterDef) (model.Writer, error) {
		return NewClickHouseWriter(def.ClickHouse)
	})
}

const createTagCountsStatement = `
CREATE TABLE IF NOT EXISTS tag_counts (
    RunTime DateTime,
    Tag     String,
    Count   UInt64
) ENGINE = MergeTree()
ORDER BY (RunTime, Tag);
`

const createPortProtocolCountsStatement = `
CREATE TABLE IF NOT EXISTS port_protocol_counts (
    RunTime  DateTime,
    Port     UInt16,
    Protocol String,
    Count    UInt64
) ENGINE = MergeTree()
ORDER BY (RunTime, Port, Protocol);
`

// ClickHouseWriter implements the model.Writer interface for ClickHouse.
// Each run inserts one row per tag count and one per port/protocol count,
// keyed by the run timestamp.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter creates a new ClickHouse writer and ensures both
// count tables exist.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (model.Writer, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	for _, stmt := range []string{createTagCountsStatement, createPortProtocolCountsStatement} {
		if err := conn.Exec(context.Background(), stmt); err != nil {
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}

	return &ClickHouseWriter{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})

	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Name returns the writer identifier.
func (w *ClickHouseWriter) Name() string {
	return "clickhouse"
}

// Write inserts the report's count tables into ClickHouse.
func (w *ClickHouseWriter) Write(rep *model.Report) error {
	if len(rep.TagCounts) == 0 && len(rep.PortProtocolCounts) == 0 {
		return nil // Nothing to write
	}

	runTime := rep.GeneratedAt.UTC()

	batch, err := w.conn.PrepareBatch(context.Background(), "INSERT INTO tag_counts")
	if err != nil {
		return fmt.Errorf("failed to prepare tag_counts batch: %w", err)
	}
	for tag, count := range rep.TagCounts {
		if err := batch.Append(runTime, tag, count); err != nil {
			return fmt.Errorf("failed to append tag count to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send tag_counts batch: %w", err)
	}

	batch, err = w.conn.PrepareBatch(context.Background(), "INSERT INTO port_protocol_counts")
	if err != nil {
		return fmt.Errorf("failed to prepare port_protocol_counts batch: %w", err)
	}
	for key, count := range rep.PortProtocolCounts {
		if err := batch.Append(runTime, key.DstPort, key.Protocol, count); err != nil {
			return fmt.Errorf("failed to append port/protocol count to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send port_protocol_counts batch: %w", err)
	}

	return nil
}

// Close closes the ClickHouse connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}
