package runner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"FlowTagger/internal/config"
	"FlowTagger/internal/engine/aggregator"
	"FlowTagger/internal/engine/parser"
	"FlowTagger/internal/factory"
	"FlowTagger/internal/lookup"
	"FlowTagger/internal/model"
	"FlowTagger/pkg/pcap"

	_ "FlowTagger/internal/notification" // Registers the nats report writer
	_ "FlowTagger/internal/report"       // Registers the text and clickhouse report writers
)

const defaultMaxLineBytes = 1 << 20

// Runner executes one batch tagging run: load the lookup table, consume a
// flow source in a single sequential pass, and deliver the final report to
// every configured writer.
type Runner struct {
	cfg     *config.Config
	sink    model.Sink
	writers []model.Writer
}

// New creates a runner and its configured report writers. A nil config means
// the default (text writer only); a nil sink discards diagnostic events.
func New(cfg *config.Config, sink model.Sink) (*Runner, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if sink == nil {
		sink = model.NopSink{}
	}

	writers, err := factory.Create(cfg)
	if err != nil {
		return nil, err
	}

	return &Runner{cfg: cfg, sink: sink, writers: writers}, nil
}

// Close closes every writer held by the runner.
func (r *Runner) Close() error {
	var errs []error
	for _, w := range r.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close writer '%s': %w", w.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Run processes a textual flow log against the lookup table and delivers the
// report. The log is read line by line, never materialized as a whole.
func (r *Runner) Run(lookupPath, logPath string) (*model.Report, error) {
	table, err := lookup.Load(lookupPath, r.sink)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open flow log '%s': %w", logPath, err)
	}
	defer file.Close()

	agg := aggregator.New(table)
	skipped, err := r.scanLog(file, agg)
	if err != nil {
		return nil, err
	}

	return r.finish(agg, table, skipped)
}

// RunPcap processes an offline packet capture instead of a textual flow log,
// feeding the extracted records through the same aggregation path.
func (r *Runner) RunPcap(lookupPath, pcapPath string) (*model.Report, error) {
	table, err := lookup.Load(lookupPath, r.sink)
	if err != nil {
		return nil, err
	}

	reader, err := pcap.NewReader(pcapPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	agg := aggregator.New(table)
	skipped, err := reader.ReadRecords(r.sink, agg.Process)
	if err != nil {
		return nil, err
	}

	return r.finish(agg, table, skipped)
}

// scanLog feeds every parseable log line to the aggregator and returns the
// number of malformed lines skipped along the way.
func (r *Runner) scanLog(src io.Reader, agg *aggregator.Aggregator) (skipped uint64, err error) {
	maxLine := r.cfg.Engine.MaxLineBytes
	if maxLine <= 0 {
		maxLine = defaultMaxLineBytes
	}

	p := parser.New(r.sink)
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	for scanner.Scan() {
		rec, err := p.ParseLine(scanner.Text())
		if err != nil {
			if !errors.Is(err, parser.ErrEmptyLine) {
				skipped++
			}
			continue
		}
		agg.Process(rec)
	}
	if err := scanner.Err(); err != nil {
		return skipped, fmt.Errorf("failed to read flow log: %w", err)
	}

	return skipped, nil
}

// finish snapshots the counts, attaches the skip counters, and fans the
// report out to every writer. Writer failures are collected rather than
// aborting the fan-out, so one broken destination does not starve the rest.
func (r *Runner) finish(agg *aggregator.Aggregator, table *lookup.Table, skippedLogLines uint64) (*model.Report, error) {
	rep := agg.Report()
	rep.SkippedLogLines = skippedLogLines
	rep.SkippedLookupLines = table.Skipped()

	var errs []error
	for _, w := range r.writers {
		if err := w.Write(rep); err != nil {
			errs = append(errs, fmt.Errorf("writer '%s': %w", w.Name(), err))
		}
	}

	return rep, errors.Join(errs...)
}
