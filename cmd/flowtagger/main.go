package main

import (
	"flag"
	"fmt"
	"os"

	"FlowTagger/internal/config"
	"FlowTagger/internal/engine/runner"
	"FlowTagger/internal/model"

	"github.com/sirupsen/logrus"
)

// logrusSink forwards engine diagnostics to the CLI logger. Per-line skips
// are debug noise; unknown protocols are worth a warning.
type logrusSink struct {
	log *logrus.Logger
}

func (s *logrusSink) Record(e model.Event) {
	switch e.Kind {
	case model.EventUnknownProtocol:
		s.log.WithField("line", e.Line).Warn(e.Detail)
	default:
		s.log.WithField("line", e.Line).Debug(e.Detail)
	}
}

func main() {
	output := flag.String("o", "", "output file name (default: output_results_<UTC_TIMESTAMP>.txt)")
	verbosity := flag.Int("v", 1, "verbosity level: 0 (errors), 1 (info), 2 (debug)")
	logFile := flag.String("l", "", "log to a file instead of the console")
	configPath := flag.String("config", "", "optional YAML config for report writers")
	pcapMode := flag.Bool("pcap", false, "treat the flow input as an offline packet capture")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <lookup_file> <log_file>\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Parse flow logs and map them to tags using a lookup table.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	lookupPath, logPath := flag.Arg(0), flag.Arg(1)

	logger := logrus.New()
	switch *verbosity {
	case 0:
		logger.SetLevel(logrus.ErrorLevel)
	case 2:
		logger.SetLevel(logrus.DebugLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			logger.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			logger.Fatalf("Failed to load config: %v", err)
		}
	}
	if *output != "" {
		for i := range cfg.Writers {
			if cfg.Writers[i].Type == "text" {
				cfg.Writers[i].Text.OutputPath = *output
			}
		}
	}

	run, err := runner.New(cfg, &logrusSink{log: logger})
	if err != nil {
		logger.Fatalf("Failed to initialize: %v", err)
	}
	defer run.Close()

	logger.Info("Loading lookup table and parsing flow logs...")

	var rep *model.Report
	if *pcapMode {
		rep, err = run.RunPcap(lookupPath, logPath)
	} else {
		rep, err = run.Run(lookupPath, logPath)
	}
	if err != nil {
		logger.Fatalf("Run failed: %v", err)
	}

	logger.Infof("Processed %d flow records (%d log lines skipped, %d lookup lines skipped).",
		rep.Records, rep.SkippedLogLines, rep.SkippedLookupLines)
	logger.Info("Processing complete.")
}
