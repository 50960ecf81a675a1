package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"FlowTagger/internal/config"
)

// logLine builds a flow-log line with the destination port and protocol
// number at their fixed positions.
func logLine(port, proto string) string {
	fields := []string{
		"2", "123456789012", "eni-0a1b2c3d", "10.0.1.201",
		port, "49153", proto, "25", "20000",
		"1620140761", "1620140821", "ACCEPT", "OK", "-",
	}
	return strings.Join(fields, " ")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func textConfig(outputPath string) *config.Config {
	return &config.Config{
		Writers: []config.WriterDef{{
			Type:    "text",
			Enabled: true,
			Text:    config.TextConfig{OutputPath: outputPath},
		}},
	}
}

const testLookup = "443,tcp,sv_P2\n443,udp,sv_P2\n23,tcp,sv_P1\n80,tcp,web\n"

var testLogLines = []string{
	logLine("443", "6"),
	logLine("443", "17"),
	"2 123456789012 eni-0a1b2c3d", // truncated line, must be skipped
	logLine("80", "6"),
	logLine("999", "6"),
}

const wantReport = "Tag Counts:\n" +
	"Tag,Count\n" +
	"Untagged,1\n" +
	"sv_P2,2\n" +
	"web,1\n" +
	"\n" +
	"Port/Protocol Combination Counts:\n" +
	"Port,Protocol,Count\n" +
	"80,tcp,1\n" +
	"443,tcp,1\n" +
	"443,udp,1\n" +
	"999,tcp,1\n"

func TestRun_EndToEnd(t *testing.T) {
	// 1. Write the lookup table and a log with one truncated line.
	dir := t.TempDir()
	lookupPath := writeFile(t, dir, "lookup.csv", testLookup)
	logPath := writeFile(t, dir, "flow.log", strings.Join(testLogLines, "\n")+"\n")
	reportPath := filepath.Join(dir, "report.txt")

	run, err := New(textConfig(reportPath), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer run.Close()

	// 2. Run the full pipeline.
	rep, err := run.Run(lookupPath, logPath)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// 3. The truncated line is skipped, the four valid lines are counted.
	if rep.Records != 4 {
		t.Errorf("Expected 4 records, got %d", rep.Records)
	}
	if rep.SkippedLogLines != 1 {
		t.Errorf("Expected 1 skipped log line, got %d", rep.SkippedLogLines)
	}
	if rep.SkippedLookupLines != 0 {
		t.Errorf("Expected 0 skipped lookup lines, got %d", rep.SkippedLookupLines)
	}

	// 4. The written report matches the expected byte layout.
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	if string(data) != wantReport {
		t.Errorf("Report content:\n%s\nwant:\n%s", data, wantReport)
	}
}

func TestRun_WhitespaceRobustness(t *testing.T) {
	// The same log with trailing whitespace and extra blank lines must
	// produce a byte-identical report.
	dir := t.TempDir()
	lookupPath := writeFile(t, dir, "lookup.csv", testLookup)

	plain := strings.Join(testLogLines, "\n") + "\n"
	padded := ""
	for _, line := range testLogLines {
		padded += "  " + line + "   \n\n"
	}

	var reports [2]string
	for i, content := range []string{plain, padded} {
		logPath := writeFile(t, dir, "flow.log", content)
		reportPath := filepath.Join(dir, "report.txt")

		run, err := New(textConfig(reportPath), nil)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if _, err := run.Run(lookupPath, logPath); err != nil {
			t.Fatalf("Run %d failed: %v", i, err)
		}
		run.Close()

		data, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("Failed to read report: %v", err)
		}
		reports[i] = string(data)
	}

	if reports[0] != reports[1] {
		t.Errorf("Padded log produced a different report:\n%s\nvs:\n%s", reports[1], reports[0])
	}
}

func TestRun_ReverseOrderDeterminism(t *testing.T) {
	dir := t.TempDir()
	lookupPath := writeFile(t, dir, "lookup.csv", testLookup)

	reversed := make([]string, len(testLogLines))
	for i, line := range testLogLines {
		reversed[len(testLogLines)-1-i] = line
	}

	logPath := writeFile(t, dir, "flow.log", strings.Join(reversed, "\n")+"\n")
	reportPath := filepath.Join(dir, "report.txt")

	run, err := New(textConfig(reportPath), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer run.Close()

	if _, err := run.Run(lookupPath, logPath); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	if string(data) != wantReport {
		t.Errorf("Reversed input changed the report:\n%s\nwant:\n%s", data, wantReport)
	}
}

func TestRun_MissingInputs(t *testing.T) {
	dir := t.TempDir()
	lookupPath := writeFile(t, dir, "lookup.csv", testLookup)
	logPath := writeFile(t, dir, "flow.log", logLine("443", "6")+"\n")

	run, err := New(textConfig(filepath.Join(dir, "report.txt")), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer run.Close()

	if _, err := run.Run(filepath.Join(dir, "nope.csv"), logPath); err == nil {
		t.Error("Expected an error for a missing lookup table")
	}
	if _, err := run.Run(lookupPath, filepath.Join(dir, "nope.log")); err == nil {
		t.Error("Expected an error for a missing flow log")
	}
}

func TestNew_UnknownWriterType(t *testing.T) {
	cfg := &config.Config{
		Writers: []config.WriterDef{{Type: "carrier-pigeon", Enabled: true}},
	}
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("Expected an error for an unknown writer type")
	}
}

func TestNew_DisabledWritersSkipped(t *testing.T) {
	cfg := &config.Config{
		Writers: []config.WriterDef{
			{Type: "carrier-pigeon", Enabled: false},
			{Type: "text", Enabled: true, Text: config.TextConfig{OutputPath: filepath.Join(t.TempDir(), "r.txt")}},
		},
	}
	run, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("Disabled writer definitions must be ignored: %v", err)
	}
	run.Close()
}
