package report

import (
	"fmt"
	"os"

	"FlowTagger/internal/config"
	"FlowTagger/internal/factory"
	"FlowTagger/internal/model"
)

func init() {
	factory.RegisterWriter("text", func(def config.WriterDef) (model.Writer, error) {
		return NewTextWriter(def.Text.OutputPath), nil
	})
}

// TextWriter writes the rendered report to a text file.
// It implements the model.Writer interface.
type TextWriter struct {
	outputPath string
}

// NewTextWriter creates a text report writer. An empty path means a
// timestamped default name is generated at write time.
func NewTextWriter(outputPath string) model.Writer {
	return &TextWriter{outputPath: outputPath}
}

// Name returns the writer identifier.
func (w *TextWriter) Name() string {
	return "text"
}

// Write renders the report and writes it to the configured path, or to
// output_results_<UTC_TIMESTAMP>.txt when no path was configured.
func (w *TextWriter) Write(rep *model.Report) error {
	path := w.outputPath
	if path == "" {
		path = fmt.Sprintf("output_results_%s.txt", rep.GeneratedAt.UTC().Format("20060102_150405"))
	}

	if err := os.WriteFile(path, []byte(Render(rep)), 0644); err != nil {
		return fmt.Errorf("failed to write report to '%s': %w", path, err)
	}
	return nil
}

// Close implements model.Writer; the text writer holds no resources.
func (w *TextWriter) Close() error {
	return nil
}
