package model

// Writer delivers a finished report to a single destination.
type Writer interface {
	// Write takes the final report and persists or publishes it.
	Write(rep *Report) error

	// Name returns a short identifier for the writer, used in diagnostics.
	Name() string

	// Close releases any connection held by the writer.
	Close() error
}
