package report

import "io"

// Writer renders a report to a configured destination.
//
// Design decision: We use our own interface instead of io.Writer
// because writers consume reports, not raw bytes. This keeps format
// selection a construction-time concern and lets MultiWriter fan one
// report out to several destinations.
type Writer interface {
	// Write renders the report. It returns the number of bytes written
	// and any error encountered.
	Write(report *Report) (int, error)
}

// MultiWriter writes a report to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the report with every writer, stopping on the first
// error. It returns the total bytes written.
func (m *MultiWriter) Write(report *Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the shared output destination.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
