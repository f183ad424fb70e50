package log

import (
	"io"
	"os"
)

// ConsoleOutput writes informational entries to stdout and errors to stderr.
type ConsoleOutput struct {
	stdout io.Writer
	stderr io.Writer
}

// NewConsoleOutput creates a console output bound to the process streams.
func NewConsoleOutput() *ConsoleOutput {
	return &ConsoleOutput{stdout: os.Stdout, stderr: os.Stderr}
}

// Write routes the formatted entry by severity.
func (o *ConsoleOutput) Write(entry *Entry, formatted []byte) error {
	w := o.stdout
	if entry.Level >= ErrorLevel {
		w = o.stderr
	}
	_, err := w.Write(formatted)
	return err
}

// Close is a no-op; the process owns stdout/stderr.
func (o *ConsoleOutput) Close() error { return nil }

// WriterOutput sends formatted entries to an arbitrary io.Writer. Useful in
// tests and for file outputs managed by the caller.
type WriterOutput struct {
	W io.Writer
}

func (o *WriterOutput) Write(_ *Entry, formatted []byte) error {
	_, err := o.W.Write(formatted)
	return err
}

func (o *WriterOutput) Close() error {
	if c, ok := o.W.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
