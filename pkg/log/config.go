package log

import (
	"fmt"
	stdlog "log"
)

// Config declaratively describes a logger.
type Config struct {
	// Level is the minimum level name: debug|info|warn|error.
	Level string `json:"level" yaml:"level"`
	// Format selects the formatter: text|json.
	Format string `json:"format" yaml:"format"`
}

// ApplyConfig builds a Logger from a declarative Config. Empty fields fall
// back to info/text.
func ApplyConfig(cfg *Config) (Logger, error) {
	level := InfoLevel
	if cfg.Level != "" {
		parsed, err := ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	var formatter Formatter
	switch cfg.Format {
	case "", "text":
		formatter = &TextFormatter{}
	case "json":
		formatter = &JSONFormatter{}
	default:
		return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
	}

	return NewLogger(
		WithLevel(level),
		WithFormatter(formatter),
		WithOutput(NewConsoleOutput()),
	), nil
}

// stdWriter adapts a Logger to io.Writer for the standard library logger.
type stdWriter struct {
	logger Logger
}

func (w stdWriter) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	w.logger.Info(msg)
	return len(p), nil
}

// RedirectStdLog routes standard library logs (used by Pebble) through the
// given Logger.
func RedirectStdLog(logger Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdWriter{logger: logger.WithComponent("stdlog")})
}

// ToStdLogger returns a *log.Logger whose output is routed through logger.
func ToStdLogger(logger Logger) *stdlog.Logger {
	return stdlog.New(stdWriter{logger: logger}, "", 0)
}
