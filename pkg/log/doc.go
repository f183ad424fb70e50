// Package log provides EzraVerify's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Entries flow through a
// Formatter (text or JSON) to one or more Outputs, keeping output and
// behavior consistent across the codebase.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("server"))
//	l.Info("server started", log.Str("http", ":8000"))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config, supporting
// JSON or text formatting.
//
// # Interop
//
// To integrate with libraries expecting *log.Logger (Pebble does), use
// RedirectStdLog; most code should remain against this facade.
package log
