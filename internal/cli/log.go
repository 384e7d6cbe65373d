// Package cli implements the modelviz command-line interface.
//
// This package provides commands for extracting entity models and call
// graphs from compiled modules, rendering them through Graphviz, exporting
// them to SQLite, Neo4j or JSON, and serving the same pipeline over HTTP.
// The CLI is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - entities: extract entity types, print their tables, render the entity graph
//   - calls: walk the cross-module call graph from an entry method
//   - inspect: list the types and methods of a module
//   - render: render a DOT document or an exported graph JSON file
//   - serve: run the HTTP API
//   - cache, history: manage the result cache and the run history
//
// # Configuration
//
// Settings are read from --config, ./modelviz.toml or the user config
// directory, in that order. Flags override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of a step together with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at debug level with keyvals and the elapsed time rounded
// to the millisecond.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Debug(msg, keyvals...)
}
