// Package logger provides modifications to charmbracelet/log's default logger to be used in various packages.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a new charm log for a component, writing to stderr.
func New(prefix string) *log.Logger {
	return NewWithWriter(os.Stderr, prefix)
}

// NewWithWriter creates a new charm log writing to w at the global level.
func NewWithWriter(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// Setup configures the package-level logger used across the module.
// Debug mode reports timestamps and debug lines; otherwise only warnings and up.
func Setup(w io.Writer, debug bool) {
	log.SetOutput(w)
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		return
	}
	log.SetLevel(log.WarnLevel)
	log.SetReportTimestamp(false)
}
