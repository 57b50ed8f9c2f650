package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Init installs the default logger used by the CLI
func Init(verbose, noColor bool) {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}

	log.SetDefault(New(os.Stderr, "STACKVM", level, noColor))
}

// New creates a logger writing to w
func New(w io.Writer, prefix string, level log.Level, noColor bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    level == log.DebugLevel,
		ReportTimestamp: false,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
		Level:           level,
	})

	l.SetColorProfile(termenv.ANSI256)
	if noColor {
		l.SetColorProfile(termenv.Ascii)
	}

	return l
}
