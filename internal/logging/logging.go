package logging

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New builds the process logger. Components derive their own loggers with
// WithPrefix so every line carries its origin, e.g.
//
//	[scheduler] next backup scheduled time=2026-08-30T02:00:00Z
func New(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	logger.SetLevel(parseLevel(level))
	return logger
}

func parseLevel(level string) log.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return log.DebugLevel
	case "WARN", "WARNING":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
