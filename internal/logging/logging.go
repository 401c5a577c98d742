// Package logging configures the process-wide zerolog logger. Components
// receive child loggers scoped with a component field.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger writing human-readable output to w. The CLI is
// an interactive tool, so the console writer is the default; delivery and
// repository layers derive component loggers from this one.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}

	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(console).Level(lvl).With().Timestamp().Logger()
}

// Default returns the root logger for the dossier CLI, honoring
// DOSSIER_LOG_LEVEL when set.
func Default() zerolog.Logger {
	return New(os.Stderr, os.Getenv("DOSSIER_LOG_LEVEL"))
}
