package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// New returns a zerolog logger for diagnostic output. The plugin line on
// stdout is the machine-read contract, so diagnostics always go to a separate
// writer (stderr in practice). Verbosity 0 logs warnings and errors only,
// 1 adds info, 2 and above adds debug.
func New(w io.Writer, verbosity int) zerolog.Logger {
	level := zerolog.WarnLevel
	switch {
	case verbosity >= 2:
		level = zerolog.DebugLevel
	case verbosity == 1:
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
