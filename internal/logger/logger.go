package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var Log = newLogger(os.Stderr, zerolog.InfoLevel)

// Init configures the shared logger. Diagnostics always go to stderr so
// stdout stays clean for command output.
func Init(w io.Writer, debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	Log = newLogger(w, level)
	Log.Debug().Msg("Debug logging enabled")
}

// WithRun tags every following entry with the run id.
func WithRun(runID string) {
	Log = Log.With().Str("run_id", runID).Logger()
}

// Redact keeps enough of a token to correlate log lines without leaking it.
func Redact(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:6] + "…"
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
