package logging

import (
	"io"
	"os"

	"cdr.dev/slog/v3"
	"cdr.dev/slog/v3/sloggers/sloghuman"
)

// DebugEnabled returns true if debug mode is enabled via PB_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("PB_DEBUG") != ""
}

// New builds the process logger writing human readable lines to w.
// Debug entries are emitted only when verbose or PB_DEBUG is set.
func New(w io.Writer, verbose bool) slog.Logger {
	logger := slog.Make(sloghuman.Sink(w)).Named("pb")
	if verbose || DebugEnabled() {
		logger = logger.Leveled(slog.LevelDebug)
	}
	return logger
}
