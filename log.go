package ffframe

import (
	"log/slog"
	"os"
)

// logLevel backs SetLogLevel: a slog.LevelVar so the threshold can change
// at runtime without replacing the handler every Stream already holds a
// reference to.
var logLevel = new(slog.LevelVar)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

// SetLogLevel sets the minimum level the package's default logger emits,
// spec.md §6's log-level constructor option. A Stream logs one Info line
// when it opens; decoder start, decode-pump end-of-stream and probe
// fallback scans log at slog.LevelDebug. Seek, decode and probe failures
// are returned as errors and are not logged, and the seek tiers emit no
// log lines.
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}
