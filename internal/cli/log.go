package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. Timestamps are only printed at debug
// level, where timing between pipeline phases matters.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		TimeFormat: "15:04:05.000",
		Level:      level,
	})
	l.SetReportTimestamp(level <= log.DebugLevel)
	return l
}

// levelFor maps the --verbose and --quiet flags to a log level.
func levelFor(verbose, quiet bool) log.Level {
	switch {
	case verbose:
		return LogDebug
	case quiet:
		return LogWarn
	}
	return LogInfo
}

// stopwatch logs the end of a command step together with how long it took.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) *stopwatch {
	return &stopwatch{logger: l, start: time.Now()}
}

// lap logs msg at info level with an elapsed field appended to keyvals.
func (s *stopwatch) lap(msg string, keyvals ...any) {
	elapsed := time.Since(s.start).Round(time.Millisecond)
	s.logger.Info(msg, append(keyvals, "elapsed", elapsed)...)
}
