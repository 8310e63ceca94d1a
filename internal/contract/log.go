package contract

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DefaultLogLevel keeps stderr quiet unless something is wrong.
const DefaultLogLevel = "warn"

// Logger is the diagnostics logger. Results go to stdout; this writes to stderr.
var Logger = newLogger(os.Stderr)

func newLogger(w io.Writer) *log.Logger {
	l := log.New()
	l.SetOutput(w)
	l.SetLevel(log.WarnLevel)
	l.SetReportCaller(false)
	l.SetFormatter(&log.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
	return l
}

// ParseLogLevel parses a level name such as "debug" or "warn".
func ParseLogLevel(s string) (log.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultLogLevel
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		return log.WarnLevel, fmt.Errorf("invalid log level '%s'. must be panic, fatal, error, warn, info, debug, trace", s)
	}
	return level, nil
}

// SetLogLevel changes the level of the diagnostics logger.
func SetLogLevel(level log.Level) {
	Logger.SetLevel(level)
}

// SetLogOutput redirects diagnostics, mainly for tests.
func SetLogOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// LogFatal logs an error and exits the program through Logger.ExitFunc.
func LogFatal(msg string, err error) {
	Logger.WithError(err).Fatal(msg)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Logger.WithError(err).Warn(msg)
}
