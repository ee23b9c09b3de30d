// Package logging builds the logrus logger shared by netintent components
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ParseLevel maps a config level name to a logrus level, defaulting to info
func ParseLevel(raw string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "error":
		return logrus.ErrorLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "debug", "trace":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// New creates a text logger writing to stdout at the given level
func New(level string) *logrus.Logger {
	return NewWithOutput(level, os.Stdout)
}

// NewWithOutput creates a text logger writing to w
func NewWithOutput(level string, w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(w)
	logger.SetLevel(ParseLevel(level))
	return logger
}

// Setup configures the logrus standard logger, which package-level entries
// in netintent derive from, and returns it
func Setup(level string, w io.Writer) *logrus.Logger {
	logger := logrus.StandardLogger()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(w)
	logger.SetLevel(ParseLevel(level))
	return logger
}

// Component returns an entry scoped to a named component. A nil logger falls
// back to the logrus standard logger.
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return logger.WithField("component", name)
}

// Discard returns an entry that drops everything, for tests
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
