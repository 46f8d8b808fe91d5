// Package netsimlog builds the structured logger every other package
// accepts as a constructor argument. Grounded on
// aldrin-isaac-newtron/pkg/util/log.go's logrus construction and
// level/format setters, but built as an owned *logrus.Logger per process
// rather than a package-level global var — the teacher's singleton pattern
// is exactly what spec.md's DESIGN NOTES §9 says to avoid for shared
// mutable state, and a logger is no exception.
package netsimlog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New constructs a logrus.Logger writing text-formatted lines to w (or
// os.Stderr if w is nil) at the named level ("debug", "info", "warn",
// "error"; invalid or empty defaults to "info").
func New(level string, w io.Writer) *logrus.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// WithOperation returns an entry tagged with the command or phase it
// describes, matching the teacher's WithOperation convention.
func WithOperation(logger *logrus.Logger, operation string) *logrus.Entry {
	return logger.WithField("operation", operation)
}
