package logging

import (
	"io"
)

const (
	FormatText       = "text"
	FormatTextSimple = "text-simple"
	FormatJSON       = "json"
)

type Logger interface {
	WithField(key string, value interface{}) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Warning(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})

	SetLevel(level string) error
	SetFormat(logFormat string) error
	SetOutput(w io.Writer)

	// Writer returns a writer whose lines are logged at info level.
	// The caller must close it.
	Writer() *io.PipeWriter
}

func New() Logger {
	return newLogrus()
}
