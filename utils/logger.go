package utils

import (
	"io"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
)

// Logger provides leveled, printf-style logging throughout the application.
type Logger struct {
	l *log.Logger
}

// NewLogger creates a Logger writing to stderr at the given level
// ("debug", "info", "warn", "error"). Unknown levels fall back to info.
func NewLogger(level string) *Logger {
	return NewLoggerTo(os.Stderr, level)
}

// NewLoggerTo creates a Logger writing to w.
func NewLoggerTo(w io.Writer, level string) *Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return &Logger{l: &log.Logger{Handler: cli.New(w), Level: lvl}}
}

func (l *Logger) Info(format string, args ...any) {
	l.l.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.l.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.l.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.l.Debugf(format, args...)
}
