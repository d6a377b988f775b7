package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)
}

type defaultLogger struct {
	zl zerolog.Logger
}

// NewLogger returns a Logger writing json lines to stderr. A pretty console output is used when
// pretty is true.
func NewLogger(level int, pretty bool) *defaultLogger {
	var w io.Writer = os.Stderr
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	return NewLoggerWithWriter(level, w)
}

func NewLoggerWithWriter(level int, w io.Writer) *defaultLogger {
	return &defaultLogger{
		zl: zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger(),
	}
}

// ParseLevel converts a config string to a level. Unknown strings map to INFO.
func ParseLevel(s string) int {
	switch s {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARNING
	case "error":
		return ERROR
	case "silence":
		return SILENCE
	default:
		return INFO
	}
}

func (l *defaultLogger) Debugf(msg string, a ...any) {
	l.zl.Debug().Msg(fmt.Sprintf(msg, a...))
}

func (l *defaultLogger) Infof(msg string, a ...any) {
	l.zl.Info().Msg(fmt.Sprintf(msg, a...))
}

func (l *defaultLogger) Warnf(msg string, a ...any) {
	l.zl.Warn().Msg(fmt.Sprintf(msg, a...))
}

func (l *defaultLogger) Errorf(msg string, a ...any) {
	l.zl.Error().Msg(fmt.Sprintf(msg, a...))
}

func toZerologLevel(level int) zerolog.Level {
	switch level {
	case DEBUG:
		return zerolog.DebugLevel
	case INFO:
		return zerolog.InfoLevel
	case WARNING:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}
