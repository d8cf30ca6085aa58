package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// consoleLogger adapts zerolog to the library's RequestLogger interface.
type consoleLogger struct {
	log zerolog.Logger
}

func newConsoleLogger(verbose bool) *consoleLogger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	return &consoleLogger{
		log: zerolog.New(writer).Level(level).With().Timestamp().Logger(),
	}
}

func (l *consoleLogger) Errorf(format string, v ...any) {
	l.log.Error().Msgf(format, v...)
}

func (l *consoleLogger) Warnf(format string, v ...any) {
	l.log.Warn().Msgf(format, v...)
}

func (l *consoleLogger) Debugf(format string, v ...any) {
	l.log.Debug().Msgf(format, v...)
}
