// Package stdlogger adapts the global zerolog logger to printf style logger interfaces,
// as expected by gorm and similar libraries.
package stdlogger

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger writes printf style messages to the global zerolog logger.
type Logger struct {
	// PrintfLevel is the level used by Printf.
	PrintfLevel zerolog.Level
	component   string
}

// New returns a logger that reports Printf calls on debug level.
func New() *Logger {
	return &Logger{PrintfLevel: zerolog.DebugLevel}
}

// NewComponent returns a logger tagging every message with the component name.
func NewComponent(component string, printfLevel zerolog.Level) *Logger {
	return &Logger{PrintfLevel: printfLevel, component: component}
}

func (l *Logger) event(level zerolog.Level) *zerolog.Event {
	e := log.WithLevel(level)
	if l.component != "" {
		e = e.Str("component", l.component)
	}

	return e
}

// Printf implements gorm's logger.Writer.
func (l *Logger) Printf(format string, v ...interface{}) {
	// gorm prefixes its messages with the caller and a newline
	l.event(l.PrintfLevel).Msgf(strings.ReplaceAll(format, "\n", " "), v...)
}

// Debugf logs on debug level.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.event(zerolog.DebugLevel).Msgf(format, v...)
}

// Infof logs on info level.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.event(zerolog.InfoLevel).Msgf(format, v...)
}

// Warningf logs on warn level.
func (l *Logger) Warningf(format string, v ...interface{}) {
	l.event(zerolog.WarnLevel).Msgf(format, v...)
}

// Errorf logs on error level.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.event(zerolog.ErrorLevel).Msgf(format, v...)
}
