// Package logging adapts logrus to the pipeline's leveled logger.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"apidoc/internal/port"
)

// Levels accepted by New, from most to least verbose.
const (
	LevelDebug   = "debug"
	LevelVerbose = "verbose"
	LevelInfo    = "info"
	LevelWarn    = "warn"
	LevelError   = "error"
	LevelSilent  = "silent"
)

// Logger maps debug to Trace and verbose to Debug so that every pipeline level
// has a distinct logrus level.
type Logger struct {
	log *logrus.Logger
}

var _ port.Logger = (*Logger)(nil)

// New builds a logger writing to out. format is "text" or "json".
func New(out io.Writer, level, format string) (*Logger, error) {
	log := logrus.New()
	log.SetOutput(out)

	switch strings.ToLower(level) {
	case LevelDebug:
		log.SetLevel(logrus.TraceLevel)
	case LevelVerbose:
		log.SetLevel(logrus.DebugLevel)
	case "", LevelInfo:
		log.SetLevel(logrus.InfoLevel)
	case LevelWarn, "warning":
		log.SetLevel(logrus.WarnLevel)
	case LevelError:
		log.SetLevel(logrus.ErrorLevel)
	case LevelSilent:
		log.SetOutput(io.Discard)
		log.SetLevel(logrus.PanicLevel)
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	switch strings.ToLower(format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return &Logger{log: log}, nil
}

func (l *Logger) entry(fields map[string]any) *logrus.Entry {
	return l.log.WithFields(logrus.Fields(fields))
}

func (l *Logger) Debug(msg string, fields map[string]any)   { l.entry(fields).Trace(msg) }
func (l *Logger) Verbose(msg string, fields map[string]any) { l.entry(fields).Debug(msg) }
func (l *Logger) Info(msg string, fields map[string]any)    { l.entry(fields).Info(msg) }
func (l *Logger) Warn(msg string, fields map[string]any)    { l.entry(fields).Warn(msg) }
func (l *Logger) Error(msg string, fields map[string]any)   { l.entry(fields).Error(msg) }

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(string, map[string]any)   {}
func (Nop) Verbose(string, map[string]any) {}
func (Nop) Info(string, map[string]any)    {}
func (Nop) Warn(string, map[string]any)    {}
func (Nop) Error(string, map[string]any)   {}
