package config

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

type LogLevel int

const (
	// ErrLevel=1 - the minimum level of logging.
	ErrLevel LogLevel = iota + 1

	// WarnLevel=2 - the level for logging warnings, and errors. Precision
	// losses such as unresolved call targets are reported here.
	WarnLevel

	// InfoLevel=3 - the level for logging high-level information, results
	InfoLevel

	// DebugLevel=4 - the level for per-sweep and per-collapse information.
	DebugLevel

	// TraceLevel=5 - the level for tracing every processed statement. Only useful on small programs.
	TraceLevel
)

func (l LogLevel) logrus() logrus.Level {
	switch l {
	case ErrLevel:
		return logrus.ErrorLevel
	case WarnLevel:
		return logrus.WarnLevel
	case InfoLevel:
		return logrus.InfoLevel
	case DebugLevel:
		return logrus.DebugLevel
	}
	return logrus.TraceLevel
}

// LogGroup is the logger of an analysis run.
type LogGroup struct {
	level  LogLevel
	logger *logrus.Logger
	// warned holds the keys passed to WarnOnce.
	warned sync.Map
}

// NewLogGroup returns a log group that is configured to the logging settings stored inside the config
func NewLogGroup(config *Config) *LogGroup {
	level := LogLevel(config.LogLevel)
	if level == 0 {
		level = InfoLevel
	}

	logger := logrus.New()
	logger.SetLevel(level.logrus())
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    config.NoColorize,
	})
	return &LogGroup{level: level, logger: logger}
}

// SetAllOutput sets the output writer of all levels to the writer provided
func (l *LogGroup) SetAllOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// Level is the configured verbosity.
func (l *LogGroup) Level() LogLevel {
	return l.level
}

// LogsDebug returns true if debug messages are emitted. Callers use it to
// skip building expensive messages.
func (l *LogGroup) LogsDebug() bool {
	return l.level >= DebugLevel
}

// LogsTrace returns true if trace messages are emitted.
func (l *LogGroup) LogsTrace() bool {
	return l.level >= TraceLevel
}

// Tracef prints to the trace level. Arguments are handled in the manner of Printf
func (l *LogGroup) Tracef(format string, v ...any) {
	l.logger.Tracef(format, v...)
}

// Debugf prints to the debug level. Arguments are handled in the manner of Printf
func (l *LogGroup) Debugf(format string, v ...any) {
	l.logger.Debugf(format, v...)
}

// Infof prints to the info level. Arguments are handled in the manner of Printf
func (l *LogGroup) Infof(format string, v ...any) {
	l.logger.Infof(format, v...)
}

// Warnf prints to the warn level. Arguments are handled in the manner of Printf
func (l *LogGroup) Warnf(format string, v ...any) {
	l.logger.Warnf(format, v...)
}

// Errorf prints to the error level. Arguments are handled in the manner of Printf
func (l *LogGroup) Errorf(format string, v ...any) {
	l.logger.Errorf(format, v...)
}

// WarnOnce prints to the warn level the first time it is called with key.
// Later calls with an equal key are dropped. Keys must be comparable.
func (l *LogGroup) WarnOnce(key any, format string, v ...any) {
	if _, seen := l.warned.LoadOrStore(key, struct{}{}); !seen {
		l.logger.Warnf(format, v...)
	}
}
