// Package logger provides the small leveled-logging surface used
// throughout SurfSync (Debugf/Infof/Warnf/Errorf), backed by the standard
// library's log package the same way the teacher configures its own
// ambient logger: a fixed set of flags and a prefix, nothing fancier.
package logger

import (
	"io"
	"log"
	"os"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "?"
	}
}

// Logger wraps *log.Logger with a minimum level below which calls are
// dropped cheaply.
type Logger struct {
	out *log.Logger
	min Level
}

// DefaultLogger is the package-level logger every component logs through,
// mirroring the teacher's logger.DefaultLogger usage.
var DefaultLogger = New(os.Stderr, LevelInfo)

func New(w io.Writer, min Level) *Logger {
	return &Logger{
		out: log.New(w, "", log.Ldate|log.Lmicroseconds),
		min: min,
	}
}

// SetLevel adjusts the minimum level logged.
func (l *Logger) SetLevel(min Level) {
	l.min = min
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if level < l.min {
		return
	}
	l.out.Printf("["+level.String()+"] "+format, args...)
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(LevelError, format, args...) }
