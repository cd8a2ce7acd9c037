// Package logging is the resolver's small, dependency-free logger. Every
// entry is tagged with the pipeline Stage that produced it (see Stage in
// entry.go), so a caller dumping the LogStore afterward can tell a scanner
// warning from a dependency-resolution one without parsing message text.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// Logger is a central logger that writes to a store and an optional io.Writer.
type Logger struct {
	store  *LogStore
	writer io.Writer
	goLog  *log.Logger
	debug  bool
}

// NewLogger creates and initializes a new Logger instance.
func NewLogger() *Logger {
	l := &Logger{
		store:  newLogStore(),
		writer: io.Discard,
	}
	l.goLog = log.New(l, "", 0)
	return l
}

// Write implements the io.Writer interface so the standard log package can
// write through this logger to whichever writer is currently configured.
func (l *Logger) Write(p []byte) (n int, err error) {
	if l.writer == nil {
		return len(p), nil
	}
	return l.writer.Write(p)
}

// SetWriter sets the output destination for the logger.
func (l *Logger) SetWriter(w io.Writer) {
	l.writer = w
}

// Store returns the internal LogStore.
func (l *Logger) Store() *LogStore {
	return l.store
}

// SetDebug enables or disables debug-level logging.
func (l *Logger) SetDebug(enable bool) {
	l.debug = enable
}

func (l *Logger) logf(level LogLevel, stage Stage, format string, v ...interface{}) {
	if level == LevelDebug && !l.debug {
		return
	}
	message := strings.TrimSpace(fmt.Sprintf(format, v...))
	entry := LogEntry{Timestamp: time.Now(), Level: level, Stage: stage, Message: message}
	l.store.Add(entry)
	logLine := fmt.Sprintf("%s %-5s [%s] %s", entry.Timestamp.Format("15:04:05.000"), level.String(), stage, message)
	l.goLog.Println(logLine)
}

func (l *Logger) Infof(stage Stage, format string, v ...interface{}) {
	l.logf(LevelInfo, stage, format, v...)
}
func (l *Logger) Warnf(stage Stage, format string, v ...interface{}) {
	l.logf(LevelWarn, stage, format, v...)
}
func (l *Logger) Errorf(stage Stage, format string, v ...interface{}) {
	l.logf(LevelError, stage, format, v...)
}
func (l *Logger) Debugf(stage Stage, format string, v ...interface{}) {
	l.logf(LevelDebug, stage, format, v...)
}

// ---- Global / Default Logger ----

var defaultLogger = NewLogger()

// SetDefault replaces the default logger instance.
func SetDefault(logger *Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

func Infof(stage Stage, format string, v ...interface{}) {
	defaultLogger.Infof(stage, format, v...)
}
func Warnf(stage Stage, format string, v ...interface{}) {
	defaultLogger.Warnf(stage, format, v...)
}
func Errorf(stage Stage, format string, v ...interface{}) {
	defaultLogger.Errorf(stage, format, v...)
}
func Debugf(stage Stage, format string, v ...interface{}) {
	defaultLogger.Debugf(stage, format, v...)
}
