package logger

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	log "github.com/jeanphorn/log4go"
)

var (
	mu      sync.RWMutex
	current = log.NewDefaultLogger(log.INFO)
)

// SetLevel replaces the package logger with one filtering at level
// ("debug", "info", "warning", "error").
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	current.Close()
	current = log.NewDefaultLogger(parseLevel(level))
}

// Close flushes pending log lines.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	current.Close()
}

// Debug logs at debug level
func Debug(format string, args ...interface{}) {
	write(log.DEBUG, format, args...)
}

// Info logs at info level
func Info(format string, args ...interface{}) {
	write(log.INFO, format, args...)
}

// Warning logs at warning level
func Warning(format string, args ...interface{}) {
	write(log.WARNING, format, args...)
}

// Error logs at error level
func Error(format string, args ...interface{}) {
	write(log.ERROR, format, args...)
}

func write(level log.Level, format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	current.Log(level, getSource(), fmt.Sprintf(format, args...))
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARNING
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}

func getSource() (source string) {
	if pc, _, line, ok := runtime.Caller(3); ok {
		source = fmt.Sprintf("%s:%d", runtime.FuncForPC(pc).Name(), line)
	}
	return
}
