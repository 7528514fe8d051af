package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

// Get returns a singleton logger configured with the provided level.
// The first call initializes the logger; subsequent calls return the
// already initialized instance. Use SetLevel to change verbosity after
// configuration is loaded.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level)
	})
	return globalLogger
}

// SetLevel adjusts the singleton's verbosity at runtime. The logger is
// needed before configuration can be read, so startup initializes it at a
// default level and applies the configured one here.
func SetLevel(level string) {
	if globalLogger != nil {
		globalLogger.level.SetLevel(toZapLevel(level))
	}
}
