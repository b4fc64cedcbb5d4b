package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents the logging level
type Level int

const (
	// DEBUG level for detailed debugging information
	DEBUG Level = iota
	// INFO level for informational messages
	INFO
	// WARN level for warning messages
	WARN
	// ERROR level for error messages
	ERROR
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a config string ("debug", "info", ...) to a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO", "":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level: %q", s)
	}
}

// FileName is the name of the active log file inside the log directory
const FileName = "voicenote.log"

// Logger writes levelled log lines. A nil *Logger discards everything, so
// components can take an optional logger without guarding every call.
type Logger struct {
	mu       sync.RWMutex
	level    Level
	closer   io.Closer
	infoLog  *log.Logger
	warnLog  *log.Logger
	errorLog *log.Logger
	debugLog *log.Logger
}

// Config holds logger configuration
type Config struct {
	LogDir        string
	Level         Level
	RetentionDays int
	MaxSizeMB     int
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = "."
	}

	return Config{
		LogDir:        filepath.Join(cacheDir, "voicenote", "logs"),
		Level:         INFO,
		RetentionDays: 7,
		MaxSizeMB:     10,
	}
}

// New creates a logger writing to a size-rotated file in config.LogDir.
// Rotated files older than RetentionDays are removed.
func New(config Config) (*Logger, error) {
	if err := os.MkdirAll(config.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:  filepath.Join(config.LogDir, FileName),
		MaxSize:   config.MaxSizeMB,
		MaxAge:    config.RetentionDays,
		LocalTime: true,
	}

	l := NewWriter(rotator, config.Level)
	l.closer = rotator
	return l, nil
}

// NewWriter creates a logger writing to w (stderr for CLI runs, buffers in tests)
func NewWriter(w io.Writer, level Level) *Logger {
	return &Logger{
		level:    level,
		infoLog:  log.New(w, "[INFO] ", log.LstdFlags),
		warnLog:  log.New(w, "[WARN] ", log.LstdFlags),
		errorLog: log.New(w, "[ERROR] ", log.LstdFlags),
		debugLog: log.New(w, "[DEBUG] ", log.LstdFlags),
	}
}

func (l *Logger) output(level Level, format string, v ...interface{}) {
	if l == nil {
		return
	}

	l.mu.RLock()
	current := l.level
	var target *log.Logger
	switch level {
	case DEBUG:
		target = l.debugLog
	case INFO:
		target = l.infoLog
	case WARN:
		target = l.warnLog
	default:
		target = l.errorLog
	}
	l.mu.RUnlock()

	if current <= level && target != nil {
		target.Printf(format, v...)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.output(DEBUG, format, v...)
}

// Info logs an informational message
func (l *Logger) Info(format string, v ...interface{}) {
	l.output(INFO, format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.output(WARN, format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.output(ERROR, format, v...)
}

// Close closes the log file
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer != nil {
		err := l.closer.Close()
		l.closer = nil
		return err
	}
	return nil
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level = level
}

// GetLevel returns the current logging level
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.level
}
