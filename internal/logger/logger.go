// Package logger provides leveled logging for oops.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Level is a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = map[string]Level{
	"debug":   DebugLevel,
	"info":    InfoLevel,
	"warn":    WarnLevel,
	"warning": WarnLevel,
	"error":   ErrorLevel,
}

var charmLevels = [...]log.Level{
	DebugLevel: log.DebugLevel,
	InfoLevel:  log.InfoLevel,
	WarnLevel:  log.WarnLevel,
	ErrorLevel: log.ErrorLevel,
}

// Config holds logger configuration
type Config struct {
	Level      string
	File       string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	// Console also writes to stderr. Stdout is reserved for command output.
	Console bool
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{Level: "info", MaxSize: 10, MaxBackups: 5, MaxAge: 30}
}

// Logger wraps a charmbracelet/log logger with a fixed prefix.
type Logger struct {
	base  *log.Logger
	level Level
	file  *fileWriter
}

// New returns a logger writing to w at the given level.
func New(w io.Writer, level string) *Logger {
	lvl := parseLevel(level)
	base := log.NewWithOptions(w, log.Options{
		Level:           toLogLevel(lvl),
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	return &Logger{base: base, level: lvl}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, "error")
}

// open builds the logger described by cfg.
func open(cfg Config) (*Logger, error) {
	var sinks []io.Writer
	if cfg.Console {
		sinks = append(sinks, os.Stderr)
	}

	var fw *fileWriter
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		var err error
		if fw, err = openFileWriter(cfg); err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		sinks = append(sinks, fw)
	}

	out := io.Discard
	if len(sinks) > 0 {
		out = io.MultiWriter(sinks...)
	}
	l := New(out, cfg.Level)
	l.file = fw
	return l, nil
}

func (l *Logger) Debug(msg string, keyvals ...any) { l.base.Debug(msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...any)  { l.base.Info(msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...any)  { l.base.Warn(msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...any) { l.base.Error(msg, keyvals...) }

// With returns a child logger whose lines carry prefix.
func (l *Logger) With(prefix string) *Logger {
	return &Logger{base: l.base.WithPrefix(prefix), level: l.level, file: l.file}
}

// SetLevel changes the logging level.
func (l *Logger) SetLevel(level Level) {
	l.level = level
	l.base.SetLevel(toLogLevel(level))
}

// GetLevel returns the current level.
func (l *Logger) GetLevel() Level {
	return l.level
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// parseLevel maps a level name to a Level. Unknown names mean info.
func parseLevel(name string) Level {
	if lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lvl
	}
	return InfoLevel
}

func toLogLevel(level Level) log.Level {
	if level < DebugLevel || level > ErrorLevel {
		return log.InfoLevel
	}
	return charmLevels[level]
}
