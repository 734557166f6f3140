// Package logging builds the kernel slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls the logger
type Config struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Path optionally mirrors log output into a file
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Logger is a slog logger together with the file it may write to
type Logger struct {
	*slog.Logger
	file *os.File
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// New creates a logger writing to out (os.Stdout when nil) and to cfg.Path.
// An unknown level falls back to INFO and is reported as a warning.
func New(cfg Config, out io.Writer) (*Logger, error) {
	if out == nil {
		out = os.Stdout
	}
	ret := &Logger{}
	writer := out
	if cfg.Path != "" {
		file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %v: %w", cfg.Path, err)
		}
		ret.file = file
		writer = io.MultiWriter(out, file)
	}
	level, levelErr := ParseLevel(cfg.Level)
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(writer, options)
	default:
		handler = slog.NewTextHandler(writer, options)
	}
	ret.Logger = slog.New(handler)
	if levelErr != nil {
		ret.Warn(levelErr.Error())
	}
	return ret, nil
}

// ParseLevel converts DEBUG, INFO, WARN or ERROR (any case) into a slog level.
// Empty means INFO.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q, using INFO", level)
}
