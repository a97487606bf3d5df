// Package logger sets up the process-wide structured logger and hands out
// small per-component loggers the rest of the tree attaches to.
//
// Output is plain text, not JSON: every line reads as
// "timestamp | LEVEL | message" on both stderr and the on-disk log file,
// matching the line shape operators of this tool have always grepped for.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger. Setup must run before any component
// logger is requested.
var Log zerolog.Logger

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// Setup configures Log to write "timestamp | LEVEL | message" lines to both
// stderr and <baseDir>/data/logs/app.log, and returns the opened log file so
// the caller can close it on shutdown. level is parsed with
// zerolog.ParseLevel; an unrecognized value falls back to info.
func Setup(baseDir string, level string) (*os.File, error) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	logDir := filepath.Join(baseDir, "data", "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logger: mkdir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, "app.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}

	writer := zerolog.MultiLevelWriter(plainWriter(os.Stderr), plainWriter(f))
	Log = zerolog.New(writer).With().Timestamp().Logger()
	Log.Info().Msg("logger initialized")
	return f, nil
}

// plainWriter wraps w in a ConsoleWriter tuned to render the
// "timestamp | LEVEL | message" shape with no color codes, regardless of
// whether w is a terminal. ConsoleWriter always separates consecutive parts
// with a single space and gives no way to change that, so the literal " | "
// is produced by folding the pipe into the front of the level and message
// parts themselves: "timestamp" + " " + "| LEVEL" + " " + "| message".
func plainWriter(w io.Writer) zerolog.ConsoleWriter {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: timeFormat,
	}
	cw.FormatLevel = func(i interface{}) string {
		lvl := "???"
		if s, ok := i.(string); ok {
			lvl = strings.ToUpper(s)
		}
		return "| " + lvl
	}
	cw.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("| %v", i)
	}
	cw.FormatFieldName = func(i interface{}) string { return fmt.Sprintf("%s=", i) }
	cw.FormatFieldValue = func(i interface{}) string { return fmt.Sprintf("%v", i) }
	cw.PartsOrder = []string{
		zerolog.TimestampFieldName,
		zerolog.LevelFieldName,
		zerolog.MessageFieldName,
	}
	cw.PartsExclude = nil
	return cw
}

// ForComponent returns a logger tagged with a "component" field, mirroring
// this tree's per-subsystem logger-per-concern convention.
func ForComponent(name string) *zerolog.Logger {
	l := Log.With().Str("component", name).Logger()
	return &l
}

// Convenience component loggers used across the pipeline.
func Watcher() *zerolog.Logger    { return ForComponent("watcher") }
func VCS() *zerolog.Logger        { return ForComponent("vcsadapter") }
func Dispatcher() *zerolog.Logger { return ForComponent("dispatcher") }
func Pipeline() *zerolog.Logger   { return ForComponent("pipeline") }
func Plugin() *zerolog.Logger     { return ForComponent("plugin") }
func Status() *zerolog.Logger     { return ForComponent("status") }
