// Package logging configures the slog logger used by the visitgen and
// visitcheck commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvVar names the environment variable holding the log level.
const EnvVar = "VISITGEN_LOG"

// Level mirrors slog levels with an extra trace level below debug.
type Level int

const (
	LevelTrace Level = -8
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// ParseLevel parses trace, debug, info, warn or error (case-insensitive).
// The empty string means warn: a generator run is quiet unless asked.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning", "":
		return LevelWarn, nil
	case "error", "err":
		return LevelError, nil
	default:
		return LevelWarn, fmt.Errorf("unknown log level: %q", s)
	}
}

// ToSlog converts l to a slog.Level.
func (l Level) ToSlog() slog.Level {
	return slog.Level(l)
}

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("Level(%d)", l)
	}
}

// Format is the log output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses "text" (default) or "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format: %q", s)
	}
}

// Options configures New.
type Options struct {
	// CLILevel comes from the -log-level flag (highest precedence).
	CLILevel string
	// EnvLevel comes from VISITGEN_LOG.
	EnvLevel string
	// ConfigLevel comes from visitgen.yaml (lowest precedence).
	ConfigLevel string
	Format      Format
	// Output defaults to os.Stderr; stdout is reserved for -dry-run output.
	Output io.Writer
}

// New builds a logger. Precedence: CLILevel > EnvLevel > ConfigLevel.
func New(opts Options) (*slog.Logger, error) {
	levelStr := ""
	switch {
	case opts.CLILevel != "":
		levelStr = opts.CLILevel
	case opts.EnvLevel != "":
		levelStr = opts.EnvLevel
	case opts.ConfigLevel != "":
		levelStr = opts.ConfigLevel
	}

	level, err := ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: level.ToSlog()}
	var h slog.Handler
	switch opts.Format {
	case FormatJSON:
		h = slog.NewJSONHandler(output, handlerOpts)
	default:
		h = slog.NewTextHandler(output, handlerOpts)
	}
	return slog.New(h), nil
}

// Discard returns a logger that drops everything. Used by tests and as
// the default when a caller passes no logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelError.ToSlog() + 1}))
}
