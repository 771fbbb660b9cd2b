// Package logging builds the zerolog logger shared by all binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger options.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn or error.
	Level string
	// Verbose selects debug when Level is empty.
	Verbose bool
	// Format is json or console.
	Format string
	// Output receives log lines. Nil means stderr.
	Output io.Writer
}

var validLevels = map[string]zerolog.Level{
	"trace": zerolog.TraceLevel,
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
}

// ResolveLevel applies level precedence: an explicit level wins, then the
// verbose flag, then info. Unknown levels fall back to info.
func ResolveLevel(cfg Config) zerolog.Level {
	if cfg.Level != "" {
		if lvl, ok := validLevels[strings.ToLower(cfg.Level)]; ok {
			return lvl
		}
		fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using \"info\"\n", cfg.Level)
		return zerolog.InfoLevel
	}
	if cfg.Verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// New creates a logger from cfg.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	level := ResolveLevel(cfg)
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}
