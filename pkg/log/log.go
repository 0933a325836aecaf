package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger. It discards everything until Init runs,
// so library packages can log unconditionally from tests.
var Logger = zerolog.Nop()

// Level is a log level as accepted by --log-level
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logging configuration
type Config struct {
	Level      Level
	JSONOutput bool
	// Output defaults to stderr, leaving stdout to command output
	Output io.Writer
}

// Init replaces Logger and sets the global level
func Init(cfg Config) {
	zerolog.SetGlobalLevel(ParseLevel(string(cfg.Level)).toZerolog())
	Logger = zerolog.New(newWriter(cfg)).With().Timestamp().Logger()
}

func newWriter(cfg Config) io.Writer {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.JSONOutput {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    cfg.Output != nil,
	}
}

func (l Level) toZerolog() zerolog.Level {
	level, err := zerolog.ParseLevel(string(l))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// ParseLevel maps a flag value to a Level. Case and surrounding space are
// ignored, "warning" is read as warn, anything else falls back to info.
func ParseLevel(s string) Level {
	switch s = strings.ToLower(strings.TrimSpace(s)); Level(s) {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel:
		return Level(s)
	case "warning":
		return WarnLevel
	default:
		return InfoLevel
	}
}

// WithComponent creates a child logger with component field
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithTemplate creates a child logger with template field
func WithTemplate(name string) zerolog.Logger {
	return Logger.With().Str("template", name).Logger()
}

// WithCredentialID creates a child logger with credential_id field
func WithCredentialID(id string) zerolog.Logger {
	return Logger.With().Str("credential_id", id).Logger()
}
