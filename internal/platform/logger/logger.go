package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger es la interfaz que usan services/handlers. Envuelve zerolog para que
// los módulos de dominio no dependan del backend concreto.
type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

type zlogger struct {
	z zerolog.Logger
}

type Options struct {
	Level  zerolog.Level
	Format Format
	App    string
}

func New(opts Options) Logger {
	var z zerolog.Logger
	switch opts.Format {
	case FormatJSON:
		z = zerolog.New(os.Stdout)
	default:
		z = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	z = z.Level(opts.Level).With().Timestamp().Logger()
	if app := strings.TrimSpace(opts.App); app != "" {
		z = z.With().Str("app", app).Logger()
	}

	return &zlogger{z: z}
}

// NewFromEnv crea logger desde env:
// - LOG_LEVEL=debug|info|warn|error (default info)
// - LOG_FORMAT=text|json (default text)
// - APP_NAME=vet-vaccination-tracker (opcional)
func NewFromEnv() Logger {
	return New(Options{
		Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		Format: ParseFormat(os.Getenv("LOG_FORMAT")),
		App:    os.Getenv("APP_NAME"),
	})
}

// Nop devuelve un logger que descarta todo (para tests).
func Nop() Logger {
	return &zlogger{z: zerolog.Nop()}
}

func (l *zlogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	return &zlogger{z: l.z.With().Fields(clean(fields)).Logger()}
}

func (l *zlogger) Debug(msg string, fields map[string]any) {
	l.z.Debug().Fields(clean(fields)).Msg(msg)
}

func (l *zlogger) Info(msg string, fields map[string]any) {
	l.z.Info().Fields(clean(fields)).Msg(msg)
}

func (l *zlogger) Warn(msg string, fields map[string]any) {
	l.z.Warn().Fields(clean(fields)).Msg(msg)
}

func (l *zlogger) Error(msg string, fields map[string]any) {
	l.z.Error().Fields(clean(fields)).Msg(msg)
}

func clean(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		out[k] = v
	}
	return out
}
