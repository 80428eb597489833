package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	defaultLogger zerolog.Logger
	once          sync.Once
)

// Options controls how the process logger is built.
type Options struct {
	Level  string    // debug, info, warn, error
	Format string    // "text" for a console writer, anything else for JSON
	Output io.Writer // defaults to os.Stdout
}

// Init initializes the default logger. Only the first call has any effect.
func Init(opts Options) {
	once.Do(func() {
		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		if strings.EqualFold(opts.Format, "text") {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}

		level := zerolog.InfoLevel
		if lvl, err := zerolog.ParseLevel(strings.ToLower(opts.Level)); err == nil && opts.Level != "" {
			level = lvl
		}

		zerolog.TimeFieldFormat = time.RFC3339
		defaultLogger = zerolog.New(out).Level(level).With().Timestamp().Logger()
		log.Logger = defaultLogger
		defaultLogger.Debug().Str("level", level.String()).Msg("logger initialized")
	})
}

// Get returns the initialized default logger, initializing it with
// defaults when Init has not been called yet.
func Get() *zerolog.Logger {
	Init(Options{})
	return &defaultLogger
}

// Info logs an informational message with key/value pairs.
func Info(msg string, args ...any) {
	Get().Info().Fields(args).Msg(msg)
}

// Warn logs a warning message with key/value pairs.
func Warn(msg string, args ...any) {
	Get().Warn().Fields(args).Msg(msg)
}

// Error logs an error message with key/value pairs.
func Error(msg string, err error, args ...any) {
	Get().Error().Err(err).Fields(args).Msg(msg)
}

// Debug logs a debug message with key/value pairs.
func Debug(msg string, args ...any) {
	Get().Debug().Fields(args).Msg(msg)
}
