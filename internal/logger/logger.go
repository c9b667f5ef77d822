// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger tagged with env. Production emits JSON at info
// level; every other environment gets a human console writer at debug.
func New(env string) zerolog.Logger {
	return NewWithWriter(env, os.Stdout)
}

func NewWithWriter(env string, w io.Writer) zerolog.Logger {
	out := w
	level := zerolog.DebugLevel
	if env == "production" || env == "prod" {
		level = zerolog.InfoLevel
	} else {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().
		Timestamp().
		Str("env", env).
		Logger()
}
