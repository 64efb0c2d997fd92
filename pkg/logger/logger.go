// Package logger wraps zerolog with a file-backed logger. Terminal UIs own
// stdout, so log output always goes to a file.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

// Init configures the global logger to append to path. Each process run is
// tagged with a fresh session id so interleaved runs can be told apart.
func Init(debug bool, path string) error {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	log = zerolog.New(f).With().
		Timestamp().
		Str("session", uuid.NewString()).
		Logger()
	return nil
}

// Get returns the configured logger for callers that want structured fields.
func Get() *zerolog.Logger {
	return &log
}

func Debug(msg string) {
	log.Debug().Msg(msg)
}

func Debugf(format string, v ...any) {
	log.Debug().Msgf(format, v...)
}

func Info(msg string) {
	log.Info().Msg(msg)
}

func Infof(format string, v ...any) {
	log.Info().Msgf(format, v...)
}

func Warn(msg string) {
	log.Warn().Msg(msg)
}

func Warnf(format string, v ...any) {
	log.Warn().Msgf(format, v...)
}

func Error(err error, msg string) {
	log.Error().Err(err).Msg(msg)
}

func Errorf(format string, v ...any) {
	log.Error().Msgf(format, v...)
}
