package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// zerologLevel maps the configured level string, falling back to info so a
// typo in LOG_LEVEL never silences the server.
func (c LoggingConfig) zerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// writer picks the output: JSON to stdout in deployments, the console writer
// for local development when LOG_FORMAT=console.
func (c LoggingConfig) writer() io.Writer {
	if strings.EqualFold(c.Format, "console") {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return os.Stdout
}

// NewLogger builds the root logger for the process and installs it as the
// zerolog global so package-level logging shares the same sink.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logger := zerolog.New(cfg.writer()).
		Level(cfg.zerologLevel()).
		With().
		Timestamp().
		Str("service", "eventura").
		Logger()
	log.Logger = logger
	return logger
}
