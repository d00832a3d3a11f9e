package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dfryer1193/flog/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logger from cfg. Output goes to stderr and, when cfg.File is
// set, to a size-rotated file. The returned closer releases the file.
func New(cfg config.LogConfig, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = stderr
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		out = zerolog.MultiLevelWriter(out, file)
		closer = file
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

// Setup installs the logger from cfg as the global zerolog logger.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	logger, closer, err := New(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
