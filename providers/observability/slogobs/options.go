package slogobs

import (
	"io"
	"log/slog"
	"os"
)

// Option is a functional option for configuring the logger built by [New].
type Option func(*config)

type config struct {
	format Format
	level  slog.Level
	output io.Writer
	colors bool
}

// WithFormat sets the log output format.
func WithFormat(format Format) Option {
	return func(c *config) {
		c.format = format
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithOutput sets the output writer for logs.
func WithOutput(output io.Writer) Option {
	return func(c *config) {
		if output != nil {
			c.output = output
		}
	}
}

// WithColors forces ANSI color codes on. Only applies to compact and pretty
// formats; terminals are detected automatically.
func WithColors(enabled bool) Option {
	return func(c *config) {
		c.colors = enabled
	}
}

func defaultConfig() *config {
	return &config{
		format: FormatFromEnv(),
		level:  LevelFromEnv(),
		output: os.Stderr,
	}
}

// New builds a *slog.Logger writing through a [Handler]. Without options the
// format and level come from the environment and output goes to stderr.
//
//	logger := slogobs.New(slogobs.WithFormat(slogobs.FormatJSON), slogobs.WithLevel(slog.LevelDebug))
//	slog.SetDefault(logger)
func New(opts ...Option) *slog.Logger {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return slog.New(NewHandler(&HandlerOptions{
		Format: cfg.format,
		Level:  cfg.level,
		Output: cfg.output,
		Colors: cfg.colors,
	}))
}
