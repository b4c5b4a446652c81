package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Option configures the logger built by New.
type Option func(*options)

type options struct {
	debug  bool
	pretty bool
	w      io.Writer
}

// WithDebug lowers the level to debug.
func WithDebug(debug bool) Option {
	return func(o *options) { o.debug = o.debug || debug }
}

// WithPretty switches from JSON to the colorized charmbracelet handler.
func WithPretty(pretty bool) Option {
	return func(o *options) { o.pretty = pretty }
}

// WithWriter overrides the output writer (stderr by default).
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.w = w }
}

// New builds a slog logger. LOG_LEVEL=debug in the environment also enables debug.
func New(opts ...Option) *slog.Logger {
	o := &options{
		debug: strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug"),
		w:     os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}

	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}

	if o.pretty {
		h := charmlog.NewWithOptions(o.w, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
		})
		return slog.New(h)
	}

	return slog.New(slog.NewJSONHandler(o.w, &slog.HandlerOptions{
		Level: level,
	}))
}

// Init installs New(opts...) as the process-wide default logger.
func Init(opts ...Option) {
	slog.SetDefault(New(opts...))
}
