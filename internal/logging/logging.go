// Package logging builds the zerolog logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"trimmer/internal/dirs"
)

// Options configures New.
type Options struct {
	Level   string    // debug, info, warn, error
	File    string    // when set, JSON lines are appended to this file
	NoColor bool      // disable ANSI colors on the console writer
	Writer  io.Writer // console destination; defaults to stderr
}

// ParseLevel maps a level name to a zerolog level. Unknown names are an error.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "trace":
		return zerolog.TraceLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// New returns a configured logger and a function releasing its resources.
func New(opts Options) (zerolog.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), noop, err
	}

	if opts.File != "" {
		if err := dirs.Ensure(filepath.Dir(opts.File)); err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("open log file: %w", err)
		}
		l := zerolog.New(f).Level(level).With().Timestamp().Logger()
		return l, f.Close, nil
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	noColor := opts.NoColor
	if f, ok := w.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		noColor = true
	}
	cw := zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: time.TimeOnly}
	l := zerolog.New(cw).Level(level).With().Timestamp().Logger()
	return l, noop, nil
}

func noop() error { return nil }
