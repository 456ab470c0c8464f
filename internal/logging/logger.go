package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Options configures the process logger.
type Options struct {
	Level   slog.Level
	Format  string // "text" (tint) or "json"
	Writer  io.Writer
	NoColor bool
}

// New builds a logger. Text output goes through tint for the console, json
// through slog's JSON handler.
func New(opt Options) *slog.Logger {
	w := opt.Writer
	if w == nil {
		w = os.Stderr
	}
	if strings.EqualFold(opt.Format, "json") {
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opt.Level})
		return slog.New(h).With("app", "aqdash")
	}
	h := tint.NewHandler(w, &tint.Options{
		Level:      opt.Level,
		AddSource:  opt.Level <= slog.LevelDebug,
		TimeFormat: time.Kitchen,
		NoColor:    opt.NoColor,
	})
	return slog.New(h)
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (allowed: debug, info, warn, error)", s)
	}
}
