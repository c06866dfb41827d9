package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

var Log = slog.New(slog.NewJSONHandler(io.Discard, nil))

// Options controls where and how verbosely the service logs
type Options struct {
	Level string
	// File, when set, receives a rotated copy of every log line
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init installs the global JSON logger. The returned closer flushes the
// rotating file, if any.
func Init(opts Options) io.Closer {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closer = rotator
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	})
	Log = slog.New(handler)
	slog.SetDefault(Log)
	return closer
}

// ParseLevel maps a level name to slog, defaulting to debug
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
