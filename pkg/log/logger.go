package log

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Category tags every record with the subsystem that produced it.
type Category string

const (
	Application Category = "application"
	RPC         Category = "rpc"
	Database    Category = "database"
	Errors      Category = "error"
)

// Options controls SetupLogger.
type Options struct {
	// Level is the minimum level; defaults to LOG_LEVEL or info.
	Level *slog.Level
	// Console enables the human-readable stderr handler.
	Console bool
	// FilePath enables the rotating JSON file handler when non-empty.
	FilePath string
	// Console writer override, mostly for tests.
	ConsoleWriter io.Writer
}

// Logger owns the process-wide slog handler and its file sink.
type Logger struct {
	base *slog.Logger
	file *lumberjack.Logger
	mu   sync.Mutex
}

var (
	// GlobalLogger is set by SetupLogger.
	GlobalLogger *Logger
	globalMu     sync.RWMutex
)

// SetupLogger installs the global logger and makes it the slog default.
func SetupLogger(opts Options) error {
	level := ParseLevel(os.Getenv("LOG_LEVEL"))
	if opts.Level != nil {
		level = *opts.Level
	}

	var handlers []slog.Handler
	if opts.Console {
		w := opts.ConsoleWriter
		if w == nil {
			w = os.Stderr
		}
		handlers = append(handlers, tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    !isTerminal(w),
		}))
	}

	var file *lumberjack.Logger
	if strings.TrimSpace(opts.FilePath) != "" {
		file = &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{
			AddSource: true,
			Level:     level,
		}))
	}

	var h slog.Handler
	switch len(handlers) {
	case 0:
		h = slog.NewTextHandler(io.Discard, nil)
	case 1:
		h = handlers[0]
	default:
		h = fanout(handlers)
	}

	l := &Logger{base: slog.New(h), file: file}

	globalMu.Lock()
	prev := GlobalLogger
	GlobalLogger = l
	globalMu.Unlock()

	if prev != nil {
		_ = prev.Sync()
	}
	slog.SetDefault(l.base)
	return nil
}

// Sync closes the file sink; lumberjack reopens it on the next write.
func (l *Logger) Sync() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// ParseLevel converts a LOG_LEVEL string; unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func categoryLogger(c Category) *slog.Logger {
	globalMu.RLock()
	l := GlobalLogger
	globalMu.RUnlock()

	base := slog.Default()
	if l != nil {
		base = l.base
	}
	return base.With(slog.String("category", string(c)))
}

// ApplicationLogger logs lifecycle and user-facing operations.
func ApplicationLogger() *slog.Logger { return categoryLogger(Application) }

// RPCLogger logs presence broadcasting and Discord IPC traffic.
func RPCLogger() *slog.Logger { return categoryLogger(RPC) }

// DatabaseLogger logs history store activity.
func DatabaseLogger() *slog.Logger { return categoryLogger(Database) }

// ErrorLoggerRaw logs failures that are not tied to a subsystem.
func ErrorLoggerRaw() *slog.Logger { return categoryLogger(Errors) }

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
