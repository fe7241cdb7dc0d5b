package logger

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

var (
	global *slog.Logger
	once   sync.Once
)

// Init installs the process-wide JSON logger. The first call wins; later
// calls are no-ops, so the server and tests can both initialize safely.
func Init(level string) {
	once.Do(func() {
		h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(level)})
		global = slog.New(h).With("service", "marketgate")
		slog.SetDefault(global)
	})
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Get() *slog.Logger {
	if global == nil {
		Init("info")
	}
	return global
}

func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Warn(msg string, args ...any)  { Get().Warn(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }
func Debug(msg string, args ...any) { Get().Debug(msg, args...) }

func With(args ...any) *slog.Logger { return Get().With(args...) }

// LogError records err at error level; nil errors log nothing.
func LogError(ctx context.Context, err error, msg string, args ...any) {
	if err == nil {
		return
	}
	Get().ErrorContext(ctx, msg, append(args, slog.Any("error", err))...)
}
