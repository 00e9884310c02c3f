package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"watchlist-news/internal/trace"
)

var (
	globalLogger *slog.Logger
	// detailed gates Debug output and source locations.
	detailed bool
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level    string    // DEBUG, INFO, WARN, ERROR
	Format   string    // json or text
	Detailed bool      // debug messages plus caller locations
	Output   io.Writer // defaults to stdout
}

// Init initializes the global logger from LOG_LEVEL, LOG_FORMAT and LOG_DETAILED.
func Init() error {
	return InitWithConfig(ConfigFromEnv())
}

func ConfigFromEnv() LogConfig {
	level := envOr("LOG_LEVEL", "INFO")
	return LogConfig{
		Level:    level,
		Format:   envOr("LOG_FORMAT", "json"),
		Detailed: envOr("LOG_DETAILED", "false") == "true" || strings.EqualFold(level, "DEBUG"),
	}
}

// InitWithConfig installs a logger built from config as the slog default.
func InitWithConfig(config LogConfig) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.Level)); err != nil {
		level = slog.LevelInfo
	}
	detailed = config.Detailed
	if detailed && level > slog.LevelDebug {
		level = slog.LevelDebug
	}

	out := config.Output
	if out == nil {
		out = os.Stdout
	}

	// Source is added by emit so wrappers report their caller.
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(config.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func current() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// IsDebugEnabled returns whether debug logging is enabled
func IsDebugEnabled() bool {
	return detailed
}

func Debug(ctx context.Context, msg string, args ...any) {
	if detailed {
		emit(ctx, slog.LevelDebug, 3, msg, args)
	}
}

func Info(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelInfo, 3, msg, args)
}

func Warn(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelWarn, 3, msg, args)
}

func Error(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelError, 3, msg, args)
}

// ErrorWithErr logs err under "error" and marks the active span failed.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	recordSpanError(ctx, err)
	emit(ctx, slog.LevelError, 3, msg, append([]any{"error", err}, args...))
}

// The *Skip variants let middleware report the frame skip levels above
// itself instead of its own location.

func DebugSkip(ctx context.Context, skip int, msg string, args ...any) {
	if detailed {
		emit(ctx, slog.LevelDebug, 3+skip, msg, args)
	}
}

func InfoSkip(ctx context.Context, skip int, msg string, args ...any) {
	emit(ctx, slog.LevelInfo, 3+skip, msg, args)
}

func WarnSkip(ctx context.Context, skip int, msg string, args ...any) {
	emit(ctx, slog.LevelWarn, 3+skip, msg, args)
}

func ErrorWithErrSkip(ctx context.Context, skip int, msg string, err error, args ...any) {
	recordSpanError(ctx, err)
	emit(ctx, slog.LevelError, 3+skip, msg, append([]any{"error", err}, args...))
}

// emit prepends trace ids from ctx and, in detailed mode, the caller found
// skip frames up.
func emit(ctx context.Context, level slog.Level, skip int, msg string, args []any) {
	l := current()
	if !l.Enabled(ctx, level) {
		return
	}

	if traceID, spanID, ok := trace.GetTraceFields(ctx); ok {
		args = append([]any{"trace_id", traceID, "span_id", spanID}, args...)
	}

	if detailed {
		if pc, file, line, ok := runtime.Caller(skip - 1); ok {
			name := ""
			if fn := runtime.FuncForPC(pc); fn != nil {
				name = fn.Name()
			}
			args = append(args, slog.Group("source",
				slog.String("function", name),
				slog.String("file", file),
				slog.Int("line", line),
			))
		}
	}

	l.Log(ctx, level, msg, args...)
}
