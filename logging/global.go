// Package logging sets up structured logging for speclist: a text console
// handler and, when a log directory is configured, a rotating JSON file.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/giygas/speclist/config"
)

// LoggingService owns the process logger and its rotating file, if any
type LoggingService struct {
	Logger *slog.Logger
	file   *RotatingLogger
}

var DefaultLoggingService *LoggingService

// InitLogger initializes a console-only logger at info level
func InitLogger() {
	DefaultLoggingService = &LoggingService{
		Logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
	slog.SetDefault(DefaultLoggingService.Logger)
}

// InitLoggerWithConfig initializes the global logger from cfg.
// A rotating JSON file is added when cfg.LogDir is set; if it cannot be
// opened the service falls back to console only and logs why.
func InitLoggerWithConfig(cfg *config.Config) *LoggingService {
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: GetConsoleLogLevel(cfg.Env, cfg.LogLevel),
	})

	service := &LoggingService{Logger: slog.New(consoleHandler)}

	if cfg.LogDir != "" {
		rotating := NewRotatingLogger(cfg.LogDir, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)
		if err := rotating.Open(); err != nil {
			service.Logger.Error("Failed to initialize rotating logger, logging to console only", "error", err)
		} else {
			fileHandler := slog.NewJSONHandler(rotating, &slog.HandlerOptions{
				Level: GetFileLogLevel(),
			})
			service.file = rotating
			service.Logger = slog.New(&multiHandler{
				handlers: []slog.Handler{consoleHandler, fileHandler},
			})
		}
	}

	DefaultLoggingService = service
	slog.SetDefault(service.Logger)
	return service
}

// Close releases the rotating log file
func (s *LoggingService) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// parseLogLevel maps a LOG_LEVEL value to a slog level, defaulting to info
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel returns the console level: LOG_LEVEL when set,
// otherwise info in dev, warn in staging/prod and error in tests
func GetConsoleLogLevel(env config.Environment, logLevel string) slog.Level {
	if env == config.EnvTest {
		return slog.LevelError
	}

	if logLevel != "" {
		return parseLogLevel(logLevel)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel returns the file level, the file keeps everything
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

// multiHandler fans records out to several handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// logger returns the default service logger, or a stderr fallback when
// logging was never initialized
func logger() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return DefaultLoggingService.Logger
}

func Info(msg string, args ...any) {
	logger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	logger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	logger().Error(msg, args...)
}

func Debug(msg string, args ...any) {
	logger().Debug(msg, args...)
}
