package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging capability injected into the crawler,
// fetch clients, store and publishers. Each entry carries a message, a
// machine-readable event name and an arbitrary field object.
type Logger interface {
	DebugObj(msg, event string, obj map[string]any)
	InfoObj(msg, event string, obj map[string]any)
	WarnObj(msg, event string, obj map[string]any)
	ErrorObj(msg, event string, obj map[string]any)
}

// zapLogger implements Logger on top of a zap core.
type zapLogger struct {
	log *zap.Logger
}

// New builds a production zap logger at the given level ("debug", "info",
// "warn", "error"; empty defaults to info).
func New(level string) (Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &zapLogger{log: log}, nil
}

// parseLevel maps a config string to a zap level.
func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// fields converts the event name and object into zap fields.
func fields(event string, obj map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(obj)+1)
	out = append(out, zap.String("event", event))
	for k, v := range obj {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (l *zapLogger) DebugObj(msg, event string, obj map[string]any) {
	l.log.Debug(msg, fields(event, obj)...)
}

func (l *zapLogger) InfoObj(msg, event string, obj map[string]any) {
	l.log.Info(msg, fields(event, obj)...)
}

func (l *zapLogger) WarnObj(msg, event string, obj map[string]any) {
	l.log.Warn(msg, fields(event, obj)...)
}

func (l *zapLogger) ErrorObj(msg, event string, obj map[string]any) {
	l.log.Error(msg, fields(event, obj)...)
}

// NopLogger discards everything. Useful as a default when no logger is
// injected and in tests.
type NopLogger struct{}

func (NopLogger) DebugObj(string, string, map[string]any) {}
func (NopLogger) InfoObj(string, string, map[string]any)  {}
func (NopLogger) WarnObj(string, string, map[string]any)  {}
func (NopLogger) ErrorObj(string, string, map[string]any) {}
