package logging

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap with context-aware helpers. When the context carries a
// recorded span the trace and span ids are attached, so log lines can be
// joined with traces in the backend.
type Logger struct {
	base *zap.Logger
}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// New builds a structured JSON logger. Level accepts the usual zap names
// (debug, info, warn, error); anything else falls back to info.
func New(level, serviceName string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	parsed, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		parsed = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(parsed)

	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	if serviceName = strings.TrimSpace(serviceName); serviceName != "" {
		base = base.With(zap.String("service", serviceName))
	}

	return &Logger{base: base}, nil
}

// Default returns a shared info-level logger for call sites constructed
// without one. Wiring code should pass an explicit logger instead.
func Default() *Logger {
	defaultOnce.Do(func() {
		logger, err := New("info", "")
		if err != nil {
			logger = &Logger{base: zap.NewNop()}
		}
		defaultLogger = logger
	})
	return defaultLogger
}

func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{base: l.base.With(toFields(keysAndValues)...)}
}

func (l *Logger) DebugContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, zapcore.DebugLevel, msg, keysAndValues)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, zapcore.InfoLevel, msg, keysAndValues)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, zapcore.WarnLevel, msg, keysAndValues)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, zapcore.ErrorLevel, msg, keysAndValues)
}

func (l *Logger) Sync() error {
	return l.base.Sync()
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, msg string, keysAndValues []any) {
	fields := toFields(keysAndValues)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	if ce := l.base.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func toFields(keysAndValues []any) []zap.Field {
	fields := make([]zap.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		if i+1 >= len(keysAndValues) {
			fields = append(fields, zap.Any(key, "MISSING"))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
