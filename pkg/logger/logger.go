// Package logger provides the coordinator's structured logger: a small
// interface backed by zap, with context-carried fields (see context.go) and
// kind-aware stack trace capture (see stack_trace.go).
package logger

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the interface every component in the coordinator logs through.
// Every call takes a context so WithLogField/WithOTelTraceContext fields
// ride along automatically.
type Logger interface {
	Info(ctx context.Context, msg string)
	Infof(ctx context.Context, format string, args ...interface{})
	Warn(ctx context.Context, msg string)
	Warnf(ctx context.Context, format string, args ...interface{})
	Error(ctx context.Context, msg string)
	Errorf(ctx context.Context, format string, args ...interface{})
}

// Config controls how NewLogger builds a Logger.
type Config struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
	// Format is json or text. Defaults to json.
	Format string
	// Output is stdout, stderr, or lambda (stdout without a timestamp key).
	// Defaults to stdout.
	Output string
	// Component is attached to every log entry as the "component" field.
	Component string
	// Version is attached to every log entry as the "version" field.
	Version string
}

// Environment variable names read by ConfigFromEnv.
const (
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
	EnvLogOutput = "LOG_OUTPUT"
)

// ConfigFromEnv builds a Config from LOG_LEVEL/LOG_FORMAT/LOG_OUTPUT,
// falling back to info/json/stdout for anything unset.
func ConfigFromEnv() Config {
	cfg := Config{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv(EnvLogOutput); v != "" {
		cfg.Output = v
	}
	return cfg
}

type zapLogger struct {
	base *zap.Logger
}

// NewLogger builds a Logger from cfg. Output "lambda" matches the AWS
// Lambda runtime log collector: JSON to stdout with no redundant timestamp
// key, since the platform already stamps every line on ingestion.
func NewLogger(cfg Config) (Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Output == "lambda" {
		encoderCfg.TimeKey = ""
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "text", "console":
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	var writer zapcore.WriteSyncer
	if cfg.Output == "stderr" {
		writer = zapcore.AddSync(os.Stderr)
	} else {
		writer = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder, writer, level)
	base := zap.New(core)
	if cfg.Component != "" {
		base = base.With(zap.String("component", cfg.Component))
	}
	if cfg.Version != "" {
		base = base.With(zap.String("version", cfg.Version))
	}

	return &zapLogger{base: base}, nil
}

// fieldsFromContext turns the dynamic log fields carried on ctx into
// zap.Fields. Callers that want a stack trace attached call
// WithStackTraceField(ctx, CaptureStackTrace(0)) before logging, typically
// gated on ShouldCaptureStackTrace(err) so expected business-logic errors
// don't pay for one.
func fieldsFromContext(ctx context.Context) []zap.Field {
	logFields := GetLogFields(ctx)
	fields := make([]zap.Field, 0, len(logFields))
	for k, v := range logFields {
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}

func (l *zapLogger) Info(ctx context.Context, msg string) {
	l.base.Info(msg, fieldsFromContext(ctx)...)
}

func (l *zapLogger) Infof(ctx context.Context, format string, args ...interface{}) {
	l.base.Info(fmt.Sprintf(format, args...), fieldsFromContext(ctx)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string) {
	l.base.Warn(msg, fieldsFromContext(ctx)...)
}

func (l *zapLogger) Warnf(ctx context.Context, format string, args ...interface{}) {
	l.base.Warn(fmt.Sprintf(format, args...), fieldsFromContext(ctx)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string) {
	l.base.Error(msg, fieldsFromContext(ctx)...)
}

func (l *zapLogger) Errorf(ctx context.Context, format string, args ...interface{}) {
	l.base.Error(fmt.Sprintf(format, args...), fieldsFromContext(ctx)...)
}
