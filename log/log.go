// Package log provides a thin wrapper around zap with named loggers
// and optional per-logger filter rules (zapfilter syntax).
package log

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

type (
	Logger struct {
		l     *zap.Logger
		level zap.AtomicLevel
	}
	Level  = zapcore.Level
	Field  = zap.Field
	Option = zap.Option
)

const (
	DebugLevel = zap.DebugLevel
	InfoLevel  = zap.InfoLevel
	WarnLevel  = zap.WarnLevel
	ErrorLevel = zap.ErrorLevel
)

var (
	// field constructors re-exported for callers
	Any        = zap.Any
	Bool       = zap.Bool
	Duration   = zap.Duration
	ErrorField = zap.Error
	Float64    = zap.Float64
	Int        = zap.Int
	Int32      = zap.Int32
	String     = zap.String
	Time       = zap.Time
	Uint32     = zap.Uint32

	WithCaller    = zap.WithCaller
	AddCallerSkip = zap.AddCallerSkip

	std = DevLogger(os.Stderr, InfoLevel)
)

func ParseLevel(text string) (Level, error) {
	return zapcore.ParseLevel(text)
}

// New creates a production style (JSON) logger writing to w.
func New(w io.Writer, level Level, opts ...Option) *Logger {
	atomic := zap.NewAtomicLevelAt(level)
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg),
		zapcore.AddSync(w),
		atomic,
	)
	return &Logger{l: zap.New(core, opts...), level: atomic}
}

// DevLogger creates a console style logger writing to w.
func DevLogger(w io.Writer, level Level, opts ...Option) *Logger {
	atomic := zap.NewAtomicLevelAt(level)
	cfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.AddSync(w),
		atomic,
	)
	return &Logger{l: zap.New(core, opts...), level: atomic}
}

// WithFilterRules wraps the logger core with zapfilter rules, for example
// "debug:processing.* info:*".
func (l *Logger) WithFilterRules(rules string) (*Logger, error) {
	filter, err := zapfilter.ParseRules(rules)
	if err != nil {
		return nil, fmt.Errorf("invalid filter rules %q: %w", rules, err)
	}
	wrapped := l.l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapfilter.NewFilteringCore(c, filter)
	}))
	return &Logger{l: wrapped, level: l.level}, nil
}

func Default() *Logger { return std }

// ResetDefault replaces the default logger used by the package level functions.
func ResetDefault(l *Logger) {
	std = l
}

func (l *Logger) Named(name string) *Logger {
	return &Logger{l: l.l.Named(name), level: l.level}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.l.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.l.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.l.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.l.Error(msg, fields...) }

func (l *Logger) DebugEnabled() bool {
	return l.l.Core().Enabled(DebugLevel)
}

func (l *Logger) Sync() error { return l.l.Sync() }

func Debug(msg string, fields ...Field) { std.Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { std.Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { std.Warn(msg, fields...) }
func Error(msg string, fields ...Field) { std.Error(msg, fields...) }
