// Package zaplog adapts a zap logger to the core.Logger interface.
package zaplog

import (
	"github.com/Swind/go-wakepool/core"
	"go.uber.org/zap"
)

// Logger wraps *zap.Logger for use as a core.Logger.
type Logger struct {
	base *zap.Logger
}

var _ core.Logger = (*Logger)(nil)

// New wraps the given zap logger. A nil logger becomes a no-op.
func New(base *zap.Logger) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{base: base}
}

// NewDevelopment builds a zap development logger wrapped as a core.Logger.
func NewDevelopment() (*Logger, error) {
	base, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return New(base), nil
}

// NewProduction builds a zap production logger wrapped as a core.Logger.
func NewProduction() (*Logger, error) {
	base, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return New(base), nil
}

func (l *Logger) Debug(msg string, fields ...core.Field) {
	l.base.Debug(msg, convertFields(fields)...)
}

func (l *Logger) Info(msg string, fields ...core.Field) {
	l.base.Info(msg, convertFields(fields)...)
}

func (l *Logger) Warn(msg string, fields ...core.Field) {
	l.base.Warn(msg, convertFields(fields)...)
}

func (l *Logger) Error(msg string, fields ...core.Field) {
	l.base.Error(msg, convertFields(fields)...)
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}

func convertFields(fields []core.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
