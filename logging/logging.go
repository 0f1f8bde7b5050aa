// Package logging wraps go.uber.org/zap behind a four-method Logger
// contract (debug/info/warn/error, each a free-form string). A
// New(level, pretty) constructor and level-parsing idiom narrowed to
// the plain-string contract the control connection actually calls,
// instead of zap's structured-field API, so callers outside this
// module can swap in any four-method implementation (a test recorder,
// say) without depending on zap.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the contract the control connection's logging collaborator
// implements.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

type zapLogger struct {
	sugared *zap.SugaredLogger
}

// New builds a Logger backed by zap. level is one of
// "debug"/"info"/"warn"/"error" (unrecognized values keep zap's
// default); pretty selects a colorized development encoder over the
// JSON production encoder.
func New(level string, pretty bool) Logger {
	var cfg zap.Config
	if pretty {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	if lvl := parseLevel(level); lvl != nil {
		cfg.Level = zap.NewAtomicLevelAt(*lvl)
	}

	base, err := cfg.Build(zap.AddStacktrace(zapcore.FatalLevel))
	if err != nil {
		panic(err)
	}
	return &zapLogger{sugared: base.Sugar()}
}

func parseLevel(lvl string) *zapcore.Level {
	switch lvl {
	case "debug":
		l := zapcore.DebugLevel
		return &l
	case "info":
		l := zapcore.InfoLevel
		return &l
	case "warn":
		l := zapcore.WarnLevel
		return &l
	case "error":
		l := zapcore.ErrorLevel
		return &l
	default:
		return nil
	}
}

func (l *zapLogger) Debug(msg string) { l.sugared.Debug(msg) }
func (l *zapLogger) Info(msg string)  { l.sugared.Info(msg) }
func (l *zapLogger) Warn(msg string)  { l.sugared.Warn(msg) }
func (l *zapLogger) Error(msg string) { l.sugared.Error(msg) }

// Nop is a Logger that discards everything, used as a safe zero-value
// default (e.g. in tests) so callers never need a nil check.
var Nop Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Debug(string) {}
func (nopLogger) Info(string)  {}
func (nopLogger) Warn(string)  {}
func (nopLogger) Error(string) {}
