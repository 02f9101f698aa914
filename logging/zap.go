package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hupe1980/meshcore/errors"
)

// ZapAdapter adapts zap.SugaredLogger to implement the Logger interface.
type ZapAdapter struct {
	logger *zap.SugaredLogger
}

// NewZapAdapter creates a logger adapter from a zap SugaredLogger. A nil
// logger yields a NoOpLogger.
func NewZapAdapter(zapLogger *zap.SugaredLogger) Logger {
	if zapLogger == nil {
		return NoOpLogger{}
	}
	return &ZapAdapter{logger: zapLogger}
}

// Debug implements Logger.Debug using zap's Debugw.
func (z *ZapAdapter) Debug(msg string, args ...any) { z.logger.Debugw(msg, args...) }

// Info implements Logger.Info using zap's Infow.
func (z *ZapAdapter) Info(msg string, args ...any) { z.logger.Infow(msg, args...) }

// Warn implements Logger.Warn using zap's Warnw.
func (z *ZapAdapter) Warn(msg string, args ...any) { z.logger.Warnw(msg, args...) }

// Error implements Logger.Error using zap's Errorw.
func (z *ZapAdapter) Error(msg string, args ...any) { z.logger.Errorw(msg, args...) }

// Sync flushes buffered log entries.
func (z *ZapAdapter) Sync() error { return z.logger.Sync() }

func zapLevel(l LogLevel) zapcore.Level {
	switch l {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewZapLogger builds a zap-backed Logger. format "json" uses the production
// encoder; anything else uses the console encoder.
func NewZapLogger(level LogLevel, format string) (*ZapAdapter, error) {
	cfg := zap.NewProductionConfig()
	if format != "json" {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	zl, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build zap logger")
	}

	return &ZapAdapter{logger: zl.Sugar()}, nil
}
