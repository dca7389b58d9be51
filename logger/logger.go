// Package logger builds the zap loggers used by streamkit.
//
// Library packages never create a root logger on their own: they default to
// NewNopLogger and accept a *Logger through their WithLogger options.
package logger

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logger used throughout streamkit.
type Logger = zap.SugaredLogger

// ErrInvalidLevel is returned if the configured level cannot be parsed.
var ErrInvalidLevel = errors.New("invalid log level")

// NewRootLogger creates a new root logger from the provided configuration.
func NewRootLogger(cfg Config) (*Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, errors.Wrapf(ErrInvalidLevel, "%q", cfg.Level)
	}

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "console"
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}

	zapCfg := &zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		DisableCaller:     cfg.DisableCaller,
		DisableStacktrace: cfg.DisableStacktrace,
		Encoding:          encoding,
		EncoderConfig:     defaultEncoderConfig,
		OutputPaths:       outputPaths,
		ErrorOutputPaths:  []string{"stderr"},
	}

	root, err := zapCfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build zap logger")
	}

	return root.Sugar(), nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return zap.NewNop().Sugar()
}

// NewExampleLogger builds a development logger suitable for examples and tests.
func NewExampleLogger(name string) *Logger {
	return zap.NewExample().Named(name).Sugar()
}

// OrNop returns the given logger or a nop logger if it is nil.
func OrNop(log *Logger) *Logger {
	if log == nil {
		return NewNopLogger()
	}

	return log
}
