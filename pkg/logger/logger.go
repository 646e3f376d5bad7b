// Package logger constructs the zap loggers used across the containers.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a production-grade sugared logger for the given service name.
// Output goes to stderr in JSON, with ISO8601 timestamps.
func New(service string) *zap.SugaredLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(zap.InfoLevel),
	)

	return zap.New(core).Sugar().With("service", service)
}

// NewNop returns a logger that discards everything. Containers install it
// when the caller doesn't provide one.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
