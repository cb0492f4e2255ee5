// Package logging builds the zap loggers used by every binary and adapts
// them to the printf-style interface the domain packages consume.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs the service logger. Development mode switches to the
// human-readable console encoder.
func New(service string, development bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.Sugar().With("service", service), nil
}

// Adapter exposes a zap sugared logger through the narrow printf-style
// Logger interface of the auth package.
type Adapter struct {
	log *zap.SugaredLogger
}

// Adapt wraps a sugared logger.
func Adapt(log *zap.SugaredLogger) *Adapter {
	return &Adapter{log: log}
}

func (a *Adapter) Debug(format string, args ...any) { a.log.Debugf(format, args...) }
func (a *Adapter) Info(format string, args ...any)  { a.log.Infof(format, args...) }
func (a *Adapter) Warn(format string, args ...any)  { a.log.Warnf(format, args...) }
func (a *Adapter) Error(format string, args ...any) { a.log.Errorf(format, args...) }
