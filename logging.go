package robodash

import (
	"log/slog"
	"os"
	"time"

	"go.uber.org/zap"
)

// StructuredLogger provides leveled, key-value logging for the SDK. It is
// satisfied by the adapters below and by anything with the same four
// methods.
//
//	client, _ := robodash.New(
//	    robodash.WithStructuredLogger(robodash.NewSlogAdapter(slog.Default())),
//	)
type StructuredLogger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}

// Metrics is an optional interface for SDK telemetry.
type Metrics interface {
	// IncrementCounter increments a counter metric.
	IncrementCounter(name string, value int64)
	// RecordDuration records a duration metric.
	RecordDuration(name string, duration time.Duration)
	// SetGauge sets a gauge metric.
	SetGauge(name string, value float64)
}

// NopLogger is a logger that discards all log messages.
type NopLogger struct{}

// Debug implements StructuredLogger.Debug.
func (NopLogger) Debug(msg string, args ...any) {}

// Info implements StructuredLogger.Info.
func (NopLogger) Info(msg string, args ...any) {}

// Warn implements StructuredLogger.Warn.
func (NopLogger) Warn(msg string, args ...any) {}

// Error implements StructuredLogger.Error.
func (NopLogger) Error(msg string, args ...any) {}

// NopMetrics discards all metrics.
type NopMetrics struct{}

// IncrementCounter implements Metrics.IncrementCounter.
func (NopMetrics) IncrementCounter(name string, value int64) {}

// RecordDuration implements Metrics.RecordDuration.
func (NopMetrics) RecordDuration(name string, duration time.Duration) {}

// SetGauge implements Metrics.SetGauge.
func (NopMetrics) SetGauge(name string, value float64) {}

var (
	_ StructuredLogger = NopLogger{}
	_ Metrics          = NopMetrics{}
)

// newStderrLogger is the logger used when Debug is set without a logger.
func newStderrLogger() StructuredLogger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogAdapter(slog.New(h).With("sdk", "robodash"))
}

// ============================================================================
// Slog Adapter
// ============================================================================

// SlogAdapter adapts a slog.Logger to the StructuredLogger interface.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	client, _ := robodash.New(
//	    robodash.WithStructuredLogger(robodash.NewSlogAdapter(logger)),
//	)
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Debug implements StructuredLogger.Debug.
func (a *SlogAdapter) Debug(msg string, args ...any) {
	a.logger.Debug(msg, args...)
}

// Info implements StructuredLogger.Info.
func (a *SlogAdapter) Info(msg string, args ...any) {
	a.logger.Info(msg, args...)
}

// Warn implements StructuredLogger.Warn.
func (a *SlogAdapter) Warn(msg string, args ...any) {
	a.logger.Warn(msg, args...)
}

// Error implements StructuredLogger.Error.
func (a *SlogAdapter) Error(msg string, args ...any) {
	a.logger.Error(msg, args...)
}

// With returns a new SlogAdapter with the given attributes added.
func (a *SlogAdapter) With(args ...any) *SlogAdapter {
	return &SlogAdapter{logger: a.logger.With(args...)}
}

// ============================================================================
// Zap Adapter
// ============================================================================

// ZapAdapter adapts a zap.Logger to the StructuredLogger interface. Key-value
// pairs are passed to the sugared logger's *w methods.
//
// Example:
//
//	logger, _ := zap.NewProduction()
//	client, _ := robodash.New(
//	    robodash.WithStructuredLogger(robodash.NewZapAdapter(logger)),
//	)
type ZapAdapter struct {
	logger *zap.SugaredLogger
}

// NewZapAdapter creates a new ZapAdapter. If logger is nil, a no-op logger
// is used.
func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapAdapter{logger: logger.Sugar()}
}

// Debug implements StructuredLogger.Debug.
func (a *ZapAdapter) Debug(msg string, args ...any) {
	a.logger.Debugw(msg, args...)
}

// Info implements StructuredLogger.Info.
func (a *ZapAdapter) Info(msg string, args ...any) {
	a.logger.Infow(msg, args...)
}

// Warn implements StructuredLogger.Warn.
func (a *ZapAdapter) Warn(msg string, args ...any) {
	a.logger.Warnw(msg, args...)
}

// Error implements StructuredLogger.Error.
func (a *ZapAdapter) Error(msg string, args ...any) {
	a.logger.Errorw(msg, args...)
}

// With returns a new ZapAdapter with the given key-value pairs added.
func (a *ZapAdapter) With(args ...any) *ZapAdapter {
	return &ZapAdapter{logger: a.logger.With(args...)}
}
