package robodash

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	adapter := NewSlogAdapter(logger).With("component", "test")

	adapter.Debug("debug message", "key", "value")
	adapter.Info("info message")
	adapter.Warn("warn message")
	adapter.Error("error message")

	out := buf.String()
	for _, want := range []string{"debug message", "key=value", "component=test", "info message", "warn message", "error message"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSlogAdapter_NilUsesDefault(t *testing.T) {
	if NewSlogAdapter(nil).logger == nil {
		t.Error("nil logger should fall back to slog.Default()")
	}
}

func TestZapAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	adapter := NewZapAdapter(zap.New(core)).With("component", "test")

	adapter.Debug("fetched", "url", "http://x", "status", 200)
	adapter.Warn("slow")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	first := entries[0]
	if first.Message != "fetched" || first.Level != zapcore.DebugLevel {
		t.Errorf("first entry = %+v", first.Entry)
	}
	fields := first.ContextMap()
	if fields["url"] != "http://x" || fields["component"] != "test" {
		t.Errorf("fields = %v", fields)
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Errorf("second level = %v", entries[1].Level)
	}
}

func TestZapAdapter_Nil(t *testing.T) {
	// Must not panic.
	NewZapAdapter(nil).Error("dropped")
}

func TestNopImplementations(t *testing.T) {
	var l StructuredLogger = NopLogger{}
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")

	var m Metrics = NopMetrics{}
	m.IncrementCounter("x", 1)
	m.RecordDuration("x", 0)
	m.SetGauge("x", 1)
}
