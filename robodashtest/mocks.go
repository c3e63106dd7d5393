package robodashtest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jdziat/robodash"
)

var (
	_ robodash.Metrics          = (*MockMetrics)(nil)
	_ robodash.StructuredLogger = (*MockLogger)(nil)
)

// MockMetrics records all metrics operations for later verification.
type MockMetrics struct {
	mu       sync.Mutex
	Counters map[string]int64
	Gauges   map[string]float64
	Timings  map[string][]int64 // Duration in nanoseconds
}

// NewMockMetrics creates a new mock metrics collector.
func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Counters: make(map[string]int64),
		Gauges:   make(map[string]float64),
		Timings:  make(map[string][]int64),
	}
}

// IncrementCounter implements Metrics.IncrementCounter.
func (m *MockMetrics) IncrementCounter(name string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counters[name] += value
}

// RecordDuration implements Metrics.RecordDuration.
func (m *MockMetrics) RecordDuration(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Timings[name] = append(m.Timings[name], duration.Nanoseconds())
}

// SetGauge implements Metrics.SetGauge.
func (m *MockMetrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gauges[name] = value
}

// GetCounter returns the value of a counter.
func (m *MockMetrics) GetCounter(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Counters[name]
}

// GetGauge returns the value of a gauge.
func (m *MockMetrics) GetGauge(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Gauges[name]
}

// GetTimings returns all recorded timings for a metric.
func (m *MockMetrics) GetTimings(name string) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64{}, m.Timings[name]...)
}

// Reset clears all recorded metrics.
func (m *MockMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counters = make(map[string]int64)
	m.Gauges = make(map[string]float64)
	m.Timings = make(map[string][]int64)
}

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Args    []any
}

// String renders the entry as "level message k=v ...".
func (e LogEntry) String() string {
	var b strings.Builder
	b.WriteString(e.Level)
	b.WriteByte(' ')
	b.WriteString(e.Message)
	for i := 0; i+1 < len(e.Args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", e.Args[i], e.Args[i+1])
	}
	return b.String()
}

// MockLogger captures structured log calls for later verification.
type MockLogger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

// NewMockLogger creates a new mock logger.
func NewMockLogger() *MockLogger {
	return &MockLogger{Entries: make([]LogEntry, 0)}
}

func (l *MockLogger) log(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Message: msg, Args: append([]any(nil), args...)})
}

// Debug implements StructuredLogger.Debug.
func (l *MockLogger) Debug(msg string, args ...any) { l.log("debug", msg, args) }

// Info implements StructuredLogger.Info.
func (l *MockLogger) Info(msg string, args ...any) { l.log("info", msg, args) }

// Warn implements StructuredLogger.Warn.
func (l *MockLogger) Warn(msg string, args ...any) { l.log("warn", msg, args) }

// Error implements StructuredLogger.Error.
func (l *MockLogger) Error(msg string, args ...any) { l.log("error", msg, args) }

// GetEntries returns all captured entries.
func (l *MockLogger) GetEntries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry{}, l.Entries...)
}

// GetMessages returns the messages logged at level, or at every level when
// level is empty.
func (l *MockLogger) GetMessages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.Entries {
		if level == "" || e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// HasMessage reports whether any entry at level contains substr.
func (l *MockLogger) HasMessage(level, substr string) bool {
	for _, msg := range l.GetMessages(level) {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// MessageCount returns the number of captured entries.
func (l *MockLogger) MessageCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Entries)
}

// Reset clears all captured entries.
func (l *MockLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = make([]LogEntry, 0)
}
