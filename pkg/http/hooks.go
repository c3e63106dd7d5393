package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ============================================================================
// Hook Priority
// ============================================================================

// HookPriority determines how hook failures are handled.
type HookPriority int

const (
	// HookPriorityObservational marks a hook whose failure is logged and
	// ignored. Use it for logging and metrics.
	HookPriorityObservational HookPriority = iota

	// HookPriorityCritical marks a hook whose failure aborts the request,
	// e.g. one that must set a header the server requires.
	HookPriorityCritical
)

// String returns a string representation of the hook priority.
func (p HookPriority) String() string {
	switch p {
	case HookPriorityObservational:
		return "observational"
	case HookPriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ============================================================================
// HTTP Hook Interface
// ============================================================================

// HTTPHook observes or modifies outgoing requests.
type HTTPHook interface {
	// BeforeRequest is called before sending the HTTP request.
	// It can modify the request (e.g., add headers) and return an error to abort.
	BeforeRequest(ctx context.Context, req *http.Request) error

	// AfterResponse is called after the response status is known, or after
	// the transport failed. resp is nil when err is a transport error.
	AfterResponse(ctx context.Context, req *http.Request, resp *http.Response, duration time.Duration, err error)
}

// ClassifiedHook wraps an HTTPHook with priority information.
type ClassifiedHook struct {
	Hook     HTTPHook
	Priority HookPriority
	// Name is used in error messages and failure metrics.
	Name string
}

// NewClassifiedHook creates a ClassifiedHook with the given parameters.
func NewClassifiedHook(name string, hook HTTPHook, priority HookPriority) ClassifiedHook {
	return ClassifiedHook{Hook: hook, Priority: priority, Name: name}
}

// ============================================================================
// Hook Function Adapter
// ============================================================================

// HTTPHookFunc builds a hook from optional functions.
type HTTPHookFunc struct {
	Before func(ctx context.Context, req *http.Request) error
	After  func(ctx context.Context, req *http.Request, resp *http.Response, duration time.Duration, err error)
}

// BeforeRequest implements HTTPHook.
func (f HTTPHookFunc) BeforeRequest(ctx context.Context, req *http.Request) error {
	if f.Before != nil {
		return f.Before(ctx, req)
	}
	return nil
}

// AfterResponse implements HTTPHook.
func (f HTTPHookFunc) AfterResponse(ctx context.Context, req *http.Request, resp *http.Response, duration time.Duration, err error) {
	if f.After != nil {
		f.After(ctx, req, resp, duration, err)
	}
}

// ============================================================================
// Classified Hook Chain
// ============================================================================

// Logger is the logging surface hooks need. It matches the first two
// methods of robodash.StructuredLogger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MetricsRecorder is the metrics surface hooks need.
type MetricsRecorder interface {
	IncrementCounter(name string, value int64)
	RecordDuration(name string, duration time.Duration)
}

// ClassifiedHookChain runs hooks in order with priority-aware error
// handling. A panicking hook is recovered and counted.
type ClassifiedHookChain struct {
	hooks   []ClassifiedHook
	logger  Logger
	metrics MetricsRecorder
}

// NewClassifiedHookChain creates an empty chain. logger and metrics may be nil.
func NewClassifiedHookChain(logger Logger, metrics MetricsRecorder) *ClassifiedHookChain {
	return &ClassifiedHookChain{logger: logger, metrics: metrics}
}

// Add appends a hook with the specified priority.
func (c *ClassifiedHookChain) Add(name string, hook HTTPHook, priority HookPriority) {
	c.hooks = append(c.hooks, NewClassifiedHook(name, hook, priority))
}

// AddClassified appends a pre-classified hook.
func (c *ClassifiedHookChain) AddClassified(ch ClassifiedHook) {
	c.hooks = append(c.hooks, ch)
}

// Len returns the number of hooks in the chain.
func (c *ClassifiedHookChain) Len() int {
	return len(c.hooks)
}

// BeforeRequest calls every hook in order. The first critical failure
// aborts the request; observational failures are logged.
func (c *ClassifiedHookChain) BeforeRequest(ctx context.Context, req *http.Request) error {
	for _, ch := range c.hooks {
		if err := c.callBeforeRequest(ctx, req, ch); err != nil {
			return err
		}
	}
	return nil
}

func (c *ClassifiedHookChain) callBeforeRequest(ctx context.Context, req *http.Request, ch ClassifiedHook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.recordPanic(ch, "BeforeRequest", r)
			if ch.Priority == HookPriorityCritical {
				err = fmt.Errorf("robodash: critical hook %q panicked: %v", ch.Name, r)
			}
		}
	}()

	hookErr := ch.Hook.BeforeRequest(ctx, req)
	if hookErr == nil {
		return nil
	}

	if c.metrics != nil {
		c.metrics.IncrementCounter("robodash.hooks.failures", 1)
		c.metrics.IncrementCounter("robodash.hooks.failures."+ch.Name, 1)
	}

	if ch.Priority == HookPriorityObservational {
		if c.logger != nil {
			c.logger.Warn("observational hook failed", "hook", ch.Name, "error", hookErr)
		}
		return nil
	}
	return fmt.Errorf("robodash: critical hook %q failed: %w", ch.Name, hookErr)
}

// AfterResponse calls every hook in reverse order so hooks wrap like
// middleware. Nothing is returned; the response already exists.
func (c *ClassifiedHookChain) AfterResponse(ctx context.Context, req *http.Request, resp *http.Response, duration time.Duration, err error) {
	for i := len(c.hooks) - 1; i >= 0; i-- {
		c.callAfterResponse(ctx, req, resp, duration, err, c.hooks[i])
	}
}

func (c *ClassifiedHookChain) callAfterResponse(ctx context.Context, req *http.Request, resp *http.Response, duration time.Duration, requestErr error, ch ClassifiedHook) {
	defer func() {
		if r := recover(); r != nil {
			c.recordPanic(ch, "AfterResponse", r)
		}
	}()
	ch.Hook.AfterResponse(ctx, req, resp, duration, requestErr)
}

func (c *ClassifiedHookChain) recordPanic(ch ClassifiedHook, phase string, r any) {
	if c.logger != nil {
		c.logger.Warn("hook panicked", "hook", ch.Name, "phase", phase, "panic", fmt.Sprint(r))
	}
	if c.metrics != nil {
		c.metrics.IncrementCounter("robodash.hooks.panics", 1)
	}
}

// ============================================================================
// Predefined Hooks
// ============================================================================

// HeaderHook sets fixed headers on every request.
func HeaderHook(headers map[string]string) HTTPHook {
	return HTTPHookFunc{
		Before: func(ctx context.Context, req *http.Request) error {
			for k, v := range headers {
				req.Header.Set(k, v)
			}
			return nil
		},
	}
}

// LoggingHook logs each request at debug level and transport failures or
// error statuses at warn level.
func LoggingHook(logger Logger) HTTPHook {
	if logger == nil {
		return HTTPHookFunc{}
	}
	return HTTPHookFunc{
		Before: func(ctx context.Context, req *http.Request) error {
			logger.Debug("http request", "method", req.Method, "url", req.URL.String())
			return nil
		},
		After: func(ctx context.Context, req *http.Request, resp *http.Response, duration time.Duration, err error) {
			switch {
			case err != nil:
				logger.Warn("http request failed", "method", req.Method, "url", req.URL.String(), "duration", duration, "error", err)
			case resp != nil && resp.StatusCode >= 400:
				logger.Warn("http error status", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode, "duration", duration)
			case resp != nil:
				logger.Debug("http response", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode, "duration", duration)
			}
		},
	}
}

// MetricsHook records request metrics.
//
// Metrics recorded:
//   - robodash.http.requests (counter)
//   - robodash.http.duration (timing)
//   - robodash.http.errors (counter): transport failures and statuses >= 400
//   - robodash.http.status.{code} (counter)
func MetricsHook(m MetricsRecorder) HTTPHook {
	if m == nil {
		return HTTPHookFunc{}
	}
	return HTTPHookFunc{
		After: func(ctx context.Context, req *http.Request, resp *http.Response, duration time.Duration, err error) {
			m.IncrementCounter("robodash.http.requests", 1)
			m.RecordDuration("robodash.http.duration", duration)

			if err != nil || (resp != nil && resp.StatusCode >= 400) {
				m.IncrementCounter("robodash.http.errors", 1)
			}
			if resp != nil {
				m.IncrementCounter("robodash.http.status."+strconv.Itoa(resp.StatusCode), 1)
			}
		},
	}
}

// ObservationalLoggingHook classifies LoggingHook as observational.
func ObservationalLoggingHook(logger Logger) ClassifiedHook {
	return NewClassifiedHook("logging", LoggingHook(logger), HookPriorityObservational)
}

// ObservationalMetricsHook classifies MetricsHook as observational.
func ObservationalMetricsHook(m MetricsRecorder) ClassifiedHook {
	return NewClassifiedHook("metrics", MetricsHook(m), HookPriorityObservational)
}
