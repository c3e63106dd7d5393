package robodash

import (
	"strconv"

	pkghttp "github.com/jdziat/robodash/pkg/http"
)

// HTTPHook allows customizing HTTP request/response handling. Hooks run in
// order before a request and in reverse order after it.
//
// Use hooks for:
//   - Adding custom headers to all requests
//   - Logging request/response details
//   - Collecting custom metrics
type HTTPHook = pkghttp.HTTPHook

// HTTPHookFunc is a function adapter for simple hooks.
type HTTPHookFunc = pkghttp.HTTPHookFunc

// HookPriority determines how hook failures are handled.
type HookPriority = pkghttp.HookPriority

// ClassifiedHook wraps an HTTPHook with priority information.
type ClassifiedHook = pkghttp.ClassifiedHook

// Hook priorities.
const (
	HookPriorityObservational = pkghttp.HookPriorityObservational
	HookPriorityCritical      = pkghttp.HookPriorityCritical
)

// HeaderHook creates a hook that adds custom headers to all requests.
func HeaderHook(headers map[string]string) HTTPHook {
	return pkghttp.HeaderHook(headers)
}

// LoggingHook creates a hook that logs requests at debug level and failures
// at warn level.
func LoggingHook(logger StructuredLogger) HTTPHook {
	return pkghttp.LoggingHook(logger)
}

// MetricsHook creates a hook that records request counts, durations and
// per-status counters.
func MetricsHook(m Metrics) HTTPHook {
	if m == nil {
		return HTTPHookFunc{}
	}
	return pkghttp.MetricsHook(m)
}

// newHookChain builds the per-client chain: user hooks are critical, the
// built-in logging and metrics hooks are observational.
func newHookChain(cfg *Config) *pkghttp.ClassifiedHookChain {
	chain := pkghttp.NewClassifiedHookChain(cfg.StructuredLogger, cfg.Metrics)
	for i, h := range cfg.HTTPHooks {
		if h == nil {
			continue
		}
		chain.Add(hookName(i), h, HookPriorityCritical)
	}
	chain.AddClassified(pkghttp.ObservationalLoggingHook(cfg.StructuredLogger))
	if cfg.Metrics != nil {
		chain.AddClassified(pkghttp.ObservationalMetricsHook(cfg.Metrics))
	}
	return chain
}

func hookName(i int) string {
	return "user." + strconv.Itoa(i)
}
