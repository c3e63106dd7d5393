package robodash

import (
	"fmt"

	pkgconfig "github.com/jdziat/robodash/pkg/config"
)

// Environment variable names for configuration.
const (
	// EnvHub selects a preset hub, e.g. "hf-mirror".
	EnvHub = pkgconfig.EnvHub
	// EnvHubURL overrides the hub base URL.
	EnvHubURL = pkgconfig.EnvHubURL
	// EnvRowsURL overrides the rows endpoint base URL.
	EnvRowsURL = pkgconfig.EnvRowsURL
	// EnvNamespace sets the listed namespace.
	EnvNamespace = pkgconfig.EnvNamespace
	// EnvRevision sets the raw file revision.
	EnvRevision = pkgconfig.EnvRevision
	// EnvTimeout sets the request timeout as a Go duration, e.g. "10s".
	EnvTimeout = pkgconfig.EnvTimeout
	// EnvDebug enables debug logging.
	EnvDebug = pkgconfig.EnvDebug
)

// NewFromEnv creates a new client using ROBODASH_* environment variables.
// Every variable is optional. Explicit options override the environment.
//
// Example:
//
//	client, err := robodash.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewFromEnv(opts ...ConfigOption) (*Client, error) {
	envOpts := make([]ConfigOption, 0, 7)

	if hub := pkgconfig.GetEnvString(EnvHub, ""); hub != "" {
		envOpts = append(envOpts, WithHub(Hub(hub)))
	}
	if hubURL := pkgconfig.GetEnvString(EnvHubURL, ""); hubURL != "" {
		envOpts = append(envOpts, WithHubURL(hubURL))
	}
	if rowsURL := pkgconfig.GetEnvString(EnvRowsURL, ""); rowsURL != "" {
		envOpts = append(envOpts, WithRowsURL(rowsURL))
	}
	if ns := pkgconfig.GetEnvString(EnvNamespace, ""); ns != "" {
		envOpts = append(envOpts, WithNamespace(ns))
	}
	if rev := pkgconfig.GetEnvString(EnvRevision, ""); rev != "" {
		envOpts = append(envOpts, WithRevision(rev))
	}

	timeout, err := pkgconfig.GetEnvDuration(EnvTimeout, 0)
	if err != nil {
		return nil, NewValidationErrorWithCause(EnvTimeout, fmt.Sprintf("cannot parse %q", pkgconfig.GetEnvString(EnvTimeout, "")), err)
	}
	if timeout > 0 {
		envOpts = append(envOpts, WithTimeout(timeout))
	}

	if pkgconfig.GetEnvBool(EnvDebug) {
		envOpts = append(envOpts, WithDebug(true))
	}

	// Explicit options take precedence.
	return New(append(envOpts, opts...)...)
}
