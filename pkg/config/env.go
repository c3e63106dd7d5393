package config

import (
	"os"
	"time"
)

// Environment variable names for configuration.
const (
	EnvHub       = "ROBODASH_HUB"
	EnvHubURL    = "ROBODASH_HUB_URL"
	EnvRowsURL   = "ROBODASH_ROWS_URL"
	EnvNamespace = "ROBODASH_NAMESPACE"
	EnvRevision  = "ROBODASH_REVISION"
	EnvTimeout   = "ROBODASH_TIMEOUT"
	EnvDebug     = "ROBODASH_DEBUG"
)

// GetEnvString returns the value of an environment variable or a default.
func GetEnvString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns true if the env var is "true" or "1".
func GetEnvBool(key string) bool {
	v := os.Getenv(key)
	return v == "true" || v == "1"
}

// GetEnvDuration parses the env var as a time.Duration. An unset variable
// returns defaultValue and a nil error.
func GetEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(v)
}

// GetEnvHub returns the hub from environment or default.
func GetEnvHub(defaultHub Hub) Hub {
	if v := os.Getenv(EnvHub); v != "" {
		return Hub(v)
	}
	return defaultHub
}
