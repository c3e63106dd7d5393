// Package config holds the defaults, limits and environment variable names
// shared by the robodash client and its command-line tools.
package config

import (
	"time"
)

// Hub names a known dataset-hosting deployment.
type Hub string

const (
	// HubHuggingFace is the public Hugging Face hub.
	HubHuggingFace Hub = "huggingface"
	// HubMirror is the community mirror of the public hub. It mirrors raw
	// files and the listing API; the rows endpoint is still the upstream one.
	HubMirror Hub = "hf-mirror"
)

// Endpoints are the base URLs a hub is reached through.
type Endpoints struct {
	// HubURL serves the listing/detail API and raw file resolution.
	HubURL string
	// RowsURL serves the dataset viewer rows endpoint.
	RowsURL string
}

// HubEndpoints maps hubs to their base URLs.
var HubEndpoints = map[Hub]Endpoints{
	HubHuggingFace: {HubURL: "https://huggingface.co", RowsURL: "https://datasets-server.huggingface.co"},
	HubMirror:      {HubURL: "https://hf-mirror.com", RowsURL: "https://datasets-server.huggingface.co"},
}

// Endpoints returns the base URLs of the hub, falling back to the public
// hub for unknown names.
func (h Hub) Endpoints() Endpoints {
	if e, ok := HubEndpoints[h]; ok {
		return e
	}
	return HubEndpoints[HubHuggingFace]
}

// Valid reports whether h is a known hub.
func (h Hub) Valid() bool {
	_, ok := HubEndpoints[h]
	return ok
}

// String returns the string representation of the hub.
func (h Hub) String() string {
	return string(h)
}

// Default configuration values.
const (
	// DefaultNamespace is the owner whose datasets are listed.
	DefaultNamespace = "lerobot"

	// DefaultRevision is the git revision raw files are resolved at.
	DefaultRevision = "main"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "robodash-go/1.0.0"

	// DefaultMaxIdleConns is the default maximum number of idle connections.
	DefaultMaxIdleConns = 100

	// DefaultMaxIdleConnsPerHost is the default maximum idle connections per host.
	DefaultMaxIdleConnsPerHost = 10

	// DefaultIdleConnTimeout is the default timeout for idle connections.
	DefaultIdleConnTimeout = 90 * time.Second

	// DefaultRowsLength is the rows endpoint page size when none is given.
	DefaultRowsLength = 100

	// MaxRowsLength is the largest page the client will request.
	MaxRowsLength = 1000

	// MaxTimeout is the maximum allowed request timeout.
	MaxTimeout = 5 * time.Minute

	// MinTimeout is the minimum allowed request timeout.
	MinTimeout = 100 * time.Millisecond
)
