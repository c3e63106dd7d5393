// Package http holds the transport plumbing shared by the robodash client:
// the Doer abstraction over *http.Client and request/response hooks.
package http

import (
	"net/http"
)

// Doer sends an HTTP request. *http.Client satisfies it, and tests can
// substitute a fake transport without starting a server.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do implements Doer.
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

var _ Doer = (*http.Client)(nil)
