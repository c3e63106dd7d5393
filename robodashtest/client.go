package robodashtest

import (
	"time"

	"github.com/jdziat/robodash"
)

// TestingT is an interface that matches *testing.T and *testing.B.
type TestingT interface {
	Fatalf(format string, args ...any)
	Cleanup(func())
	Helper()
}

// NewTestClient creates a client whose hub and rows endpoints both point at a
// fresh MockServer. The client and server are cleaned up when the test ends.
func NewTestClient(t TestingT) (*robodash.Client, *MockServer) {
	t.Helper()
	return NewTestClientWithConfig(t)
}

// NewTestClientWithConfig is like NewTestClient. The mock server options are
// applied first and opts on top.
func NewTestClientWithConfig(t TestingT, opts ...robodash.ConfigOption) (*robodash.Client, *MockServer) {
	t.Helper()

	server := NewMockServer()

	baseOpts := []robodash.ConfigOption{
		robodash.WithHubURL(server.URL),
		robodash.WithRowsURL(server.URL),
		robodash.WithTimeout(10 * time.Second),
	}

	client, err := robodash.New(append(baseOpts, opts...)...)
	if err != nil {
		server.Close()
		t.Fatalf("Failed to create test client: %v", err)
	}

	t.Cleanup(func() {
		client.CloseIdleConnections()
		server.Close()
	})

	return client, server
}
