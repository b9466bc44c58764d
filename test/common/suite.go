package common

import (
	"os"
	"testing"
	"time"
)

const healthCheckTimeout = 30 * time.Second

// RequireServer returns a client pointed at the server named by
// TEST_SERVER_URL, or skips the test when the variable is unset so
// the suite stays out of plain `go test ./...` runs.
func RequireServer(t *testing.T) *Client {
	t.Helper()

	serverURL := os.Getenv("TEST_SERVER_URL")
	if serverURL == "" {
		t.Skip("TEST_SERVER_URL not set, skipping integration test")
	}

	client := NewClient(serverURL)
	client.WaitForHealthy(t, healthCheckTimeout)
	return client
}
