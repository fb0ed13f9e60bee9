//go:build e2e

package e2e

import (
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

var (
	serverURL   string
	adminID     string
	adminKeyPEM string
)

func TestMain(m *testing.M) {
	serverURL = getEnv("SERVER_URL", "http://localhost:8080")
	adminID = os.Getenv("ADMIN_CLIENT_ID")
	adminKeyPEM = loadAdminKey()

	if err := waitForService(serverURL+"/health", 30*time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Server not ready: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadAdminKey() string {
	if path := os.Getenv("ADMIN_PRIVATE_KEY_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read admin key: %v\n", err)
			os.Exit(1)
		}
		return string(data)
	}
	return os.Getenv("ADMIN_PRIVATE_KEY")
}

func waitForService(url string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("service at %s not ready after %s", url, timeout)
}

// TestE2E_HealthCheck verifies that the server answers health probes without
// authentication.
func TestE2E_HealthCheck(t *testing.T) {
	resp, err := http.Get(serverURL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
