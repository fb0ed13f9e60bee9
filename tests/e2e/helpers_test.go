//go:build e2e

package e2e

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cloudconfig/cloudconfig/internal/signing"
)

// adminCredentials loads the admin keypair from the environment, skipping
// the test if none is configured.
func adminCredentials(t *testing.T) (string, ed25519.PrivateKey) {
	t.Helper()

	if adminID == "" || adminKeyPEM == "" {
		t.Skip("ADMIN_CLIENT_ID and ADMIN_PRIVATE_KEY(_FILE) not set")
	}

	privateKey, err := signing.ParsePrivateKeyPEM(adminKeyPEM)
	require.NoError(t, err, "admin private key must parse")
	return adminID, privateKey
}

// signedRequest performs a signed HTTP request against the server.
func signedRequest(t *testing.T, clientID string, privateKey ed25519.PrivateKey, method, path string, body []byte) *http.Response {
	t.Helper()

	target, err := url.Parse(serverURL + path)
	require.NoError(t, err)

	timestamp := time.Now().Unix()
	nonce := uuid.New().String()
	canonical := signing.CanonicalString(timestamp, method, target.RequestURI(), nonce, body)

	req, err := http.NewRequest(method, target.String(), bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-Id", clientID)
	req.Header.Set("X-Timestamp", strconv.FormatInt(timestamp, 10))
	req.Header.Set("X-Nonce", nonce)
	req.Header.Set("X-Signature", signing.Sign(privateKey, canonical))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v), "body: %s", data)
}
