package signing

import (
	"strings"
	"testing"
)

// TestCanonicalStringFormat verifies the exact five-line layout.
func TestCanonicalStringFormat(t *testing.T) {
	got := CanonicalString(1700000000, "POST", "/admin/clients?dry_run=1", "abc123", []byte(`{"name":"x"}`))

	lines := strings.Split(got, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "1700000000" {
		t.Errorf("timestamp line = %q", lines[0])
	}
	if lines[1] != "POST" {
		t.Errorf("method line = %q", lines[1])
	}
	if lines[2] != "/admin/clients?dry_run=1" {
		t.Errorf("path line = %q", lines[2])
	}
	if lines[3] != "abc123" {
		t.Errorf("nonce line = %q", lines[3])
	}
	if lines[4] != SHA256Hex([]byte(`{"name":"x"}`)) {
		t.Errorf("body digest line = %q", lines[4])
	}
}

// TestCanonicalStringEmptyBody verifies that an empty body uses the digest
// of zero bytes, not an empty line.
func TestCanonicalStringEmptyBody(t *testing.T) {
	const emptyDigest = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	got := CanonicalString(1, "GET", "/api/projects", "n", nil)
	if !strings.HasSuffix(got, "\n"+emptyDigest) {
		t.Errorf("canonical string = %q, want suffix %q", got, emptyDigest)
	}

	if CanonicalString(1, "GET", "/api/projects", "n", []byte{}) != got {
		t.Error("nil and empty body must canonicalize identically")
	}
}

// TestCanonicalStringDeterministic verifies that identical inputs always
// produce identical output.
func TestCanonicalStringDeterministic(t *testing.T) {
	a := CanonicalString(42, "PUT", "/api/projects/x/configs/k", "nonce", []byte("body"))
	b := CanonicalString(42, "PUT", "/api/projects/x/configs/k", "nonce", []byte("body"))
	if a != b {
		t.Errorf("canonical strings differ: %q vs %q", a, b)
	}
}

// TestCanonicalStringFieldSensitivity verifies that changing any single
// field changes the canonical string.
func TestCanonicalStringFieldSensitivity(t *testing.T) {
	base := CanonicalString(100, "GET", "/path", "nonce", []byte("body"))

	variants := map[string]string{
		"timestamp": CanonicalString(101, "GET", "/path", "nonce", []byte("body")),
		"method":    CanonicalString(100, "PUT", "/path", "nonce", []byte("body")),
		"path":      CanonicalString(100, "GET", "/path2", "nonce", []byte("body")),
		"nonce":     CanonicalString(100, "GET", "/path", "nonce2", []byte("body")),
		"body":      CanonicalString(100, "GET", "/path", "nonce", []byte("body2")),
	}
	for field, variant := range variants {
		if variant == base {
			t.Errorf("changing %s did not change the canonical string", field)
		}
	}
}

func TestSHA256Hex(t *testing.T) {
	// Known digest of "abc".
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := SHA256Hex([]byte("abc")); got != want {
		t.Errorf("SHA256Hex = %q, want %q", got, want)
	}
}
