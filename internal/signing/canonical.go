// Package signing implements the request signature protocol: canonical
// message construction, Ed25519 verification, and key generation.
package signing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SHA256Hex returns the lowercase hex encoding of the SHA-256 digest of b.
func SHA256Hex(b []byte) string {
	digest := sha256.Sum256(b)
	return hex.EncodeToString(digest[:])
}

// CanonicalString builds the exact byte sequence a client signs and the
// server reverifies. The body is represented by its fixed-width hex digest
// rather than raw bytes, so the canonical string stays bounded and
// unambiguous for binary bodies. Field order is fixed; any bit change in
// any field changes the output.
func CanonicalString(timestamp int64, method, pathAndQuery, nonce string, body []byte) string {
	return fmt.Sprintf("%d\n%s\n%s\n%s\n%s",
		timestamp, method, pathAndQuery, nonce, SHA256Hex(body))
}
