package signing

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
)

// ErrVerificationFailed is the single failure result for signature
// verification. Malformed keys, malformed signatures, and genuine
// cryptographic mismatches all collapse to it so that callers cannot be
// used as an oracle for why verification failed.
var ErrVerificationFailed = errors.New("signature verification failed")

// Verify checks an Ed25519 signature over the canonical string.
// Both the public key and the signature arrive base64-encoded.
func Verify(publicKeyB64, canonical, signatureB64 string) error {
	publicKey, err := base64.StdEncoding.DecodeString(publicKeyB64)
	if err != nil {
		return ErrVerificationFailed
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return ErrVerificationFailed
	}

	signature, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return ErrVerificationFailed
	}

	if !ed25519.Verify(ed25519.PublicKey(publicKey), []byte(canonical), signature) {
		return ErrVerificationFailed
	}

	return nil
}

// Sign produces a base64-encoded Ed25519 signature over the canonical
// string. Used by the CLI and by tests; the server itself only verifies.
func Sign(privateKey ed25519.PrivateKey, canonical string) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(privateKey, []byte(canonical)))
}
