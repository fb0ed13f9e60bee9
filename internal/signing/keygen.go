package signing

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
)

// Keypair is a freshly generated Ed25519 keypair in the encodings the
// service exchanges: PKCS#8 PEM for the private half (returned to the
// caller once, never stored) and base64 raw bytes for the public half
// (stored with the client row).
type Keypair struct {
	PrivateKeyPEM string
	PublicKeyB64  string
}

// GenerateKeypair creates a new Ed25519 keypair.
func GenerateKeypair() (*Keypair, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encode private key: %w", err)
	}

	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	return &Keypair{
		PrivateKeyPEM: string(pemBytes),
		PublicKeyB64:  base64.StdEncoding.EncodeToString(publicKey),
	}, nil
}

// ParsePrivateKeyPEM decodes a PKCS#8 PEM Ed25519 private key as produced
// by GenerateKeypair.
func ParsePrivateKeyPEM(pemStr string) (ed25519.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	privateKey, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not Ed25519")
	}
	return privateKey, nil
}
