package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cloudconfig/cloudconfig/internal/signing"
	"github.com/cloudconfig/cloudconfig/internal/storage"
)

// BootstrapStore is the persistence surface for admin bootstrap.
type BootstrapStore interface {
	storage.ClientStore
	GetAdminClient(ctx context.Context) (*storage.Client, error)
	UpdateClientPublicKey(ctx context.Context, id uuid.UUID, publicKey string) error
}

// BootstrapResult carries the admin client and its private key, which is
// returned exactly once and never stored.
type BootstrapResult struct {
	Client        *storage.Client
	PrivateKeyPEM string
}

// BootstrapAdminName is the display name of the auto-created first admin.
const BootstrapAdminName = "bootstrap-admin"

// BootstrapAdminIfMissing creates the first admin client with a fresh
// keypair if no admin exists yet. Returns nil if an admin already exists.
func BootstrapAdminIfMissing(ctx context.Context, store BootstrapStore) (*BootstrapResult, error) {
	_, err := store.GetAdminClient(ctx)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing admin: %w", err)
	}

	keypair, err := signing.GenerateKeypair()
	if err != nil {
		return nil, err
	}

	client, err := store.CreateClient(ctx, BootstrapAdminName, keypair.PublicKeyB64, true)
	if err != nil {
		return nil, err
	}

	return &BootstrapResult{Client: client, PrivateKeyPEM: keypair.PrivateKeyPEM}, nil
}

// ResetAdmin regenerates the bootstrap admin's keypair, invalidating the old
// private key. If no admin exists yet, one is created.
func ResetAdmin(ctx context.Context, store BootstrapStore) (*BootstrapResult, error) {
	admin, err := store.GetAdminClient(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return BootstrapAdminIfMissing(ctx, store)
		}
		return nil, fmt.Errorf("failed to load admin client: %w", err)
	}

	keypair, err := signing.GenerateKeypair()
	if err != nil {
		return nil, err
	}

	if err := store.UpdateClientPublicKey(ctx, admin.ID, keypair.PublicKeyB64); err != nil {
		return nil, err
	}

	admin.PublicKey = keypair.PublicKeyB64
	return &BootstrapResult{Client: admin, PrivateKeyPEM: keypair.PrivateKeyPEM}, nil
}
