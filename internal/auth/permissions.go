package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/cloudconfig/cloudconfig/internal/httperr"
	"github.com/cloudconfig/cloudconfig/internal/storage"
)

// RequireAdmin fails with Forbidden unless the identity is an administrator.
func RequireAdmin(identity Identity) error {
	if !identity.IsAdmin {
		return httperr.Forbidden("admin access required")
	}
	return nil
}

// Evaluator resolves per-(client, project) capabilities. Permissions are
// always read fresh from the store so revocation takes effect immediately;
// no caching.
type Evaluator struct {
	perms storage.PermissionStore
}

// NewEvaluator creates a permission evaluator backed by the given store.
func NewEvaluator(perms storage.PermissionStore) *Evaluator {
	return &Evaluator{perms: perms}
}

// Resolve loads the permission row for the pair. Absence is Forbidden, not
// NotFound: callers without a grant must not learn whether the project
// exists.
func (e *Evaluator) Resolve(ctx context.Context, clientID, projectID uuid.UUID) (*storage.Permission, error) {
	perm, err := e.perms.GetPermission(ctx, clientID, projectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, httperr.Forbidden("no project access granted")
		}
		return nil, httperr.Internal(err)
	}
	return perm, nil
}

// RequireRead resolves the pair's permission and fails Forbidden unless it
// grants read access.
func (e *Evaluator) RequireRead(ctx context.Context, clientID, projectID uuid.UUID) error {
	perm, err := e.Resolve(ctx, clientID, projectID)
	if err != nil {
		return err
	}
	if !perm.CanRead {
		return httperr.Forbidden("read permission required")
	}
	return nil
}

// RequireWrite resolves the pair's permission and fails Forbidden unless it
// grants write access.
func (e *Evaluator) RequireWrite(ctx context.Context, clientID, projectID uuid.UUID) error {
	perm, err := e.Resolve(ctx, clientID, projectID)
	if err != nil {
		return err
	}
	if !perm.CanWrite {
		return httperr.Forbidden("write permission required")
	}
	return nil
}
