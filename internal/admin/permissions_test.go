package admin

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/cloudconfig/cloudconfig/internal/storage"
)

func (env *adminEnv) newClient(t *testing.T) *storage.Client {
	t.Helper()

	client, err := env.store.CreateClient(context.Background(), "agent", "pk", false)
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	return client
}

func TestSetPermission(t *testing.T) {
	env := newAdminEnv(t)
	client := env.newClient(t)
	project := env.newProject(t)

	rec := env.do(t, env.admin, "POST", "/clients/"+client.ID.String()+"/permissions",
		`{"project_id":"`+project.ID.String()+`","can_read":true,"can_write":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	perm := decodeBody[*storage.Permission](t, rec)
	if !perm.CanRead || perm.CanWrite {
		t.Errorf("permission = read:%v write:%v, want read-only", perm.CanRead, perm.CanWrite)
	}
}

// TestSetPermissionWriteImpliesRead verifies the invariant end to end.
func TestSetPermissionWriteImpliesRead(t *testing.T) {
	env := newAdminEnv(t)
	client := env.newClient(t)
	project := env.newProject(t)

	rec := env.do(t, env.admin, "POST", "/clients/"+client.ID.String()+"/permissions",
		`{"project_id":"`+project.ID.String()+`","can_read":false,"can_write":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	perm := decodeBody[*storage.Permission](t, rec)
	if !perm.CanRead {
		t.Error("write grant must imply read in the response")
	}
}

func TestSetPermissionValidation(t *testing.T) {
	env := newAdminEnv(t)
	client := env.newClient(t)
	project := env.newProject(t)

	rec := env.do(t, env.admin, "POST", "/clients/"+client.ID.String()+"/permissions", `{"can_read":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing project_id: status = %d, want 400", rec.Code)
	}

	rec = env.do(t, env.admin, "POST", "/clients/"+uuid.New().String()+"/permissions",
		`{"project_id":"`+project.ID.String()+`","can_read":true}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing client: status = %d, want 404", rec.Code)
	}
	if got := errorMessage(t, rec); got != "client or project not found" {
		t.Errorf("error = %q", got)
	}

	rec = env.do(t, env.admin, "POST", "/clients/"+client.ID.String()+"/permissions",
		`{"project_id":"`+uuid.New().String()+`","can_read":true}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing project: status = %d, want 404", rec.Code)
	}
}

func TestRevokePermission(t *testing.T) {
	env := newAdminEnv(t)
	client := env.newClient(t)
	project := env.newProject(t)

	if _, err := env.store.SetPermission(context.Background(), client.ID, project.ID, true, false); err != nil {
		t.Fatalf("SetPermission failed: %v", err)
	}

	target := "/clients/" + client.ID.String() + "/permissions/" + project.ID.String()
	rec := env.do(t, env.admin, "DELETE", target, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}

	rec = env.do(t, env.admin, "DELETE", target, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second revoke: status = %d, want 404", rec.Code)
	}
	if got := errorMessage(t, rec); got != "permission not found" {
		t.Errorf("error = %q", got)
	}
}
