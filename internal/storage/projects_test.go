package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestCreateProject(t *testing.T) {
	s := newTestStorage(t)

	project, err := s.CreateProject(context.Background(), "billing", "billing service configs")
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	if project.ID == uuid.Nil {
		t.Error("expected non-nil project ID")
	}
	if project.Name != "billing" {
		t.Errorf("name = %q, want 'billing'", project.Name)
	}
	if project.Description != "billing service configs" {
		t.Errorf("description = %q", project.Description)
	}
}

// TestCreateProjectDuplicateName verifies the unique name constraint.
func TestCreateProjectDuplicateName(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.CreateProject(ctx, "billing", ""); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	_, err := s.CreateProject(ctx, "billing", "another")
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("error = %v, want ErrDuplicateName", err)
	}
}

func TestGetProjectByIDNotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetProjectByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// TestListProjects verifies name ordering.
func TestListProjects(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := s.CreateProject(ctx, name, ""); err != nil {
			t.Fatalf("CreateProject(%s) failed: %v", name, err)
		}
	}

	projects, err := s.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(projects) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(projects))
	}
	if projects[0].Name != "alpha" || projects[2].Name != "zeta" {
		t.Errorf("unexpected order: %s, %s, %s", projects[0].Name, projects[1].Name, projects[2].Name)
	}
}

// TestListProjectsForClient verifies that only projects with a read or write
// grant are visible to a client.
func TestListProjectsForClient(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	client, err := s.CreateClient(ctx, "agent", testPublicKey, false)
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	readable, err := s.CreateProject(ctx, "readable", "")
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	writable, err := s.CreateProject(ctx, "writable", "")
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if _, err := s.CreateProject(ctx, "hidden", ""); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	if _, err := s.SetPermission(ctx, client.ID, readable.ID, true, false); err != nil {
		t.Fatalf("SetPermission failed: %v", err)
	}
	if _, err := s.SetPermission(ctx, client.ID, writable.ID, false, true); err != nil {
		t.Fatalf("SetPermission failed: %v", err)
	}

	projects, err := s.ListProjectsForClient(ctx, client.ID)
	if err != nil {
		t.Fatalf("ListProjectsForClient failed: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	for _, p := range projects {
		if p.Name == "hidden" {
			t.Error("ungranted project should not be listed")
		}
	}
}
