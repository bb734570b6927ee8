package workspace

import (
	"context"
	"errors"
	"testing"

	"quillhouse/internal/domain"
	wsSvc "quillhouse/internal/domain/services/workspace"
)

func TestCreateFolder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := createProject(t, f, "u1")
	if _, err := f.projects.AddCollaborator(ctx, "u1", id, "u2"); err != nil {
		t.Fatalf("AddCollaborator: %v", err)
	}

	tests := []struct {
		name       string
		req        wsSvc.CreateFolderRequest
		wantErr    error
		wantOwner  string
		wantShared bool
	}{
		{
			name:      "collaborator personal folder",
			req:       wsSvc.CreateFolderRequest{ProjectID: id, UserID: "u2", Label: "Drafts"},
			wantOwner: "u2",
		},
		{
			name:       "owner shared base",
			req:        wsSvc.CreateFolderRequest{ProjectID: id, UserID: "u1", Label: "Shared", SharedBase: true},
			wantShared: true,
		},
		{
			name:    "collaborator cannot create shared base",
			req:     wsSvc.CreateFolderRequest{ProjectID: id, UserID: "u2", Label: "Shared", SharedBase: true},
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "stranger",
			req:     wsSvc.CreateFolderRequest{ProjectID: id, UserID: "u3", Label: "Mine"},
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "reserved label",
			req:     wsSvc.CreateFolderRequest{ProjectID: id, UserID: "u1", Label: " master "},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "blank label",
			req:     wsSvc.CreateFolderRequest{ProjectID: id, UserID: "u1", Label: "  "},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folder, err := f.folders.CreateFolder(ctx, &tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateFolder: %v", err)
			}
			if folder.OwnerID != tt.wantOwner || folder.SharedBase != tt.wantShared {
				t.Errorf("folder = %+v, want owner %q shared %v", folder, tt.wantOwner, tt.wantShared)
			}
		})
	}
}

func TestListFoldersMasterFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := createProject(t, f, "u1")

	for _, label := range []string{"Notes", "Outline"} {
		if _, err := f.folders.CreateFolder(ctx, &wsSvc.CreateFolderRequest{ProjectID: id, UserID: "u1", Label: label}); err != nil {
			t.Fatalf("CreateFolder(%s): %v", label, err)
		}
	}

	groups, err := f.folders.ListFolders(ctx, "u1", id)
	if err != nil {
		t.Fatalf("ListFolders: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 folders, got %d", len(groups))
	}
	if !groups[0].Folder.IsMaster() {
		t.Errorf("first folder = %q, want Master", groups[0].Folder.Label)
	}
	if groups[1].Folder.Label != "Notes" || groups[2].Folder.Label != "Outline" {
		t.Errorf("order = %q, %q", groups[1].Folder.Label, groups[2].Folder.Label)
	}

	if _, err := f.folders.ListFolders(ctx, "u9", id); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("stranger: expected forbidden, got %v", err)
	}
}

func TestDeleteFolder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := createProject(t, f, "u1")
	if _, err := f.projects.AddCollaborator(ctx, "u1", id, "u2"); err != nil {
		t.Fatalf("AddCollaborator: %v", err)
	}
	if _, err := f.projects.AddCollaborator(ctx, "u1", id, "u3"); err != nil {
		t.Fatalf("AddCollaborator: %v", err)
	}

	mine, err := f.folders.CreateFolder(ctx, &wsSvc.CreateFolderRequest{ProjectID: id, UserID: "u2", Label: "Drafts"})
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}

	if err := f.folders.DeleteFolder(ctx, "u3", mine.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("other collaborator: expected forbidden, got %v", err)
	}
	if err := f.folders.DeleteFolder(ctx, "u2", mine.ID); err != nil {
		t.Errorf("folder owner: %v", err)
	}

	groups, _ := f.folders.ListFolders(ctx, "u1", id)
	if err := f.folders.DeleteFolder(ctx, "u1", groups[0].Folder.ID); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Master folder: expected validation error, got %v", err)
	}
}
